package shared

import (
	"context"
	"encoding/json"
	"net/http"
)

// go-kit response encoders shared by every transport. Handlers return
// plain transport structs; the JSON rendering is decided here in one place.

func EncodeResponse200(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeJSON(w, http.StatusOK, response)
}

func EncodeResponse201(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeJSON(w, http.StatusCreated, response)
}

// EncodeResponse204 carries no body, whatever the endpoint returned.
func EncodeResponse204(_ context.Context, w http.ResponseWriter, _ interface{}) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func encodeJSON(w http.ResponseWriter, code int, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(response)
}
