package authentication

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/shared"
)

type AuthenticateTransport struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Authenticate(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAuthenticateEndpoint(h.Service),
		decodeAuthenticateRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeAuthenticateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(AuthenticateTransport)
		return svc.Authenticate(ctx, req)
	}
}

func decodeAuthenticateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var request AuthenticateTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrInvalidCredentials:
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
