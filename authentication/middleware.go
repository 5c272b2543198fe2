package authentication

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/shared"
)

// https://medium.com/@matryer/the-http-handler-wrapper-technique-in-golang-updated-bc7fbcffa702

type Authenticator struct {
	Config *shared.AppConfig `inject:""`
}

// Roles only lets requests through when the bearer token carries at least
// one of the given roles. The decoded claims are placed in the request
// context for the handlers and the logger.
func (a *Authenticator) Roles(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authorizationHeader := req.Header.Get("authorization")

		if authorizationHeader == "" {
			shared.HttpError(w, shared.NewError("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		bearerToken := strings.Split(authorizationHeader, " ")
		if len(bearerToken) != 2 {
			shared.HttpError(w, shared.NewError("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(bearerToken[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("error token method")
			}
			return []byte(a.Config.JwtSecret), nil
		})
		if err != nil {
			shared.HttpError(w, shared.NewError(err.Error()), http.StatusUnauthorized)
			return
		}
		if !token.Valid {
			shared.HttpError(w, shared.NewError("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		var claim CdpClaims
		mapstructure.Decode(token.Claims.(jwt.MapClaims), &claim)

		if !intersects(claim.Roles, roles) {
			shared.HttpError(w, shared.NewError(fmt.Sprintf("you must be %v to use this service", roles)), http.StatusForbidden)
			return
		}

		claims := map[string]interface{}{
			"memberId": claim.MemberId,
			"email":    claim.Email,
		}
		for _, role := range claim.Roles {
			claims[role] = true
		}
		req = req.WithContext(context.WithValue(req.Context(), "claims", claims))

		next.ServeHTTP(w, req)
	})
}

func intersects(list1, list2 []string) bool {
	for _, v1 := range list1 {
		for _, v2 := range list2 {
			if v1 == v2 {
				return true
			}
		}
	}
	return false
}
