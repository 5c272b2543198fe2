package authentication

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service interface {
	Authenticate(ctx context.Context, request AuthenticateTransport) (JwtToken, error)
}

type AuthenticationService struct {
	Store interface {
		CheckMemberCredentials(tx *gorm.DB, email, password string) (store.Member, error)
		GetMemberRoles(tx *gorm.DB, memberId string) ([]store.Role, error)
	} `inject:""`
	Config *shared.AppConfig `inject:""`
}

type JwtToken struct {
	Token string `json:"token"`
}

type CdpClaims struct {
	MemberId string   `json:"memberId"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.StandardClaims
}

func (s *AuthenticationService) Authenticate(ctx context.Context, request AuthenticateTransport) (JwtToken, error) {
	member, err := s.Store.CheckMemberCredentials(nil, request.Email, request.Password)
	if err != nil {
		if errors.Cause(err) == store.ErrMemberNotFound {
			return JwtToken{}, ErrInvalidCredentials
		}
		return JwtToken{}, errors.Wrap(err, "login failed")
	}
	if !member.Active {
		return JwtToken{}, ErrInvalidCredentials
	}

	roles, err := s.Store.GetMemberRoles(nil, member.MemberId)
	if err != nil {
		return JwtToken{}, errors.Wrap(err, "failed to find member roles")
	}

	strRoles := []string{}
	for _, role := range roles {
		strRoles = append(strRoles, role.Role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CdpClaims{
		MemberId: member.MemberId,
		Email:    member.Email,
		Roles:    strRoles,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().UTC().Unix() + 60*60*6, // 6 hours validity
			IssuedAt:  time.Now().UTC().Unix(),
		},
	})
	tokenString, err := token.SignedString([]byte(s.Config.JwtSecret))
	if err != nil {
		return JwtToken{}, err
	}
	return JwtToken{Token: tokenString}, nil
}
