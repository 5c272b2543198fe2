package members

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/authentication"
	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")
)

type RegistrationRequest struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Nif               string `json:"nif"`
	BirthDate         string `json:"birthDate"`
	PaymentPreference string `json:"paymentPreference,omitempty"`
	Password          string `json:"password"`
}

type GetMemberRequest struct {
	CallerId string `json:"-"`
	MemberId string `json:"memberId"`
}

type ReviewRequest struct {
	MemberId string `json:"memberId"`
	Approve  bool   `json:"approve"`
}

type MemberTransport struct {
	MemberId          string `json:"memberId"`
	MembershipNumber  string `json:"membershipNumber"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	Nif               string `json:"nif,omitempty"`
	BirthDate         string `json:"birthDate"`
	PaymentPreference string `json:"paymentPreference"`
	MembershipStatus  string `json:"membershipStatus"`

	MemberSince *time.Time `json:"memberSince,omitempty"`
}

func memberTransport(member store.Member) MemberTransport {
	return MemberTransport{
		MemberId:          member.MemberId,
		MembershipNumber:  member.MembershipNumber,
		FirstName:         member.FirstName,
		LastName:          member.LastName,
		Email:             member.Email,
		Phone:             member.Phone,
		Nif:               member.Nif,
		BirthDate:         member.BirthDate.Format(birthDateLayout),
		PaymentPreference: member.PaymentPreference,
		MembershipStatus:  member.MembershipStatus,
		MemberSince:       member.MemberSince,
	}
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Register(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeRegisterEndpoint(h.Service),
		decodeRegistrationRequest,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		decodeGetRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) List(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Review(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeReviewEndpoint(h.Service),
		decodeReviewRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Deactivate(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeactivateEndpoint(h.Service),
		decodeGetRequest,
		shared.EncodeResponse204,
		opts...,
	)
}

func makeRegisterEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(RegistrationRequest)
		return svc.RegisterMember(ctx, req)
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(GetMemberRequest)
		return svc.GetMember(ctx, req)
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return svc.ListMembers(ctx)
	}
}

func makeReviewEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ReviewRequest)
		return svc.ReviewMember(ctx, req)
	}
}

func makeDeactivateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(GetMemberRequest)
		if err := svc.DeactivateMember(ctx, req.MemberId); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func decodeRegistrationRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var request RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeGetRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return GetMemberRequest{
		CallerId: authentication.CallerIdFromContext(ctx),
		MemberId: memberId,
	}, nil
}

func decodeReviewRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.MemberId = memberId
	return request, nil
}

func ignorePayload(_ context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrInvalidEmail, ErrInvalidPasswordFormat, ErrInvalidPreference, ErrInvalidBirthDate:
		w.WriteHeader(http.StatusBadRequest)
	case ErrUnauthorized:
		w.WriteHeader(http.StatusForbidden)
	case store.ErrMemberNotFound:
		w.WriteHeader(http.StatusNotFound)
	case ErrEmailAlreadyExists:
		w.WriteHeader(http.StatusConflict)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
