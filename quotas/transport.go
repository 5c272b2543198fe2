package quotas

import (
	"context"
	"encoding/json"
	"net/http"

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

type DueRequest struct {
	CallerId string `json:"-"`
	MemberId string `json:"memberId"`
}

type DueTransport struct {
	MemberId          string `json:"memberId"`
	PaymentPreference string `json:"paymentPreference"`
	Period            Period `json:"period"`
	NextPeriod        Period `json:"nextPeriod"`

	QuotaAmount float64 `json:"quotaAmount"`
	Quote       Quote   `json:"quote"`

	Status    string `json:"status"`
	PaymentId string `json:"paymentId,omitempty"`
	Entity    string `json:"entity,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type FeesTransport struct {
	MemberFee      float64              `json:"memberFee"`
	MinorMemberFee float64              `json:"minorMemberFee"`
	Sports         []SportFeesTransport `json:"sports"`
}

type GlobalFeesTransport struct {
	Amount      float64 `json:"amount"`
	MinorAmount float64 `json:"minorAmount"`
}

type SportFeesTransport struct {
	SportId                string  `json:"sportId"`
	Name                   string  `json:"name,omitempty"`
	QuotaIncluded          bool    `json:"quotaIncluded"`
	MonthlyFee             float64 `json:"monthlyFee"`
	FeeEscalao1Normal      float64 `json:"feeEscalao1Normal"`
	FeeEscalao2Normal      float64 `json:"feeEscalao2Normal"`
	FeeDiscount            float64 `json:"feeDiscount"`
	InscriptionFeeNormal   float64 `json:"inscriptionFeeNormal"`
	InscriptionFeeDiscount float64 `json:"inscriptionFeeDiscount"`
}

func sportFeesTransport(sport store.Sport) SportFeesTransport {
	return SportFeesTransport{
		SportId:                sport.SportId,
		Name:                   sport.Name,
		QuotaIncluded:          sport.QuotaIncluded,
		MonthlyFee:             sport.MonthlyFee,
		FeeEscalao1Normal:      sport.FeeEscalao1Normal,
		FeeEscalao2Normal:      sport.FeeEscalao2Normal,
		FeeDiscount:            sport.FeeDiscount,
		InscriptionFeeNormal:   sport.InscriptionFeeNormal,
		InscriptionFeeDiscount: sport.InscriptionFeeDiscount,
	}
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) GetDue(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetDueEndpoint(h.Service),
		decodeDueRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) ListFees(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListFeesEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) UpdateGlobalFees(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateGlobalFeesEndpoint(h.Service),
		decodeGlobalFeesRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) UpdateSportFees(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateSportFeesEndpoint(h.Service),
		decodeSportFeesRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeGetDueEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(DueRequest)
		return svc.GetCurrentDue(ctx, req)
	}
}

func makeListFeesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return svc.ListFees(ctx)
	}
}

func makeUpdateGlobalFeesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(GlobalFeesTransport)
		if err := svc.UpdateGlobalFees(ctx, req); err != nil {
			return nil, err
		}
		return map[string]string{"message": "Quotas de sócio atualizadas."}, nil
	}
}

func makeUpdateSportFeesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(SportFeesTransport)
		sport, err := svc.UpdateSportFees(ctx, req)
		if err != nil {
			return nil, err
		}
		return sportFeesTransport(sport), nil
	}
}

func decodeDueRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return DueRequest{
		CallerId: authentication.CallerIdFromContext(ctx),
		MemberId: memberId,
	}, nil
}

func decodeGlobalFeesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var request GlobalFeesTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeSportFeesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	sportId, ok := vars["sportId"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request SportFeesTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.SportId = sportId
	return request, nil
}

func ignorePayload(_ context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrUnauthorized:
		w.WriteHeader(http.StatusForbidden)
	case store.ErrMemberNotFound, store.ErrSportNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
