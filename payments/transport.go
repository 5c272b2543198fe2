package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/authentication"
	"github.com/miguelfer1410/cdp-sub001/easypay"
	"github.com/miguelfer1410/cdp-sub001/quotas"
	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")
)

// IssueRequest may carry an explicit period; when Year is zero the member's
// current period is used.
type IssueRequest struct {
	CallerId string `json:"-"`
	MemberId string `json:"memberId"`
	Year     int    `json:"year,omitempty"`
	Month    int    `json:"month,omitempty"`
}

type CheckRequest struct {
	CallerId  string `json:"-"`
	PaymentId string `json:"paymentId"`
}

type ManualPaymentRequest struct {
	MemberId string  `json:"memberId"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Amount   float64 `json:"amount,omitempty"`
	Status   string  `json:"status,omitempty"`
}

type SummaryRequest struct {
	CallerId string `json:"-"`
	MemberId string `json:"memberId"`
}

type HistoryRequest struct {
	CallerId string `json:"-"`
	MemberId string `json:"memberId"`
}

type PaymentTransport struct {
	PaymentId   string  `json:"paymentId"`
	MemberId    string  `json:"memberId"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	Method      string  `json:"method"`
	Description string  `json:"description"`

	Entity    string `json:"entity,omitempty"`
	Reference string `json:"reference,omitempty"`

	Period      quotas.Period `json:"period"`
	PeriodLabel string        `json:"periodLabel"`

	CreatedAt time.Time  `json:"createdAt"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}

type SummaryTransport struct {
	MemberId          string        `json:"memberId"`
	PaymentPreference string        `json:"paymentPreference"`
	Period            quotas.Period `json:"period"`
	PeriodLabel       string        `json:"periodLabel"`
	NextPeriod        quotas.Period `json:"nextPeriod"`

	QuotaAmount float64 `json:"quotaAmount"`
	Status      string  `json:"status"`

	LastPaymentAt     *time.Time `json:"lastPaymentAt,omitempty"`
	LastPaymentAmount float64    `json:"lastPaymentAmount,omitempty"`
}

type HistoryTransport struct {
	MemberId string             `json:"memberId"`
	Payments []PaymentTransport `json:"payments"`
}

func paymentTransport(payment store.Payment) PaymentTransport {
	return PaymentTransport{
		PaymentId:   payment.PaymentId,
		MemberId:    payment.MemberId,
		Amount:      payment.Amount,
		Status:      payment.Status,
		Method:      payment.Method,
		Description: payment.Description,
		Entity:      payment.Entity,
		Reference:   payment.Reference,
		Period:      quotas.Period{Year: payment.PeriodYear, Month: payment.PeriodMonth},
		PeriodLabel: periodLabel(payment.PeriodYear, payment.PeriodMonth),
		CreatedAt:   payment.CreatedAt,
		PaidAt:      payment.PaidAt,
	}
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) IssueReference(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeIssueReferenceEndpoint(h.Service),
		decodeIssueRequest,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) CheckStatus(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeCheckStatusEndpoint(h.Service),
		decodeCheckRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) RecordManualPayment(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeRecordManualPaymentEndpoint(h.Service),
		decodeManualPaymentRequest,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) GetSummary(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetSummaryEndpoint(h.Service),
		decodeSummaryRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) GetHistory(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetHistoryEndpoint(h.Service),
		decodeHistoryRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeIssueReferenceEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(IssueRequest)
		return svc.IssueReference(ctx, req)
	}
}

func makeCheckStatusEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(CheckRequest)
		return svc.CheckStatus(ctx, req)
	}
}

func makeRecordManualPaymentEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ManualPaymentRequest)
		return svc.RecordManualPayment(ctx, req)
	}
}

func makeGetSummaryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(SummaryRequest)
		return svc.GetSummary(ctx, req)
	}
}

func makeGetHistoryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(HistoryRequest)
		return svc.GetHistory(ctx, req)
	}
}

func decodeIssueRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	// the period override is optional, an empty body is fine
	var request IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && err != io.EOF {
		return nil, err
	}
	request.CallerId = authentication.CallerIdFromContext(ctx)
	request.MemberId = memberId
	return request, nil
}

func decodeCheckRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	paymentId, ok := vars["paymentId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return CheckRequest{
		CallerId:  authentication.CallerIdFromContext(ctx),
		PaymentId: paymentId,
	}, nil
}

func decodeManualPaymentRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request ManualPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.MemberId = memberId
	return request, nil
}

func decodeSummaryRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return SummaryRequest{
		CallerId: authentication.CallerIdFromContext(ctx),
		MemberId: memberId,
	}, nil
}

func decodeHistoryRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	memberId, ok := vars["memberId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return HistoryRequest{
		CallerId: authentication.CallerIdFromContext(ctx),
		MemberId: memberId,
	}, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrInvalidAmount, ErrInvalidStatus:
		w.WriteHeader(http.StatusBadRequest)
	case ErrUnauthorized:
		w.WriteHeader(http.StatusForbidden)
	case store.ErrMemberNotFound, store.ErrPaymentNotFound:
		w.WriteHeader(http.StatusNotFound)
	case ErrAlreadyProcessed:
		w.WriteHeader(http.StatusConflict)
	case easypay.ErrGatewayUnavailable, easypay.ErrGatewayError, easypay.ErrInvalidResponse:
		w.WriteHeader(http.StatusBadGateway)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
