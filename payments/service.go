package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/easypay"
	"github.com/miguelfer1410/cdp-sub001/quotas"
	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrUnauthorized     = errors.New("caller is not entitled to this member's payments")
	ErrInvalidAmount    = errors.New("quota amount must be positive")
	ErrInvalidStatus    = errors.New("a manual payment can only be Completed or Failed")
	ErrAlreadyProcessed = errors.New("a completed payment already exists for this period")
)

const (
	StatusEmDia    = "Em Dia"
	StatusAtrasado = "Atrasado"
	StatusPendente = "Pendente"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func periodLabel(year, month int) string {
	if month == 0 {
		return fmt.Sprintf("Anual %d", year)
	}
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

type Service interface {
	IssueReference(ctx context.Context, request IssueRequest) (PaymentTransport, error)
	CheckStatus(ctx context.Context, request CheckRequest) (PaymentTransport, error)
	RecordManualPayment(ctx context.Context, request ManualPaymentRequest) (PaymentTransport, error)
	GetSummary(ctx context.Context, request SummaryRequest) (SummaryTransport, error)
	GetHistory(ctx context.Context, request HistoryRequest) (HistoryTransport, error)
}

type PaymentService struct {
	Store interface {
		GetMember(tx *gorm.DB, memberId string) (store.Member, error)
		GetPayment(tx *gorm.DB, paymentId string) (store.Payment, error)
		AddPayment(tx *gorm.DB, payment store.Payment) (store.Payment, error)
		ListPayments(tx *gorm.DB, memberId string, limit int) ([]store.Payment, error)
		CurrentPaymentForPeriod(tx *gorm.DB, memberId string, year, month int) (store.Payment, error)
		CompletedPaymentExists(tx *gorm.DB, memberId string, year, month int) (bool, error)
		LastCompletedPayment(tx *gorm.DB, memberId string) (store.Payment, error)
		UpdatePaymentStatus(tx *gorm.DB, paymentId string, status string) error
	} `inject:""`
	Easypay easypay.Client `inject:""`
	Quotas  interface {
		AmountForPeriod(ctx context.Context, memberId string, period quotas.Period) (float64, error)
	} `inject:""`
	Families interface {
		CanAccess(ctx context.Context, callerId, targetId string) (bool, error)
	} `inject:""`
	StringGenerator interface {
		GenerateUuid() string
	} `inject:""`
	Logger *shared.Logger `inject:""`
}

// IssueReference asks the gateway for an MB reference covering the member's
// current period, then records it as a Pending row. The row is only written
// after the gateway answered, so a gateway failure leaves the ledger
// untouched.
func (s PaymentService) IssueReference(ctx context.Context, request IssueRequest) (PaymentTransport, error) {
	if err := s.checkAccess(ctx, request.CallerId, request.MemberId); err != nil {
		return PaymentTransport{}, err
	}

	member, err := s.Store.GetMember(nil, request.MemberId)
	if err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to get member")
	}

	period := quotas.Period{Year: request.Year, Month: request.Month}
	if period.Year == 0 {
		period, _ = quotas.ResolvePeriods(member.PaymentPreference, time.Now().UTC())
	}

	settled, err := s.Store.CompletedPaymentExists(nil, member.MemberId, period.Year, period.Month)
	if err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to read payment ledger")
	}
	if settled {
		return PaymentTransport{}, ErrAlreadyProcessed
	}

	amount, err := s.Quotas.AmountForPeriod(ctx, member.MemberId, period)
	if err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to compute quota amount")
	}
	if amount <= 0 {
		return PaymentTransport{}, ErrInvalidAmount
	}

	result, err := s.Easypay.IssueMbReference(ctx, easypay.ReferenceRequest{
		Amount:        amount,
		Key:           s.StringGenerator.GenerateUuid(),
		CustomerName:  member.FirstName + " " + member.LastName,
		CustomerEmail: member.Email,
		CustomerPhone: member.Phone,
	})
	if err != nil {
		return PaymentTransport{}, err
	}

	payment, err := s.Store.AddPayment(nil, store.Payment{
		MemberId:    member.MemberId,
		Amount:      amount,
		Status:      store.PAYMENT_PENDING,
		Method:      store.METHOD_MB,
		Description: "Quota " + periodLabel(period.Year, period.Month),
		EasypayId:   result.Id,
		Entity:      result.Entity,
		Reference:   result.Reference,
		PeriodYear:  period.Year,
		PeriodMonth: period.Month,
	})
	if err != nil {
		s.Logger.Warn(ctx, "reference issued but not persisted", "easypayId", result.Id, "memberId", member.MemberId)
		return PaymentTransport{}, errors.Wrap(err, "failed to store payment")
	}
	return paymentTransport(payment), nil
}

// CheckStatus polls the gateway for a Pending row and moves the ledger when
// the gateway reports a terminal state. Rows already settled or failed are
// returned as-is without a gateway round-trip.
func (s PaymentService) CheckStatus(ctx context.Context, request CheckRequest) (PaymentTransport, error) {
	payment, err := s.Store.GetPayment(nil, request.PaymentId)
	if err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to get payment")
	}
	if err := s.checkAccess(ctx, request.CallerId, payment.MemberId); err != nil {
		return PaymentTransport{}, err
	}

	if payment.Status != store.PAYMENT_PENDING {
		return paymentTransport(payment), nil
	}

	result, err := s.Easypay.GetPaymentStatus(ctx, payment.EasypayId)
	if err != nil {
		return PaymentTransport{}, err
	}

	target, terminal := mapExternalStatus(result.Status)
	if !terminal {
		return paymentTransport(payment), nil
	}

	if target == store.PAYMENT_COMPLETED {
		settled, err := s.Store.CompletedPaymentExists(nil, payment.MemberId, payment.PeriodYear, payment.PeriodMonth)
		if err != nil {
			return PaymentTransport{}, errors.Wrap(err, "failed to read payment ledger")
		}
		if settled {
			// another row already settles this period, keep this one Pending
			// for an admin to resolve
			return PaymentTransport{}, ErrAlreadyProcessed
		}
	}

	if err := s.Store.UpdatePaymentStatus(nil, payment.PaymentId, target); err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to update payment status")
	}
	payment.Status = target
	if target == store.PAYMENT_COMPLETED {
		now := time.Now().UTC()
		payment.PaidAt = &now
	}
	return paymentTransport(payment), nil
}

// RecordManualPayment settles a period by hand, for cash or bank transfers
// received at the club office. The period's current row is overwritten with
// the requested status; when no row exists a Manual Completed one is
// created, priced with the current fee rules unless the request carries an
// explicit amount.
func (s PaymentService) RecordManualPayment(ctx context.Context, request ManualPaymentRequest) (PaymentTransport, error) {
	status := request.Status
	if status == "" {
		status = store.PAYMENT_COMPLETED
	}
	if status != store.PAYMENT_COMPLETED && status != store.PAYMENT_FAILED {
		return PaymentTransport{}, ErrInvalidStatus
	}

	member, err := s.Store.GetMember(nil, request.MemberId)
	if err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to get member")
	}

	existing, err := s.Store.CurrentPaymentForPeriod(nil, member.MemberId, request.Year, request.Month)
	if err != nil && errors.Cause(err) != store.ErrPaymentNotFound {
		return PaymentTransport{}, errors.Wrap(err, "failed to read payment ledger")
	}
	if err == nil {
		if existing.Status == store.PAYMENT_COMPLETED && status == store.PAYMENT_COMPLETED {
			return PaymentTransport{}, ErrAlreadyProcessed
		}
		if err := s.Store.UpdatePaymentStatus(nil, existing.PaymentId, status); err != nil {
			return PaymentTransport{}, errors.Wrap(err, "failed to update payment status")
		}
		existing.Status = status
		if status == store.PAYMENT_COMPLETED {
			now := time.Now().UTC()
			existing.PaidAt = &now
		}
		return paymentTransport(existing), nil
	}

	if status == store.PAYMENT_FAILED {
		// nothing to fail for that period
		return PaymentTransport{}, errors.Wrap(store.ErrPaymentNotFound, "no payment recorded for this period")
	}

	amount := request.Amount
	if amount <= 0 {
		amount, err = s.Quotas.AmountForPeriod(ctx, member.MemberId, quotas.Period{Year: request.Year, Month: request.Month})
		if err != nil {
			return PaymentTransport{}, errors.Wrap(err, "failed to compute quota amount")
		}
	}
	if amount <= 0 {
		return PaymentTransport{}, ErrInvalidAmount
	}

	payment, err := s.Store.AddPayment(nil, store.Payment{
		MemberId:    member.MemberId,
		Amount:      amount,
		Status:      store.PAYMENT_COMPLETED,
		Method:      store.METHOD_MANUAL,
		Description: "Quota " + periodLabel(request.Year, request.Month),
		PeriodYear:  request.Year,
		PeriodMonth: request.Month,
	})
	if err != nil {
		return PaymentTransport{}, errors.Wrap(err, "failed to store payment")
	}
	return paymentTransport(payment), nil
}

func (s PaymentService) GetSummary(ctx context.Context, request SummaryRequest) (SummaryTransport, error) {
	if err := s.checkAccess(ctx, request.CallerId, request.MemberId); err != nil {
		return SummaryTransport{}, err
	}

	member, err := s.Store.GetMember(nil, request.MemberId)
	if err != nil {
		return SummaryTransport{}, errors.Wrap(err, "failed to get member")
	}

	current, next := quotas.ResolvePeriods(member.PaymentPreference, time.Now().UTC())

	amount, err := s.Quotas.AmountForPeriod(ctx, member.MemberId, current)
	if err != nil {
		return SummaryTransport{}, errors.Wrap(err, "failed to compute quota amount")
	}

	ret := SummaryTransport{
		MemberId:          member.MemberId,
		PaymentPreference: member.PaymentPreference,
		Period:            current,
		PeriodLabel:       periodLabel(current.Year, current.Month),
		NextPeriod:        next,
		QuotaAmount:       amount,
	}

	switch {
	case amount <= 0:
		ret.Status = StatusEmDia
	default:
		payment, err := s.Store.CurrentPaymentForPeriod(nil, member.MemberId, current.Year, current.Month)
		switch {
		case err == nil && payment.Status == store.PAYMENT_COMPLETED:
			ret.Status = StatusEmDia
		case err == nil:
			ret.Status = StatusPendente
		case errors.Cause(err) == store.ErrPaymentNotFound:
			ret.Status = StatusAtrasado
		default:
			return SummaryTransport{}, errors.Wrap(err, "failed to read payment ledger")
		}
	}

	last, err := s.Store.LastCompletedPayment(nil, member.MemberId)
	if err == nil {
		ret.LastPaymentAt = last.PaidAt
		ret.LastPaymentAmount = last.Amount
	} else if errors.Cause(err) != store.ErrPaymentNotFound {
		return SummaryTransport{}, errors.Wrap(err, "failed to read payment ledger")
	}
	return ret, nil
}

func (s PaymentService) GetHistory(ctx context.Context, request HistoryRequest) (HistoryTransport, error) {
	if err := s.checkAccess(ctx, request.CallerId, request.MemberId); err != nil {
		return HistoryTransport{}, err
	}
	if _, err := s.Store.GetMember(nil, request.MemberId); err != nil {
		return HistoryTransport{}, errors.Wrap(err, "failed to get member")
	}

	payments, err := s.Store.ListPayments(nil, request.MemberId, 12)
	if err != nil {
		return HistoryTransport{}, errors.Wrap(err, "failed to list payments")
	}

	ret := HistoryTransport{MemberId: request.MemberId, Payments: []PaymentTransport{}}
	for _, payment := range payments {
		ret.Payments = append(ret.Payments, paymentTransport(payment))
	}
	return ret, nil
}

func (s PaymentService) checkAccess(ctx context.Context, callerId, memberId string) error {
	if callerId == "" || callerId == memberId {
		return nil
	}
	ok, err := s.Families.CanAccess(ctx, callerId, memberId)
	if err != nil {
		return errors.Wrap(err, "failed to verify ownership")
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// ServiceMiddleware is a chainable behavior modifier for Service.
type ServiceMiddleware func(PaymentService) PaymentService

func NewDefaultService() Service {
	return &PaymentService{}
}
