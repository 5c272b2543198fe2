package quotas

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/families"
	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrUnauthorized = errors.New("caller is not entitled to this member's data")
)

const (
	StatusRegularizada = "Regularizada"
	StatusPendente     = "Pendente"
	StatusPorPagar     = "Por Pagar"
)

type Service interface {
	GetCurrentDue(ctx context.Context, request DueRequest) (DueTransport, error)
	AmountForPeriod(ctx context.Context, memberId string, period Period) (float64, error)
	ListFees(ctx context.Context) (FeesTransport, error)
	UpdateGlobalFees(ctx context.Context, request GlobalFeesTransport) error
	UpdateSportFees(ctx context.Context, request SportFeesTransport) (store.Sport, error)
}

type QuotaService struct {
	Store interface {
		GetMember(tx *gorm.DB, memberId string) (store.Member, error)
		ListActiveEnrollments(tx *gorm.DB, memberId string) ([]store.Enrollment, error)
		GetTeam(tx *gorm.DB, teamId string) (store.Team, error)
		GetSport(tx *gorm.DB, sportId string) (store.Sport, error)
		ListSports(tx *gorm.DB) ([]store.Sport, error)
		UpdateSportFees(tx *gorm.DB, sport store.Sport) (store.Sport, error)
		UpsertSetting(tx *gorm.DB, setting store.Setting) error
		GetGlobalFees(tx *gorm.DB) (adultFee, minorFee float64)
		CurrentPaymentForPeriod(tx *gorm.DB, memberId string, year, month int) (store.Payment, error)
	} `inject:""`
	Families interface {
		Resolve(ctx context.Context, memberId string) (families.FamilyFacts, error)
		CanAccess(ctx context.Context, callerId, targetId string) (bool, error)
	} `inject:""`
	Logger *shared.Logger `inject:""`
}

func (s QuotaService) GetCurrentDue(ctx context.Context, request DueRequest) (DueTransport, error) {
	if request.CallerId != "" && request.CallerId != request.MemberId {
		ok, err := s.Families.CanAccess(ctx, request.CallerId, request.MemberId)
		if err != nil {
			return DueTransport{}, errors.Wrap(err, "failed to verify ownership")
		}
		if !ok {
			return DueTransport{}, ErrUnauthorized
		}
	}

	member, err := s.Store.GetMember(nil, request.MemberId)
	if err != nil {
		return DueTransport{}, errors.Wrap(err, "failed to get member")
	}

	current, next := ResolvePeriods(member.PaymentPreference, time.Now().UTC())

	quote, err := s.quoteFor(ctx, member)
	if err != nil {
		return DueTransport{}, err
	}

	amount := quote.Total
	if current.IsAnnual() {
		amount = quote.Total * 12
	}

	ret := DueTransport{
		MemberId:          member.MemberId,
		PaymentPreference: member.PaymentPreference,
		Period:            current,
		NextPeriod:        next,
		QuotaAmount:       amount,
		Quote:             quote,
		Status:            StatusPorPagar,
	}

	payment, err := s.Store.CurrentPaymentForPeriod(nil, member.MemberId, current.Year, current.Month)
	if err != nil {
		if errors.Cause(err) == store.ErrPaymentNotFound {
			return ret, nil
		}
		return DueTransport{}, errors.Wrap(err, "failed to read payment ledger")
	}

	ret.PaymentId = payment.PaymentId
	ret.Entity = payment.Entity
	ret.Reference = payment.Reference
	if payment.Status == store.PAYMENT_COMPLETED {
		ret.Status = StatusRegularizada
	} else {
		ret.Status = StatusPendente
	}
	return ret, nil
}

func (s QuotaService) AmountForPeriod(ctx context.Context, memberId string, period Period) (float64, error) {
	member, err := s.Store.GetMember(nil, memberId)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get member")
	}

	quote, err := s.quoteFor(ctx, member)
	if err != nil {
		return 0, err
	}
	if period.IsAnnual() {
		return quote.Total * 12, nil
	}
	return quote.Total, nil
}

func (s QuotaService) quoteFor(ctx context.Context, member store.Member) (Quote, error) {
	facts, err := s.Families.Resolve(ctx, member.MemberId)
	if err != nil {
		return Quote{}, errors.Wrap(err, "failed to resolve family facts")
	}

	enrollments, err := s.enrollmentFacts(ctx, member.MemberId)
	if err != nil {
		return Quote{}, err
	}

	adultFee, minorFee := s.Store.GetGlobalFees(nil)
	return Compute(member, facts, enrollments, adultFee, minorFee, time.Now().UTC()), nil
}

func (s QuotaService) enrollmentFacts(ctx context.Context, memberId string) ([]EnrollmentFact, error) {
	enrollments, err := s.Store.ListActiveEnrollments(nil, memberId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list enrollments")
	}

	facts := []EnrollmentFact{}
	for _, enrollment := range enrollments {
		team, err := s.Store.GetTeam(nil, enrollment.TeamId)
		if err != nil {
			// an enrollment whose team vanished must not break billing
			if errors.Cause(err) == store.ErrTeamNotFound {
				s.Logger.Warn(ctx, "enrollment references missing team", "enrollmentId", enrollment.EnrollmentId)
				continue
			}
			return nil, errors.Wrap(err, "failed to get team")
		}
		sport, err := s.Store.GetSport(nil, team.SportId)
		if err != nil {
			if errors.Cause(err) == store.ErrSportNotFound {
				s.Logger.Warn(ctx, "team references missing sport", "teamId", team.TeamId)
				continue
			}
			return nil, errors.Wrap(err, "failed to get sport")
		}
		facts = append(facts, EnrollmentFact{
			SportName:       sport.Name,
			Escalao:         enrollment.Escalao,
			Schedule:        sport,
			InscriptionPaid: enrollment.InscriptionPaid,
		})
	}
	return facts, nil
}

func (s QuotaService) ListFees(ctx context.Context) (FeesTransport, error) {
	adultFee, minorFee := s.Store.GetGlobalFees(nil)

	sports, err := s.Store.ListSports(nil)
	if err != nil {
		return FeesTransport{}, errors.Wrap(err, "failed to list sports")
	}

	ret := FeesTransport{MemberFee: adultFee, MinorMemberFee: minorFee, Sports: []SportFeesTransport{}}
	for _, sport := range sports {
		ret.Sports = append(ret.Sports, sportFeesTransport(sport))
	}
	return ret, nil
}

func (s QuotaService) UpdateGlobalFees(ctx context.Context, request GlobalFeesTransport) error {
	if err := s.Store.UpsertSetting(nil, store.Setting{
		Key:         store.SETTING_MEMBER_FEE,
		Value:       strconv.FormatFloat(request.Amount, 'f', 2, 64),
		Description: "Quota mensal de sócio",
	}); err != nil {
		return errors.Wrap(err, "failed to update member fee")
	}
	if err := s.Store.UpsertSetting(nil, store.Setting{
		Key:         store.SETTING_MINOR_MEMBER_FEE,
		Value:       strconv.FormatFloat(request.MinorAmount, 'f', 2, 64),
		Description: "Quota mensal de sócio (Menor)",
	}); err != nil {
		return errors.Wrap(err, "failed to update minor member fee")
	}
	s.Logger.Info(ctx, "global fees updated",
		"memberFee", fmt.Sprintf("%.2f", request.Amount),
		"minorMemberFee", fmt.Sprintf("%.2f", request.MinorAmount))
	return nil
}

func (s QuotaService) UpdateSportFees(ctx context.Context, request SportFeesTransport) (store.Sport, error) {
	sport, err := s.Store.UpdateSportFees(nil, store.Sport{
		SportId:                request.SportId,
		QuotaIncluded:          request.QuotaIncluded,
		MonthlyFee:             request.MonthlyFee,
		FeeEscalao1Normal:      request.FeeEscalao1Normal,
		FeeEscalao2Normal:      request.FeeEscalao2Normal,
		FeeDiscount:            request.FeeDiscount,
		InscriptionFeeNormal:   request.InscriptionFeeNormal,
		InscriptionFeeDiscount: request.InscriptionFeeDiscount,
	})
	if err != nil {
		return store.Sport{}, errors.Wrap(err, "failed to update sport fees")
	}
	return sport, nil
}

func NewDefaultService() Service {
	return &QuotaService{}
}

// ServiceMiddleware is a chainable behavior modifier for QuotaService.
type ServiceMiddleware func(QuotaService) QuotaService
