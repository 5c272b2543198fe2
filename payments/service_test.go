package payments_test

import (
	"context"
	"time"

	. "github.com/miguelfer1410/cdp-sub001/payments"

	"github.com/miguelfer1410/cdp-sub001/easypay"
	easypaymocks "github.com/miguelfer1410/cdp-sub001/easypay/mocks"
	"github.com/miguelfer1410/cdp-sub001/quotas"
	"github.com/miguelfer1410/cdp-sub001/shared"
	sharedmocks "github.com/miguelfer1410/cdp-sub001/shared/mocks"
	"github.com/miguelfer1410/cdp-sub001/store"
	"github.com/miguelfer1410/cdp-sub001/store/mocks"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

type mockQuoter struct {
	mock.Mock
}

func (m *mockQuoter) AmountForPeriod(ctx context.Context, memberId string, period quotas.Period) (float64, error) {
	args := m.Called(ctx, memberId, period)
	return args.Get(0).(float64), args.Error(1)
}

type mockFamilies struct {
	mock.Mock
}

func (m *mockFamilies) CanAccess(ctx context.Context, callerId, targetId string) (bool, error) {
	args := m.Called(ctx, callerId, targetId)
	return args.Bool(0), args.Error(1)
}

var _ = Describe("PaymentService", func() {

	var (
		ctx = context.Background()

		mockStore   *mocks.MockStore
		mockEasypay *easypaymocks.MockEasypayClient
		quoter      *mockQuoter
		fam         *mockFamilies
		service     PaymentService

		member store.Member
	)

	BeforeEach(func() {
		mockStore = &mocks.MockStore{}
		mockEasypay = &easypaymocks.MockEasypayClient{}
		quoter = &mockQuoter{}
		fam = &mockFamilies{}

		stringGenerator := &sharedmocks.MockStringGenerator{}
		stringGenerator.On("GenerateUuid").Return("key-1")

		service = PaymentService{
			Store:           mockStore,
			Easypay:         mockEasypay,
			Quotas:          quoter,
			Families:        fam,
			StringGenerator: stringGenerator,
			Logger:          shared.NewLogger("test"),
		}

		member = store.Member{
			MemberId:          "m1",
			FirstName:         "João",
			LastName:          "Silva",
			Email:             "joao@cdp.pt",
			Phone:             "912345678",
			PaymentPreference: store.PREFERENCE_MONTHLY,
		}
	})

	Context("IssueReference", func() {

		BeforeEach(func() {
			mockStore.On("GetMember", mock.Anything, "m1").Return(member, nil)
		})

		It("issues through the gateway and records a Pending row", func() {
			mockStore.On("CompletedPaymentExists", mock.Anything, "m1", mock.Anything, mock.Anything).Return(false, nil)
			quoter.On("AmountForPeriod", mock.Anything, "m1", mock.Anything).Return(30.0, nil)
			mockEasypay.On("IssueMbReference", mock.Anything, mock.MatchedBy(func(r easypay.ReferenceRequest) bool {
				return r.Amount == 30.0 && r.CustomerEmail == "joao@cdp.pt"
			})).Return(easypay.ReferenceResult{Id: "ep-1", Entity: "11200", Reference: "123456789", Amount: 30}, nil)
			mockStore.On("AddPayment", mock.Anything, mock.MatchedBy(func(p store.Payment) bool {
				return p.Status == store.PAYMENT_PENDING &&
					p.Method == store.METHOD_MB &&
					p.EasypayId == "ep-1" &&
					p.Reference == "123456789"
			})).Return(store.Payment{PaymentId: "p1", Status: store.PAYMENT_PENDING, Entity: "11200", Reference: "123456789"}, nil)

			payment, err := service.IssueReference(ctx, IssueRequest{CallerId: "m1", MemberId: "m1"})

			Expect(err).To(BeNil())
			Expect(payment.PaymentId).To(Equal("p1"))
			Expect(payment.Entity).To(Equal("11200"))
			mockStore.AssertExpectations(GinkgoT())
		})

		It("writes nothing when the gateway fails", func() {
			mockStore.On("CompletedPaymentExists", mock.Anything, "m1", mock.Anything, mock.Anything).Return(false, nil)
			quoter.On("AmountForPeriod", mock.Anything, "m1", mock.Anything).Return(30.0, nil)
			mockEasypay.On("IssueMbReference", mock.Anything, mock.Anything).
				Return(easypay.ReferenceResult{}, easypay.ErrGatewayUnavailable)

			_, err := service.IssueReference(ctx, IssueRequest{CallerId: "m1", MemberId: "m1"})

			Expect(errors.Cause(err)).To(Equal(easypay.ErrGatewayUnavailable))
			mockStore.AssertNotCalled(GinkgoT(), "AddPayment", mock.Anything, mock.Anything)
		})

		It("refuses a non-positive amount", func() {
			mockStore.On("CompletedPaymentExists", mock.Anything, "m1", mock.Anything, mock.Anything).Return(false, nil)
			quoter.On("AmountForPeriod", mock.Anything, "m1", mock.Anything).Return(0.0, nil)

			_, err := service.IssueReference(ctx, IssueRequest{CallerId: "m1", MemberId: "m1"})

			Expect(errors.Cause(err)).To(Equal(ErrInvalidAmount))
		})

		It("refuses a period that is already settled", func() {
			mockStore.On("CompletedPaymentExists", mock.Anything, "m1", mock.Anything, mock.Anything).Return(true, nil)

			_, err := service.IssueReference(ctx, IssueRequest{CallerId: "m1", MemberId: "m1"})

			Expect(errors.Cause(err)).To(Equal(ErrAlreadyProcessed))
		})

		It("refuses a caller without family access", func() {
			fam.On("CanAccess", mock.Anything, "intruder", "m1").Return(false, nil)

			_, err := service.IssueReference(ctx, IssueRequest{CallerId: "intruder", MemberId: "m1"})

			Expect(errors.Cause(err)).To(Equal(ErrUnauthorized))
		})
	})

	Context("CheckStatus", func() {

		var pending store.Payment

		BeforeEach(func() {
			pending = store.Payment{
				PaymentId:   "p1",
				MemberId:    "m1",
				Status:      store.PAYMENT_PENDING,
				EasypayId:   "ep-1",
				PeriodYear:  2026,
				PeriodMonth: 3,
			}
		})

		It("completes the row when the gateway reports success", func() {
			mockStore.On("GetPayment", mock.Anything, "p1").Return(pending, nil)
			mockEasypay.On("GetPaymentStatus", mock.Anything, "ep-1").Return(easypay.StatusResult{Id: "ep-1", Status: "success"}, nil)
			mockStore.On("CompletedPaymentExists", mock.Anything, "m1", 2026, 3).Return(false, nil)
			mockStore.On("UpdatePaymentStatus", mock.Anything, "p1", store.PAYMENT_COMPLETED).Return(nil)

			payment, err := service.CheckStatus(ctx, CheckRequest{CallerId: "m1", PaymentId: "p1"})

			Expect(err).To(BeNil())
			Expect(payment.Status).To(Equal(store.PAYMENT_COMPLETED))
			Expect(payment.PaidAt).NotTo(BeNil())
		})

		It("fails the row when the gateway reports deleted", func() {
			mockStore.On("GetPayment", mock.Anything, "p1").Return(pending, nil)
			mockEasypay.On("GetPaymentStatus", mock.Anything, "ep-1").Return(easypay.StatusResult{Id: "ep-1", Status: "deleted"}, nil)
			mockStore.On("UpdatePaymentStatus", mock.Anything, "p1", store.PAYMENT_FAILED).Return(nil)

			payment, err := service.CheckStatus(ctx, CheckRequest{CallerId: "m1", PaymentId: "p1"})

			Expect(err).To(BeNil())
			Expect(payment.Status).To(Equal(store.PAYMENT_FAILED))
		})

		It("leaves the row untouched on an unknown gateway status", func() {
			mockStore.On("GetPayment", mock.Anything, "p1").Return(pending, nil)
			mockEasypay.On("GetPaymentStatus", mock.Anything, "ep-1").Return(easypay.StatusResult{Id: "ep-1", Status: "waiting"}, nil)

			payment, err := service.CheckStatus(ctx, CheckRequest{CallerId: "m1", PaymentId: "p1"})

			Expect(err).To(BeNil())
			Expect(payment.Status).To(Equal(store.PAYMENT_PENDING))
			mockStore.AssertNotCalled(GinkgoT(), "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
		})

		It("does not query the gateway for a settled row", func() {
			pending.Status = store.PAYMENT_COMPLETED
			mockStore.On("GetPayment", mock.Anything, "p1").Return(pending, nil)

			payment, err := service.CheckStatus(ctx, CheckRequest{CallerId: "m1", PaymentId: "p1"})

			Expect(err).To(BeNil())
			Expect(payment.Status).To(Equal(store.PAYMENT_COMPLETED))
			mockEasypay.AssertNotCalled(GinkgoT(), "GetPaymentStatus", mock.Anything, mock.Anything)
		})

		It("refuses to complete when the period was settled by another row", func() {
			mockStore.On("GetPayment", mock.Anything, "p1").Return(pending, nil)
			mockEasypay.On("GetPaymentStatus", mock.Anything, "ep-1").Return(easypay.StatusResult{Id: "ep-1", Status: "success"}, nil)
			mockStore.On("CompletedPaymentExists", mock.Anything, "m1", 2026, 3).Return(true, nil)

			_, err := service.CheckStatus(ctx, CheckRequest{CallerId: "m1", PaymentId: "p1"})

			Expect(errors.Cause(err)).To(Equal(ErrAlreadyProcessed))
			mockStore.AssertNotCalled(GinkgoT(), "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	})

	Context("RecordManualPayment", func() {

		BeforeEach(func() {
			mockStore.On("GetMember", mock.Anything, "m1").Return(member, nil)
		})

		It("completes an open Pending row in place", func() {
			mockStore.On("CurrentPaymentForPeriod", mock.Anything, "m1", 2026, 3).
				Return(store.Payment{PaymentId: "p1", MemberId: "m1", Status: store.PAYMENT_PENDING}, nil)
			mockStore.On("UpdatePaymentStatus", mock.Anything, "p1", store.PAYMENT_COMPLETED).Return(nil)

			payment, err := service.RecordManualPayment(ctx, ManualPaymentRequest{MemberId: "m1", Year: 2026, Month: 3})

			Expect(err).To(BeNil())
			Expect(payment.Status).To(Equal(store.PAYMENT_COMPLETED))
			mockStore.AssertNotCalled(GinkgoT(), "AddPayment", mock.Anything, mock.Anything)
		})

		It("synthesizes a Manual row with a freshly computed amount", func() {
			mockStore.On("CurrentPaymentForPeriod", mock.Anything, "m1", 2026, 3).
				Return(store.Payment{}, store.ErrPaymentNotFound)
			quoter.On("AmountForPeriod", mock.Anything, "m1", quotas.Period{Year: 2026, Month: 3}).Return(12.5, nil)
			mockStore.On("AddPayment", mock.Anything, mock.MatchedBy(func(p store.Payment) bool {
				return p.Status == store.PAYMENT_COMPLETED &&
					p.Method == store.METHOD_MANUAL &&
					p.Amount == 12.5
			})).Return(store.Payment{PaymentId: "p2", Status: store.PAYMENT_COMPLETED, Amount: 12.5}, nil)

			payment, err := service.RecordManualPayment(ctx, ManualPaymentRequest{MemberId: "m1", Year: 2026, Month: 3})

			Expect(err).To(BeNil())
			Expect(payment.Amount).To(Equal(12.5))
		})

		It("refuses to settle an already settled period again", func() {
			mockStore.On("CurrentPaymentForPeriod", mock.Anything, "m1", 2026, 3).
				Return(store.Payment{PaymentId: "p1", Status: store.PAYMENT_COMPLETED}, nil)

			_, err := service.RecordManualPayment(ctx, ManualPaymentRequest{MemberId: "m1", Year: 2026, Month: 3})

			Expect(errors.Cause(err)).To(Equal(ErrAlreadyProcessed))
		})

		It("rejects an unknown status", func() {
			_, err := service.RecordManualPayment(ctx, ManualPaymentRequest{MemberId: "m1", Year: 2026, Month: 3, Status: "Paid"})
			Expect(errors.Cause(err)).To(Equal(ErrInvalidStatus))
		})
	})

	Context("GetSummary", func() {

		BeforeEach(func() {
			mockStore.On("GetMember", mock.Anything, "m1").Return(member, nil)
		})

		It("reports Em Dia when the current period is settled", func() {
			quoter.On("AmountForPeriod", mock.Anything, "m1", mock.Anything).Return(30.0, nil)
			mockStore.On("CurrentPaymentForPeriod", mock.Anything, "m1", mock.Anything, mock.Anything).
				Return(store.Payment{Status: store.PAYMENT_COMPLETED}, nil)
			paidAt := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
			mockStore.On("LastCompletedPayment", mock.Anything, "m1").
				Return(store.Payment{Amount: 30, PaidAt: &paidAt}, nil)

			summary, err := service.GetSummary(ctx, SummaryRequest{CallerId: "m1", MemberId: "m1"})

			Expect(err).To(BeNil())
			Expect(summary.Status).To(Equal(StatusEmDia))
			Expect(summary.LastPaymentAmount).To(Equal(30.0))
			Expect(summary.LastPaymentAt).To(Equal(&paidAt))
		})

		It("reports Atrasado when nothing covers the current period", func() {
			quoter.On("AmountForPeriod", mock.Anything, "m1", mock.Anything).Return(30.0, nil)
			mockStore.On("CurrentPaymentForPeriod", mock.Anything, "m1", mock.Anything, mock.Anything).
				Return(store.Payment{}, store.ErrPaymentNotFound)
			mockStore.On("LastCompletedPayment", mock.Anything, "m1").
				Return(store.Payment{}, store.ErrPaymentNotFound)

			summary, err := service.GetSummary(ctx, SummaryRequest{CallerId: "m1", MemberId: "m1"})

			Expect(err).To(BeNil())
			Expect(summary.Status).To(Equal(StatusAtrasado))
		})

		It("reports Em Dia for members who owe nothing", func() {
			quoter.On("AmountForPeriod", mock.Anything, "m1", mock.Anything).Return(0.0, nil)
			mockStore.On("LastCompletedPayment", mock.Anything, "m1").
				Return(store.Payment{}, store.ErrPaymentNotFound)

			summary, err := service.GetSummary(ctx, SummaryRequest{CallerId: "m1", MemberId: "m1"})

			Expect(err).To(BeNil())
			Expect(summary.Status).To(Equal(StatusEmDia))
		})
	})

	Context("GetHistory", func() {

		It("labels periods with Portuguese month names", func() {
			mockStore.On("GetMember", mock.Anything, "m1").Return(member, nil)
			mockStore.On("ListPayments", mock.Anything, "m1", 12).Return([]store.Payment{
				{PaymentId: "p1", PeriodYear: 2026, PeriodMonth: 1},
				{PaymentId: "p2", PeriodYear: 2025, PeriodMonth: 0},
			}, nil)

			history, err := service.GetHistory(ctx, HistoryRequest{CallerId: "m1", MemberId: "m1"})

			Expect(err).To(BeNil())
			Expect(history.Payments).To(HaveLen(2))
			Expect(history.Payments[0].PeriodLabel).To(Equal("Janeiro 2026"))
			Expect(history.Payments[1].PeriodLabel).To(Equal("Anual 2025"))
		})
	})
})
