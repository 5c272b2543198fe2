package members_test

import (
	"context"
	"time"

	. "github.com/miguelfer1410/cdp-sub001/members"

	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
	"github.com/miguelfer1410/cdp-sub001/store/mocks"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

type mockFamilies struct {
	mock.Mock
}

func (m *mockFamilies) CanAccess(ctx context.Context, callerId, targetId string) (bool, error) {
	args := m.Called(ctx, callerId, targetId)
	return args.Bool(0), args.Error(1)
}

var _ = Describe("MemberService", func() {

	var (
		ctx = context.Background()

		mockStore *mocks.MockStore
		fam       *mockFamilies
		service   MemberService

		registration RegistrationRequest
	)

	BeforeEach(func() {
		mockStore = &mocks.MockStore{}
		fam = &mockFamilies{}
		service = MemberService{
			Store:    mockStore,
			Families: fam,
			Logger:   shared.NewLogger("test"),
		}
		registration = RegistrationRequest{
			FirstName: "João",
			LastName:  "Silva",
			Email:     "joao@cdp.pt",
			Phone:     "912345678",
			BirthDate: "1985-06-01",
			Password:  "segredo1",
		}
	})

	Context("RegisterMember", func() {

		It("creates a Pending member with a membership number", func() {
			mockStore.On("MemberEmailExists", mock.Anything, "joao@cdp.pt").Return(false)
			mockStore.On("AddMember", mock.Anything, mock.MatchedBy(func(m store.Member) bool {
				return m.Email == "joao@cdp.pt" && m.PaymentPreference == store.PREFERENCE_MONTHLY
			}), "segredo1").Return(store.Member{
				MemberId:         "m1",
				MembershipNumber: "CDP-2026-abc123",
				Email:            "joao@cdp.pt",
				MembershipStatus: store.STATUS_PENDING,
				BirthDate:        time.Date(1985, time.June, 1, 0, 0, 0, 0, time.UTC),
			}, nil)

			member, err := service.RegisterMember(ctx, registration)

			Expect(err).To(BeNil())
			Expect(member.MembershipNumber).To(Equal("CDP-2026-abc123"))
			Expect(member.MembershipStatus).To(Equal(store.STATUS_PENDING))
		})

		It("rejects a malformed email", func() {
			registration.Email = "not-an-email"
			_, err := service.RegisterMember(ctx, registration)
			Expect(errors.Cause(err)).To(Equal(ErrInvalidEmail))
		})

		It("rejects a short password", func() {
			registration.Password = "abc"
			_, err := service.RegisterMember(ctx, registration)
			Expect(errors.Cause(err)).To(Equal(ErrInvalidPasswordFormat))
		})

		It("rejects an unknown payment preference", func() {
			registration.PaymentPreference = "Weekly"
			_, err := service.RegisterMember(ctx, registration)
			Expect(errors.Cause(err)).To(Equal(ErrInvalidPreference))
		})

		It("rejects a malformed birth date", func() {
			registration.BirthDate = "01/06/1985"
			_, err := service.RegisterMember(ctx, registration)
			Expect(errors.Cause(err)).To(Equal(ErrInvalidBirthDate))
		})

		It("rejects a duplicate email", func() {
			mockStore.On("MemberEmailExists", mock.Anything, "joao@cdp.pt").Return(true)
			_, err := service.RegisterMember(ctx, registration)
			Expect(errors.Cause(err)).To(Equal(ErrEmailAlreadyExists))
		})
	})

	Context("ReviewMember", func() {

		It("activates the member and grants the member role", func() {
			activated := store.Member{MemberId: "m1", MembershipStatus: store.STATUS_ACTIVE}
			mockStore.On("SetMembershipStatus", mock.Anything, "m1", store.STATUS_ACTIVE).Return(activated, nil)
			mockStore.On("GetMemberRoles", mock.Anything, "m1").Return([]store.Role{}, nil)
			mockStore.On("AddRole", mock.Anything, store.Role{MemberId: "m1", Role: shared.ROLE_MEMBER}).
				Return(store.Role{MemberId: "m1", Role: shared.ROLE_MEMBER}, nil)

			member, err := service.ReviewMember(ctx, ReviewRequest{MemberId: "m1", Approve: true})

			Expect(err).To(BeNil())
			Expect(member.MembershipStatus).To(Equal(store.STATUS_ACTIVE))
			mockStore.AssertExpectations(GinkgoT())
		})

		It("does not grant the member role twice", func() {
			activated := store.Member{MemberId: "m1", MembershipStatus: store.STATUS_ACTIVE}
			mockStore.On("SetMembershipStatus", mock.Anything, "m1", store.STATUS_ACTIVE).Return(activated, nil)
			mockStore.On("GetMemberRoles", mock.Anything, "m1").
				Return([]store.Role{{MemberId: "m1", Role: shared.ROLE_MEMBER}}, nil)

			_, err := service.ReviewMember(ctx, ReviewRequest{MemberId: "m1", Approve: true})

			Expect(err).To(BeNil())
			mockStore.AssertNotCalled(GinkgoT(), "AddRole", mock.Anything, mock.Anything)
		})

		It("deactivates a rejected registration", func() {
			mockStore.On("DeactivateMember", mock.Anything, "m1").Return(nil)
			mockStore.On("GetMember", mock.Anything, "m1").
				Return(store.Member{MemberId: "m1", MembershipStatus: store.STATUS_INACTIVE}, nil)

			member, err := service.ReviewMember(ctx, ReviewRequest{MemberId: "m1", Approve: false})

			Expect(err).To(BeNil())
			Expect(member.MembershipStatus).To(Equal(store.STATUS_INACTIVE))
		})
	})

	Context("GetMember", func() {

		It("refuses a caller without family access", func() {
			fam.On("CanAccess", mock.Anything, "intruder", "m1").Return(false, nil)

			_, err := service.GetMember(ctx, GetMemberRequest{CallerId: "intruder", MemberId: "m1"})

			Expect(errors.Cause(err)).To(Equal(ErrUnauthorized))
		})

		It("returns the profile to its owner", func() {
			mockStore.On("GetMember", mock.Anything, "m1").Return(store.Member{
				MemberId:  "m1",
				Email:     "joao@cdp.pt",
				BirthDate: time.Date(1985, time.June, 1, 0, 0, 0, 0, time.UTC),
			}, nil)

			member, err := service.GetMember(ctx, GetMemberRequest{CallerId: "m1", MemberId: "m1"})

			Expect(err).To(BeNil())
			Expect(member.BirthDate).To(Equal("1985-06-01"))
		})
	})
})
