package members

import (
	"context"
	"time"

	"github.com/badoux/checkmail"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/shared"
	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrUnauthorized          = errors.New("caller is not entitled to this member's profile")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrInvalidPasswordFormat = errors.New("password must be at least 6 characters long")
	ErrInvalidPreference     = errors.New("payment preference must be Monthly or Annual")
	ErrInvalidBirthDate      = errors.New("birth date must be formatted like 2006-01-02")
	ErrEmailAlreadyExists    = errors.New("a member with this email already exists")
)

const birthDateLayout = "2006-01-02"

type Service interface {
	RegisterMember(ctx context.Context, request RegistrationRequest) (MemberTransport, error)
	GetMember(ctx context.Context, request GetMemberRequest) (MemberTransport, error)
	ListMembers(ctx context.Context) ([]MemberTransport, error)
	ReviewMember(ctx context.Context, request ReviewRequest) (MemberTransport, error)
	DeactivateMember(ctx context.Context, memberId string) error
}

type MemberService struct {
	Store interface {
		AddMember(tx *gorm.DB, member store.Member, password string) (store.Member, error)
		GetMember(tx *gorm.DB, memberId string) (store.Member, error)
		ListMembers(tx *gorm.DB) ([]store.Member, error)
		MemberEmailExists(tx *gorm.DB, email string) bool
		SetMembershipStatus(tx *gorm.DB, memberId string, status string) (store.Member, error)
		DeactivateMember(tx *gorm.DB, memberId string) error
		AddRole(tx *gorm.DB, role store.Role) (store.Role, error)
		GetMemberRoles(tx *gorm.DB, memberId string) ([]store.Role, error)
	} `inject:""`
	Families interface {
		CanAccess(ctx context.Context, callerId, targetId string) (bool, error)
	} `inject:""`
	Logger *shared.Logger `inject:""`
}

// RegisterMember creates a Pending member. The club reviews registrations
// by hand, so no role is granted until an admin approves.
func (s MemberService) RegisterMember(ctx context.Context, request RegistrationRequest) (MemberTransport, error) {
	if err := checkmail.ValidateFormat(request.Email); err != nil {
		return MemberTransport{}, ErrInvalidEmail
	}
	if len(request.Password) < 6 {
		return MemberTransport{}, ErrInvalidPasswordFormat
	}
	preference := request.PaymentPreference
	if preference == "" {
		preference = store.PREFERENCE_MONTHLY
	}
	if preference != store.PREFERENCE_MONTHLY && preference != store.PREFERENCE_ANNUAL {
		return MemberTransport{}, ErrInvalidPreference
	}
	birthDate, err := time.Parse(birthDateLayout, request.BirthDate)
	if err != nil {
		return MemberTransport{}, ErrInvalidBirthDate
	}
	if s.Store.MemberEmailExists(nil, request.Email) {
		return MemberTransport{}, ErrEmailAlreadyExists
	}

	member, err := s.Store.AddMember(nil, store.Member{
		FirstName:         request.FirstName,
		LastName:          request.LastName,
		Email:             request.Email,
		Phone:             request.Phone,
		Nif:               request.Nif,
		BirthDate:         birthDate,
		PaymentPreference: preference,
	}, request.Password)
	if err != nil {
		return MemberTransport{}, errors.Wrap(err, "failed to register member")
	}

	s.Logger.Info(ctx, "new registration", "memberId", member.MemberId, "membershipNumber", member.MembershipNumber)
	return memberTransport(member), nil
}

func (s MemberService) GetMember(ctx context.Context, request GetMemberRequest) (MemberTransport, error) {
	if request.CallerId != "" && request.CallerId != request.MemberId {
		ok, err := s.Families.CanAccess(ctx, request.CallerId, request.MemberId)
		if err != nil {
			return MemberTransport{}, errors.Wrap(err, "failed to verify ownership")
		}
		if !ok {
			return MemberTransport{}, ErrUnauthorized
		}
	}

	member, err := s.Store.GetMember(nil, request.MemberId)
	if err != nil {
		return MemberTransport{}, errors.Wrap(err, "failed to get member")
	}
	return memberTransport(member), nil
}

func (s MemberService) ListMembers(ctx context.Context) ([]MemberTransport, error) {
	members, err := s.Store.ListMembers(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list members")
	}

	ret := []MemberTransport{}
	for _, member := range members {
		ret = append(ret, memberTransport(member))
	}
	return ret, nil
}

// ReviewMember is the admin decision on a registration. Approval activates
// the membership and grants the member role; rejection soft-deletes.
func (s MemberService) ReviewMember(ctx context.Context, request ReviewRequest) (MemberTransport, error) {
	if !request.Approve {
		if err := s.Store.DeactivateMember(nil, request.MemberId); err != nil {
			return MemberTransport{}, errors.Wrap(err, "failed to deactivate member")
		}
		member, err := s.Store.GetMember(nil, request.MemberId)
		if err != nil {
			return MemberTransport{}, errors.Wrap(err, "failed to get member")
		}
		return memberTransport(member), nil
	}

	member, err := s.Store.SetMembershipStatus(nil, request.MemberId, store.STATUS_ACTIVE)
	if err != nil {
		return MemberTransport{}, errors.Wrap(err, "failed to activate member")
	}

	roles, err := s.Store.GetMemberRoles(nil, member.MemberId)
	if err != nil {
		return MemberTransport{}, errors.Wrap(err, "failed to find member roles")
	}
	hasMemberRole := false
	for _, role := range roles {
		if role.Role == shared.ROLE_MEMBER {
			hasMemberRole = true
		}
	}
	if !hasMemberRole {
		if _, err := s.Store.AddRole(nil, store.Role{MemberId: member.MemberId, Role: shared.ROLE_MEMBER}); err != nil {
			return MemberTransport{}, errors.Wrap(err, "failed to grant member role")
		}
	}
	return memberTransport(member), nil
}

func (s MemberService) DeactivateMember(ctx context.Context, memberId string) error {
	if err := s.Store.DeactivateMember(nil, memberId); err != nil {
		return errors.Wrap(err, "failed to deactivate member")
	}
	return nil
}

// ServiceMiddleware is a chainable behavior modifier for Service.
type ServiceMiddleware func(MemberService) MemberService

func NewDefaultService() Service {
	return &MemberService{}
}
