package families

import (
	"context"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/store"
)

var (
	ErrMemberMissing = errors.New("member id is required")
	ErrUnauthorized  = errors.New("you are not authorized to see this family")
)

// FamilyFacts is everything the fee engine needs to know about a member's
// family situation.
type FamilyFacts struct {
	Parents                      []store.Member
	SiblingsWithActiveEnrollment bool
	ExemptFromGlobalFee          bool
}

type Service interface {
	Resolve(ctx context.Context, memberId string) (FamilyFacts, error)
	AddLink(ctx context.Context, request LinkTransport) (store.FamilyLink, error)
	RemoveLink(ctx context.Context, linkId string) error
	ListLinks(ctx context.Context, callerId, memberId string) ([]LinkTransport, error)
	ListAliasGroups(ctx context.Context) ([]AliasGroup, error)
	CanAccess(ctx context.Context, callerId, targetId string) (bool, error)
}

type FamilyService struct {
	Store interface {
		ListFamilyLinks(tx *gorm.DB, memberId string) ([]store.FamilyLink, error)
		SetFamilyLink(tx *gorm.DB, link store.FamilyLink) (store.FamilyLink, error)
		RemoveFamilyLink(tx *gorm.DB, linkId string) error
		GetMember(tx *gorm.DB, memberId string) (store.Member, error)
		ListMembers(tx *gorm.DB) ([]store.Member, error)
		HasActiveEnrollment(tx *gorm.DB, memberId string) (bool, error)
	} `inject:""`
}

// Reciprocal maps a stored relationship label to the label seen from the
// other endpoint. A stored "Filho" row reads back as "Pai" from the child's
// side; links should be stored parent-side when the distinction matters.
func Reciprocal(relationship string) string {
	switch relationship {
	case store.REL_PAI, store.REL_MAE:
		return store.REL_FILHO
	case store.REL_FILHO:
		return store.REL_PAI
	default:
		return relationship
	}
}

// relationTo reads a link row from the given member's side: it returns the
// other endpoint and what that endpoint is to the member.
func relationTo(link store.FamilyLink, memberId string) (otherId, relationship string) {
	if link.MemberId == memberId {
		return link.LinkedMemberId, link.Relationship
	}
	return link.MemberId, Reciprocal(link.Relationship)
}

func (f FamilyService) Resolve(ctx context.Context, memberId string) (FamilyFacts, error) {
	facts := FamilyFacts{}
	if memberId == "" {
		return facts, ErrMemberMissing
	}

	links, err := f.Store.ListFamilyLinks(nil, memberId)
	if err != nil {
		return facts, errors.Wrap(err, "failed to list family links")
	}

	fathers := []store.Member{}
	mothers := []store.Member{}
	for _, link := range links {
		otherId, relationship := relationTo(link, memberId)

		other, err := f.Store.GetMember(nil, otherId)
		if err != nil {
			// a link pointing at a vanished member is treated as absent
			if errors.Cause(err) == store.ErrMemberNotFound {
				continue
			}
			return facts, errors.Wrap(err, "failed to get linked member")
		}

		switch relationship {
		case store.REL_IRMAO:
			if !facts.SiblingsWithActiveEnrollment {
				active, err := f.Store.HasActiveEnrollment(nil, otherId)
				if err != nil {
					return facts, errors.Wrap(err, "failed to check sibling enrollments")
				}
				facts.SiblingsWithActiveEnrollment = active
			}
		case store.REL_PAI:
			if other.MembershipStatus == store.STATUS_ACTIVE {
				fathers = append(fathers, other)
			}
		case store.REL_MAE:
			if other.MembershipStatus == store.STATUS_ACTIVE {
				mothers = append(mothers, other)
			}
		}
	}

	facts.Parents = append(append([]store.Member{}, fathers...), mothers...)

	exempt, err := f.resolveExemption(fathers, mothers)
	if err != nil {
		return facts, err
	}
	facts.ExemptFromGlobalFee = exempt

	return facts, nil
}

// resolveExemption grants the global-fee waiver only to households where an
// active father and an active mother have at least two children linked to
// both of them.
func (f FamilyService) resolveExemption(fathers, mothers []store.Member) (bool, error) {
	if len(fathers) == 0 || len(mothers) == 0 {
		return false, nil
	}

	for _, father := range fathers {
		fatherChildren, err := f.childrenOf(father.MemberId)
		if err != nil {
			return false, err
		}
		if len(fatherChildren) < 2 {
			continue
		}
		for _, mother := range mothers {
			motherChildren, err := f.childrenOf(mother.MemberId)
			if err != nil {
				return false, err
			}
			shared := 0
			for childId := range fatherChildren {
				if motherChildren[childId] {
					shared++
				}
			}
			if shared >= 2 {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f FamilyService) childrenOf(parentId string) (map[string]bool, error) {
	links, err := f.Store.ListFamilyLinks(nil, parentId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list parent links")
	}

	children := map[string]bool{}
	for _, link := range links {
		otherId, relationship := relationTo(link, parentId)
		if relationship != store.REL_FILHO {
			continue
		}
		if _, err := f.Store.GetMember(nil, otherId); err != nil {
			if errors.Cause(err) == store.ErrMemberNotFound {
				continue
			}
			return nil, errors.Wrap(err, "failed to get linked child")
		}
		children[otherId] = true
	}
	return children, nil
}

func (f FamilyService) AddLink(ctx context.Context, request LinkTransport) (store.FamilyLink, error) {
	link, err := f.Store.SetFamilyLink(nil, store.FamilyLink{
		MemberId:       request.MemberId,
		LinkedMemberId: request.LinkedMemberId,
		Relationship:   request.Relationship,
	})
	if err != nil {
		return store.FamilyLink{}, errors.Wrap(err, "failed to add family link")
	}
	return link, nil
}

func (f FamilyService) RemoveLink(ctx context.Context, linkId string) error {
	if err := f.Store.RemoveFamilyLink(nil, linkId); err != nil {
		return errors.Wrap(err, "failed to remove family link")
	}
	return nil
}

func (f FamilyService) ListLinks(ctx context.Context, callerId, memberId string) ([]LinkTransport, error) {
	if callerId != "" && callerId != memberId {
		ok, err := f.CanAccess(ctx, callerId, memberId)
		if err != nil {
			return nil, errors.Wrap(err, "failed to verify ownership")
		}
		if !ok {
			return nil, ErrUnauthorized
		}
	}

	links, err := f.Store.ListFamilyLinks(nil, memberId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list family links")
	}

	ret := []LinkTransport{}
	for _, link := range links {
		otherId, relationship := relationTo(link, memberId)
		ret = append(ret, LinkTransport{
			Id:             link.LinkId,
			MemberId:       memberId,
			LinkedMemberId: otherId,
			Relationship:   relationship,
		})
	}
	return ret, nil
}

func NewDefaultService() Service {
	return &FamilyService{}
}

// ServiceMiddleware is a chainable behavior modifier for FamilyService.
type ServiceMiddleware func(FamilyService) FamilyService
