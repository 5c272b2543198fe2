package store

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

const (
	REL_PAI     = "Pai"
	REL_MAE     = "Mãe"
	REL_FILHO   = "Filho"
	REL_IRMAO   = "Irmão"
	REL_CONJUGE = "Cônjuge"
)

var (
	allRelationships       = []string{REL_PAI, REL_MAE, REL_FILHO, REL_IRMAO, REL_CONJUGE}
	ErrInvalidRelationship = errors.New(fmt.Sprintf("relationship is not valid, it should be one of %s", allRelationships))
	ErrSelfLink            = errors.New("a member cannot be linked to itself")
	ErrLinkAlreadyExists   = errors.New("members are already linked")
	ErrLinkNotFound        = errors.New("family link not found")
)

// FamilyLink is stored once per unordered pair. Relationship describes what
// the linked member is to the owning member; the reverse direction is
// derived, never stored.
type FamilyLink struct {
	LinkId         string `gorm:"primary_key:true"`
	MemberId       string
	LinkedMemberId string
	Relationship   string
	CreatedAt      time.Time
}

func (FamilyLink) TableName() string {
	return "family_links"
}

func (s *Store) SetFamilyLink(tx *gorm.DB, link FamilyLink) (FamilyLink, error) {
	db := s.dbOrTx(tx)

	if !s.isRelationshipValid(link.Relationship) {
		return FamilyLink{}, errors.Wrap(ErrInvalidRelationship, fmt.Sprintf("relationship %s is not valid", link.Relationship))
	}
	if link.MemberId == link.LinkedMemberId {
		return FamilyLink{}, ErrSelfLink
	}

	existing := FamilyLink{}
	res := db.Where("(member_id = ? AND linked_member_id = ?) OR (member_id = ? AND linked_member_id = ?)",
		link.MemberId, link.LinkedMemberId, link.LinkedMemberId, link.MemberId).First(&existing)
	if !res.RecordNotFound() {
		if res.Error != nil {
			return FamilyLink{}, res.Error
		}
		return FamilyLink{}, ErrLinkAlreadyExists
	}

	link.LinkId = s.StringGenerator.GenerateUuid()
	link.CreatedAt = time.Now().UTC()
	if err := db.Create(&link).Error; err != nil {
		return FamilyLink{}, err
	}
	return link, nil
}

func (s *Store) RemoveFamilyLink(tx *gorm.DB, linkId string) error {
	db := s.dbOrTx(tx)

	res := db.Where("link_id = ?", linkId).Delete(FamilyLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ListFamilyLinks returns every row naming memberId on either endpoint.
func (s *Store) ListFamilyLinks(tx *gorm.DB, memberId string) ([]FamilyLink, error) {
	db := s.dbOrTx(tx)

	links := []FamilyLink{}
	if err := db.Where("member_id = ? OR linked_member_id = ?", memberId, memberId).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (s *Store) isRelationshipValid(relationship string) bool {
	for _, rel := range allRelationships {
		if rel == relationship {
			return true
		}
	}
	return false
}
