package store

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/miguelfer1410/cdp-sub001/shared"
)

var (
	roles = []string{shared.ROLE_ADMIN, shared.ROLE_MEMBER, shared.ROLE_ATHLETE, shared.ROLE_COACH}
)

type Role struct {
	MemberId string
	Role     string
}

func (s *Store) AddRole(tx *gorm.DB, role Role) (Role, error) {
	db := s.dbOrTx(tx)

	if !s.isRoleValid(role.Role) {
		return Role{}, fmt.Errorf("role is not valid, must be %s", roles)
	}

	if err := db.Create(&role).Error; err != nil {
		return Role{}, err
	}
	return role, nil
}

func (s *Store) isRoleValid(role string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func (s *Store) GetMemberRoles(tx *gorm.DB, memberId string) ([]Role, error) {
	db := s.dbOrTx(tx)

	var roles []Role
	if err := db.Where("member_id = ?", memberId).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
