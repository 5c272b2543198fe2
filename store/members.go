package store

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrMemberNotFound = errors.New("member not found")
)

const (
	STATUS_PENDING  = "Pending"
	STATUS_ACTIVE   = "Active"
	STATUS_INACTIVE = "Inactive"

	PREFERENCE_MONTHLY = "Monthly"
	PREFERENCE_ANNUAL  = "Annual"
)

type Member struct {
	MemberId          string `gorm:"primary_key:true"`
	MembershipNumber  string
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Nif               string
	BirthDate         time.Time
	PaymentPreference string
	MembershipStatus  string
	MemberSince       *time.Time
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Member) TableName() string {
	return "members"
}

func (s *Store) AddMember(tx *gorm.DB, member Member, password string) (Member, error) {
	db := s.dbOrTx(tx)

	member.MemberId = s.StringGenerator.GenerateUuid()
	member.MembershipNumber = s.StringGenerator.GenerateMembershipNumber()
	member.MembershipStatus = STATUS_PENDING
	member.Active = true
	member.CreatedAt = time.Now().UTC()
	member.UpdatedAt = member.CreatedAt

	if err := db.Create(&member).Error; err != nil {
		return Member{}, err
	}
	if err := db.Exec("UPDATE members SET password = crypt(?, gen_salt('bf',8)) WHERE member_id = ?", password, member.MemberId).Error; err != nil {
		return Member{}, err
	}

	return member, nil
}

func (s *Store) GetMember(tx *gorm.DB, memberId string) (Member, error) {
	db := s.dbOrTx(tx)

	member := Member{}
	res := db.Where("member_id = ?", memberId).First(&member)
	if res.RecordNotFound() {
		return Member{}, ErrMemberNotFound
	}
	if err := res.Error; err != nil {
		return Member{}, err
	}
	return member, nil
}

func (s *Store) ListMembers(tx *gorm.DB) ([]Member, error) {
	db := s.dbOrTx(tx)

	members := []Member{}
	if err := db.Where("active = true").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Store) MemberExists(tx *gorm.DB, memberId string) bool {
	db := s.dbOrTx(tx)

	m := Member{}
	return !db.Model(Member{}).Where("member_id = ?", memberId).First(&m).RecordNotFound()
}

func (s *Store) MemberEmailExists(tx *gorm.DB, email string) bool {
	db := s.dbOrTx(tx)

	m := Member{}
	return !db.Model(Member{}).Where("email = ?", email).First(&m).RecordNotFound()
}

// SetMembershipStatus stamps member_since on the first transition to Active.
func (s *Store) SetMembershipStatus(tx *gorm.DB, memberId string, status string) (Member, error) {
	db := s.dbOrTx(tx)

	member, err := s.GetMember(tx, memberId)
	if err != nil {
		return Member{}, err
	}

	updates := map[string]interface{}{
		"membership_status": status,
		"updated_at":        time.Now().UTC(),
	}
	if status == STATUS_ACTIVE && member.MemberSince == nil {
		now := time.Now().UTC()
		updates["member_since"] = now
	}
	if err := db.Model(Member{}).Where("member_id = ?", memberId).Updates(updates).Error; err != nil {
		return Member{}, err
	}

	return s.GetMember(tx, memberId)
}

// DeactivateMember is a soft delete, members are never removed.
func (s *Store) DeactivateMember(tx *gorm.DB, memberId string) error {
	db := s.dbOrTx(tx)

	res := db.Model(Member{}).Where("member_id = ?", memberId).
		Updates(map[string]interface{}{"active": false, "membership_status": STATUS_INACTIVE, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *Store) CheckMemberCredentials(tx *gorm.DB, email, password string) (Member, error) {
	db := s.dbOrTx(tx)

	member := Member{}
	res := db.Where("email = ? AND password = crypt(?, password)", email, password).First(&member)
	if res.RecordNotFound() {
		return Member{}, ErrMemberNotFound
	}
	if err := res.Error; err != nil {
		return Member{}, err
	}
	return member, nil
}
