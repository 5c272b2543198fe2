package store

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

const (
	ESCALAO_1 = "Escalão 1"
	ESCALAO_2 = "Escalão 2"
)

// Enrollment ties a member to a team. LeftAt NULL means active; closing an
// enrollment sets LeftAt, it is never deleted.
type Enrollment struct {
	EnrollmentId        string `gorm:"primary_key:true"`
	MemberId            string
	TeamId              string
	Escalao             string
	InscriptionPaid     bool
	InscriptionPaidDate *time.Time
	JoinedAt            time.Time
	LeftAt              *time.Time
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (s *Store) AddEnrollment(tx *gorm.DB, enrollment Enrollment) (Enrollment, error) {
	db := s.dbOrTx(tx)

	if !s.MemberExists(tx, enrollment.MemberId) {
		return Enrollment{}, ErrMemberNotFound
	}
	if _, err := s.GetTeam(tx, enrollment.TeamId); err != nil {
		return Enrollment{}, err
	}

	enrollment.EnrollmentId = s.StringGenerator.GenerateUuid()
	enrollment.JoinedAt = time.Now().UTC()
	enrollment.LeftAt = nil
	if err := db.Create(&enrollment).Error; err != nil {
		return Enrollment{}, err
	}
	return enrollment, nil
}

func (s *Store) GetEnrollment(tx *gorm.DB, enrollmentId string) (Enrollment, error) {
	db := s.dbOrTx(tx)

	enrollment := Enrollment{}
	res := db.Where("enrollment_id = ?", enrollmentId).First(&enrollment)
	if res.RecordNotFound() {
		return Enrollment{}, ErrEnrollmentNotFound
	}
	if err := res.Error; err != nil {
		return Enrollment{}, err
	}
	return enrollment, nil
}

func (s *Store) ListActiveEnrollments(tx *gorm.DB, memberId string) ([]Enrollment, error) {
	db := s.dbOrTx(tx)

	enrollments := []Enrollment{}
	if err := db.Where("member_id = ? AND left_at IS NULL", memberId).Order("joined_at asc").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (s *Store) HasActiveEnrollment(tx *gorm.DB, memberId string) (bool, error) {
	db := s.dbOrTx(tx)

	var count int
	if err := db.Model(Enrollment{}).Where("member_id = ? AND left_at IS NULL", memberId).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CloseEnrollment(tx *gorm.DB, enrollmentId string) error {
	db := s.dbOrTx(tx)

	now := time.Now().UTC()
	res := db.Model(Enrollment{}).Where("enrollment_id = ? AND left_at IS NULL", enrollmentId).Update("left_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (s *Store) ReactivateEnrollment(tx *gorm.DB, enrollmentId string) error {
	db := s.dbOrTx(tx)

	res := db.Model(Enrollment{}).Where("enrollment_id = ?", enrollmentId).Update("left_at", gorm.Expr("NULL"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (s *Store) SetInscriptionPaid(tx *gorm.DB, enrollmentId string) error {
	db := s.dbOrTx(tx)

	now := time.Now().UTC()
	res := db.Model(Enrollment{}).Where("enrollment_id = ?", enrollmentId).
		Updates(map[string]interface{}{"inscription_paid": true, "inscription_paid_date": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}
