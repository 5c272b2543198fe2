package store

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrSportNotFound = errors.New("sport not found")
)

// Sport carries the fee schedule alongside the directory fields. MonthlyFee
// is the generic (no escalão) tier; FeeDiscount is the single flat fee used
// whenever the sibling or second-sport discount triggers, whatever the tier.
type Sport struct {
	SportId     string `gorm:"primary_key:true"`
	Name        string
	Description string

	QuotaIncluded     bool
	MonthlyFee        float64
	FeeEscalao1Normal float64
	FeeEscalao2Normal float64
	FeeDiscount       float64

	InscriptionFeeNormal   float64
	InscriptionFeeDiscount float64

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Sport) TableName() string {
	return "sports"
}

func (s *Store) AddSport(tx *gorm.DB, sport Sport) (Sport, error) {
	db := s.dbOrTx(tx)

	sport.SportId = s.StringGenerator.GenerateUuid()
	sport.Active = true
	sport.CreatedAt = time.Now().UTC()
	sport.UpdatedAt = sport.CreatedAt

	if err := db.Create(&sport).Error; err != nil {
		return Sport{}, err
	}
	return sport, nil
}

func (s *Store) GetSport(tx *gorm.DB, sportId string) (Sport, error) {
	db := s.dbOrTx(tx)

	sport := Sport{}
	res := db.Where("sport_id = ?", sportId).First(&sport)
	if res.RecordNotFound() {
		return Sport{}, ErrSportNotFound
	}
	if err := res.Error; err != nil {
		return Sport{}, err
	}
	return sport, nil
}

func (s *Store) ListSports(tx *gorm.DB) ([]Sport, error) {
	db := s.dbOrTx(tx)

	sports := []Sport{}
	if err := db.Where("active = true").Find(&sports).Error; err != nil {
		return nil, err
	}
	return sports, nil
}

func (s *Store) UpdateSportFees(tx *gorm.DB, sport Sport) (Sport, error) {
	db := s.dbOrTx(tx)

	res := db.Model(Sport{}).Where("sport_id = ?", sport.SportId).Updates(map[string]interface{}{
		"quota_included":           sport.QuotaIncluded,
		"monthly_fee":              sport.MonthlyFee,
		"fee_escalao1_normal":      sport.FeeEscalao1Normal,
		"fee_escalao2_normal":      sport.FeeEscalao2Normal,
		"fee_discount":             sport.FeeDiscount,
		"inscription_fee_normal":   sport.InscriptionFeeNormal,
		"inscription_fee_discount": sport.InscriptionFeeDiscount,
		"updated_at":               time.Now().UTC(),
	})
	if res.Error != nil {
		return Sport{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Sport{}, ErrSportNotFound
	}
	return s.GetSport(tx, sport.SportId)
}
