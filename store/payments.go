package store

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

const (
	PAYMENT_PENDING   = "Pending"
	PAYMENT_COMPLETED = "Completed"
	PAYMENT_FAILED    = "Failed"

	METHOD_MB     = "MB"
	METHOD_MANUAL = "Manual"
)

// Payment is one billing attempt. PeriodMonth 0 means the row covers the
// whole PeriodYear (annual preference). Rows are never deleted.
type Payment struct {
	PaymentId   string `gorm:"primary_key:true"`
	MemberId    string
	Amount      float64
	Status      string
	Method      string
	Description string

	EasypayId string
	Entity    string
	Reference string

	PeriodYear  int
	PeriodMonth int

	CreatedAt time.Time
	PaidAt    *time.Time
}

func (Payment) TableName() string {
	return "payments"
}

func (s *Store) AddPayment(tx *gorm.DB, payment Payment) (Payment, error) {
	db := s.dbOrTx(tx)

	if !s.MemberExists(tx, payment.MemberId) {
		return Payment{}, ErrMemberNotFound
	}

	payment.PaymentId = s.StringGenerator.GenerateUuid()
	payment.CreatedAt = time.Now().UTC()
	if payment.Status == PAYMENT_COMPLETED && payment.PaidAt == nil {
		now := payment.CreatedAt
		payment.PaidAt = &now
	}
	if err := db.Create(&payment).Error; err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (s *Store) GetPayment(tx *gorm.DB, paymentId string) (Payment, error) {
	db := s.dbOrTx(tx)

	payment := Payment{}
	res := db.Where("payment_id = ?", paymentId).First(&payment)
	if res.RecordNotFound() {
		return Payment{}, ErrPaymentNotFound
	}
	if err := res.Error; err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (s *Store) ListPayments(tx *gorm.DB, memberId string, limit int) ([]Payment, error) {
	db := s.dbOrTx(tx)

	payments := []Payment{}
	query := db.Where("member_id = ?", memberId).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) ListPaymentsForPeriod(tx *gorm.DB, memberId string, year, month int) ([]Payment, error) {
	db := s.dbOrTx(tx)

	payments := []Payment{}
	if err := db.Where("member_id = ? AND period_year = ? AND period_month = ?", memberId, year, month).
		Order("created_at desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CurrentPaymentForPeriod prefers a Completed row, then the most recent
// Pending one. Failed rows never represent the period's state.
func (s *Store) CurrentPaymentForPeriod(tx *gorm.DB, memberId string, year, month int) (Payment, error) {
	db := s.dbOrTx(tx)

	payment := Payment{}
	res := db.Where("member_id = ? AND period_year = ? AND period_month = ? AND status = ?",
		memberId, year, month, PAYMENT_COMPLETED).First(&payment)
	if res.Error == nil {
		return payment, nil
	}
	if !res.RecordNotFound() {
		return Payment{}, res.Error
	}

	res = db.Where("member_id = ? AND period_year = ? AND period_month = ? AND status = ?",
		memberId, year, month, PAYMENT_PENDING).Order("created_at desc").First(&payment)
	if res.RecordNotFound() {
		return Payment{}, ErrPaymentNotFound
	}
	if err := res.Error; err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (s *Store) CompletedPaymentExists(tx *gorm.DB, memberId string, year, month int) (bool, error) {
	db := s.dbOrTx(tx)

	var count int
	if err := db.Model(Payment{}).Where("member_id = ? AND period_year = ? AND period_month = ? AND status = ?",
		memberId, year, month, PAYMENT_COMPLETED).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) LastCompletedPayment(tx *gorm.DB, memberId string) (Payment, error) {
	db := s.dbOrTx(tx)

	payment := Payment{}
	res := db.Where("member_id = ? AND status = ?", memberId, PAYMENT_COMPLETED).
		Order("paid_at desc").First(&payment)
	if res.RecordNotFound() {
		return Payment{}, ErrPaymentNotFound
	}
	if err := res.Error; err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// UpdatePaymentStatus is a single UPDATE so a concurrent status-check and
// manual override cannot leave a half-written row. Completing stamps
// paid_at in the same statement.
func (s *Store) UpdatePaymentStatus(tx *gorm.DB, paymentId string, status string) error {
	db := s.dbOrTx(tx)

	var res *gorm.DB
	if status == PAYMENT_COMPLETED {
		res = db.Exec("UPDATE payments SET status = ?, paid_at = ? WHERE payment_id = ?", status, time.Now().UTC(), paymentId)
	} else {
		res = db.Exec("UPDATE payments SET status = ? WHERE payment_id = ?", status, paymentId)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
