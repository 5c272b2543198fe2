package mocks

import (
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/mock"

	"github.com/miguelfer1410/cdp-sub001/store"
)

type MockStore struct {
	mock.Mock
}

func (s *MockStore) AddMember(tx *gorm.DB, member store.Member, password string) (store.Member, error) {
	args := s.Called(tx, member, password)
	return args.Get(0).(store.Member), args.Error(1)
}

func (s *MockStore) GetMember(tx *gorm.DB, memberId string) (store.Member, error) {
	args := s.Called(tx, memberId)
	return args.Get(0).(store.Member), args.Error(1)
}

func (s *MockStore) ListMembers(tx *gorm.DB) ([]store.Member, error) {
	args := s.Called(tx)
	return args.Get(0).([]store.Member), args.Error(1)
}

func (s *MockStore) MemberExists(tx *gorm.DB, memberId string) bool {
	args := s.Called(tx, memberId)
	return args.Bool(0)
}

func (s *MockStore) MemberEmailExists(tx *gorm.DB, email string) bool {
	args := s.Called(tx, email)
	return args.Bool(0)
}

func (s *MockStore) SetMembershipStatus(tx *gorm.DB, memberId string, status string) (store.Member, error) {
	args := s.Called(tx, memberId, status)
	return args.Get(0).(store.Member), args.Error(1)
}

func (s *MockStore) DeactivateMember(tx *gorm.DB, memberId string) error {
	args := s.Called(tx, memberId)
	return args.Error(0)
}

func (s *MockStore) CheckMemberCredentials(tx *gorm.DB, email, password string) (store.Member, error) {
	args := s.Called(tx, email, password)
	return args.Get(0).(store.Member), args.Error(1)
}

func (s *MockStore) AddRole(tx *gorm.DB, role store.Role) (store.Role, error) {
	args := s.Called(tx, role)
	return args.Get(0).(store.Role), args.Error(1)
}

func (s *MockStore) GetMemberRoles(tx *gorm.DB, memberId string) ([]store.Role, error) {
	args := s.Called(tx, memberId)
	return args.Get(0).([]store.Role), args.Error(1)
}

func (s *MockStore) SetFamilyLink(tx *gorm.DB, link store.FamilyLink) (store.FamilyLink, error) {
	args := s.Called(tx, link)
	return args.Get(0).(store.FamilyLink), args.Error(1)
}

func (s *MockStore) RemoveFamilyLink(tx *gorm.DB, linkId string) error {
	args := s.Called(tx, linkId)
	return args.Error(0)
}

func (s *MockStore) ListFamilyLinks(tx *gorm.DB, memberId string) ([]store.FamilyLink, error) {
	args := s.Called(tx, memberId)
	return args.Get(0).([]store.FamilyLink), args.Error(1)
}

func (s *MockStore) AddSport(tx *gorm.DB, sport store.Sport) (store.Sport, error) {
	args := s.Called(tx, sport)
	return args.Get(0).(store.Sport), args.Error(1)
}

func (s *MockStore) GetSport(tx *gorm.DB, sportId string) (store.Sport, error) {
	args := s.Called(tx, sportId)
	return args.Get(0).(store.Sport), args.Error(1)
}

func (s *MockStore) ListSports(tx *gorm.DB) ([]store.Sport, error) {
	args := s.Called(tx)
	return args.Get(0).([]store.Sport), args.Error(1)
}

func (s *MockStore) UpdateSportFees(tx *gorm.DB, sport store.Sport) (store.Sport, error) {
	args := s.Called(tx, sport)
	return args.Get(0).(store.Sport), args.Error(1)
}

func (s *MockStore) AddTeam(tx *gorm.DB, team store.Team) (store.Team, error) {
	args := s.Called(tx, team)
	return args.Get(0).(store.Team), args.Error(1)
}

func (s *MockStore) GetTeam(tx *gorm.DB, teamId string) (store.Team, error) {
	args := s.Called(tx, teamId)
	return args.Get(0).(store.Team), args.Error(1)
}

func (s *MockStore) AddEnrollment(tx *gorm.DB, enrollment store.Enrollment) (store.Enrollment, error) {
	args := s.Called(tx, enrollment)
	return args.Get(0).(store.Enrollment), args.Error(1)
}

func (s *MockStore) GetEnrollment(tx *gorm.DB, enrollmentId string) (store.Enrollment, error) {
	args := s.Called(tx, enrollmentId)
	return args.Get(0).(store.Enrollment), args.Error(1)
}

func (s *MockStore) ListActiveEnrollments(tx *gorm.DB, memberId string) ([]store.Enrollment, error) {
	args := s.Called(tx, memberId)
	return args.Get(0).([]store.Enrollment), args.Error(1)
}

func (s *MockStore) HasActiveEnrollment(tx *gorm.DB, memberId string) (bool, error) {
	args := s.Called(tx, memberId)
	return args.Bool(0), args.Error(1)
}

func (s *MockStore) CloseEnrollment(tx *gorm.DB, enrollmentId string) error {
	args := s.Called(tx, enrollmentId)
	return args.Error(0)
}

func (s *MockStore) ReactivateEnrollment(tx *gorm.DB, enrollmentId string) error {
	args := s.Called(tx, enrollmentId)
	return args.Error(0)
}

func (s *MockStore) SetInscriptionPaid(tx *gorm.DB, enrollmentId string) error {
	args := s.Called(tx, enrollmentId)
	return args.Error(0)
}

func (s *MockStore) GetSetting(tx *gorm.DB, key string) (store.Setting, bool, error) {
	args := s.Called(tx, key)
	return args.Get(0).(store.Setting), args.Bool(1), args.Error(2)
}

func (s *MockStore) UpsertSetting(tx *gorm.DB, setting store.Setting) error {
	args := s.Called(tx, setting)
	return args.Error(0)
}

func (s *MockStore) GetGlobalFees(tx *gorm.DB) (adultFee, minorFee float64) {
	args := s.Called(tx)
	return args.Get(0).(float64), args.Get(1).(float64)
}

func (s *MockStore) AddPayment(tx *gorm.DB, payment store.Payment) (store.Payment, error) {
	args := s.Called(tx, payment)
	return args.Get(0).(store.Payment), args.Error(1)
}

func (s *MockStore) GetPayment(tx *gorm.DB, paymentId string) (store.Payment, error) {
	args := s.Called(tx, paymentId)
	return args.Get(0).(store.Payment), args.Error(1)
}

func (s *MockStore) ListPayments(tx *gorm.DB, memberId string, limit int) ([]store.Payment, error) {
	args := s.Called(tx, memberId, limit)
	return args.Get(0).([]store.Payment), args.Error(1)
}

func (s *MockStore) ListPaymentsForPeriod(tx *gorm.DB, memberId string, year, month int) ([]store.Payment, error) {
	args := s.Called(tx, memberId, year, month)
	return args.Get(0).([]store.Payment), args.Error(1)
}

func (s *MockStore) CurrentPaymentForPeriod(tx *gorm.DB, memberId string, year, month int) (store.Payment, error) {
	args := s.Called(tx, memberId, year, month)
	return args.Get(0).(store.Payment), args.Error(1)
}

func (s *MockStore) CompletedPaymentExists(tx *gorm.DB, memberId string, year, month int) (bool, error) {
	args := s.Called(tx, memberId, year, month)
	return args.Bool(0), args.Error(1)
}

func (s *MockStore) LastCompletedPayment(tx *gorm.DB, memberId string) (store.Payment, error) {
	args := s.Called(tx, memberId)
	return args.Get(0).(store.Payment), args.Error(1)
}

func (s *MockStore) UpdatePaymentStatus(tx *gorm.DB, paymentId string, status string) error {
	args := s.Called(tx, paymentId, status)
	return args.Error(0)
}
