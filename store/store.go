package store

import (
	"github.com/jinzhu/gorm"
)

type Store struct {
	Db              *gorm.DB `inject:""`
	StringGenerator interface {
		GenerateUuid() string
		GenerateMembershipNumber() string
	} `inject:""`
}

// Tx opens a transaction usable as the tx argument of every store method.
func (s *Store) Tx() *gorm.DB {
	return s.Db.Begin()
}

func (s *Store) dbOrTx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.Db
}
