package store

import (
	"strconv"
	"time"

	"github.com/jinzhu/gorm"
)

const (
	SETTING_MEMBER_FEE       = "MemberFee"
	SETTING_MINOR_MEMBER_FEE = "MinorMemberFee"
)

type Setting struct {
	Key         string `gorm:"primary_key:true"`
	Value       string
	Description string
	UpdatedAt   time.Time
}

func (Setting) TableName() string {
	return "settings"
}

func (s *Store) GetSetting(tx *gorm.DB, key string) (Setting, bool, error) {
	db := s.dbOrTx(tx)

	setting := Setting{}
	res := db.Where("key = ?", key).First(&setting)
	if res.RecordNotFound() {
		return Setting{}, false, nil
	}
	if err := res.Error; err != nil {
		return Setting{}, false, err
	}
	return setting, true, nil
}

func (s *Store) UpsertSetting(tx *gorm.DB, setting Setting) error {
	db := s.dbOrTx(tx)

	setting.UpdatedAt = time.Now().UTC()
	_, found, err := s.GetSetting(tx, setting.Key)
	if err != nil {
		return err
	}
	if !found {
		return db.Create(&setting).Error
	}
	return db.Model(Setting{}).Where("key = ?", setting.Key).
		Updates(map[string]interface{}{"value": setting.Value, "description": setting.Description, "updated_at": setting.UpdatedAt}).Error
}

// GetGlobalFees reads the membership fee settings. A missing or unparsable
// setting comes back as zero, never an error: billing reads must always
// produce a number.
func (s *Store) GetGlobalFees(tx *gorm.DB) (adultFee, minorFee float64) {
	if setting, found, err := s.GetSetting(tx, SETTING_MEMBER_FEE); err == nil && found {
		if v, err := strconv.ParseFloat(setting.Value, 64); err == nil {
			adultFee = v
		}
	}
	if setting, found, err := s.GetSetting(tx, SETTING_MINOR_MEMBER_FEE); err == nil && found {
		if v, err := strconv.ParseFloat(setting.Value, 64); err == nil {
			minorFee = v
		}
	}
	return adultFee, minorFee
}
