package store

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrTeamNotFound = errors.New("team not found")
)

type Team struct {
	TeamId    string `gorm:"primary_key:true"`
	SportId   string
	Name      string
	CreatedAt time.Time
}

func (Team) TableName() string {
	return "teams"
}

func (s *Store) AddTeam(tx *gorm.DB, team Team) (Team, error) {
	db := s.dbOrTx(tx)

	if _, err := s.GetSport(tx, team.SportId); err != nil {
		return Team{}, err
	}

	team.TeamId = s.StringGenerator.GenerateUuid()
	team.CreatedAt = time.Now().UTC()
	if err := db.Create(&team).Error; err != nil {
		return Team{}, err
	}
	return team, nil
}

func (s *Store) GetTeam(tx *gorm.DB, teamId string) (Team, error) {
	db := s.dbOrTx(tx)

	team := Team{}
	res := db.Where("team_id = ?", teamId).First(&team)
	if res.RecordNotFound() {
		return Team{}, ErrTeamNotFound
	}
	if err := res.Error; err != nil {
		return Team{}, err
	}
	return team, nil
}
