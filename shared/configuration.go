package shared

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const CONFIG_PREFIX = "CDP"

type AppConfig struct {
	ListenAddress string `split_words:"true" default:"0.0.0.0:8080"`

	PgUsername     string `split_words:"true" default:"postgres"`
	PgPassword     string `split_words:"true" default:"postgres"`
	PgContactPoint string `split_words:"true" default:"127.0.0.1"`
	PgContactPort  string `split_words:"true" default:"5432"`
	PgDbName       string `split_words:"true" default:"cdp"`

	SqlMigrationsSourceDir string `split_words:"true" default:"./sql"`
	StartupMigration       bool   `split_words:"true" default:"false"`

	EasypayBaseUrl   string `split_words:"true" default:"https://api.test.easypay.pt/2.0/single"`
	EasypayAccountId string `split_words:"true"`
	EasypayApiKey    string `split_words:"true"`
	EasypayTimeout   int    `split_words:"true" default:"10"` // seconds

	JwtSecret string `split_words:"true" default:"123456789"`
}

func InitAppConfiguration() (config *AppConfig, err error) {
	config = &AppConfig{}

	if err := envconfig.Process(CONFIG_PREFIX, config); err != nil {
		return nil, fmt.Errorf("failed to parse env vars: %v", err)
	}

	return
}
