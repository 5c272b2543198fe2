package migrations

import (
	"github.com/mattes/migrate"
	_ "github.com/mattes/migrate/database/postgres"
	_ "github.com/mattes/migrate/source/file"
	"github.com/pkg/errors"
)

type ApplyOptions struct {
	SourceURL   string
	DatabaseURL string
}

type ApplyResult struct {
	Err     error
	Changes bool
}

// Up applies every pending migration from the sql directory. A database
// already up to date is a success with Changes false.
func Up(options ApplyOptions) (res ApplyResult) {
	m, err := migrate.New(options.SourceURL, options.DatabaseURL)
	if err != nil {
		res.Err = errors.Wrap(err, "failed to initialize migrations")
		return
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			return
		}
		res.Err = errors.Wrap(err, "failed to apply migrations")
		return
	}

	res.Changes = true
	return
}
