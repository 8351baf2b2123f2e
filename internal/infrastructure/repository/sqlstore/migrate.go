package sqlstore

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	dbmigrations "github.com/riskibarqy/match-predictor/db"
)

// NewMigrator reads the embedded migrations of the pool's dialect. Closing
// the returned migrator also closes db.
func NewMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	dialect := db.DriverName()
	src, err := iofs.New(dbmigrations.Migrations, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("load %s migrations: %w", dialect, err)
	}
	return newMigrator(db, "iofs", src)
}

// NewFileMigrator reads migrations from dir/<dialect> on disk instead of the
// embedded copy.
func NewFileMigrator(db *sqlx.DB, dir string) (*migrate.Migrate, error) {
	dialect := db.DriverName()
	path := filepath.ToSlash(filepath.Join(dir, dialect))
	src, err := (&file.File{}).Open("file://" + path)
	if err != nil {
		return nil, fmt.Errorf("open migrations dir %s: %w", path, err)
	}
	return newMigrator(db, "file", src)
}

func newMigrator(db *sqlx.DB, sourceName string, src source.Driver) (*migrate.Migrate, error) {
	dialect := db.DriverName()

	var (
		driver database.Driver
		err    error
	)
	switch dialect {
	case DriverPostgres:
		driver, err = pgmigrate.WithInstance(db.DB, &pgmigrate.Config{})
	case DriverSQLite:
		driver, err = sqlitemigrate.WithInstance(db.DB, &sqlitemigrate.Config{})
	default:
		return nil, fmt.Errorf("unsupported db driver %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s migration driver: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance(sourceName, src, dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration. The migrator is not closed:
// closing it closes the shared pool.
func (s *Store) Migrate() error {
	m, err := NewMigrator(s.db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
