package sqlstore

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store bundles the repositories that share one connection pool.
type Store struct {
	db     *sqlx.DB
	closed atomic.Bool

	Teams   *TeamRepository
	Matches *MatchRepository
	Stats   *TeamStatsRepository
}

func New(db *sqlx.DB) *Store {
	return &Store{
		db:      db,
		Teams:   NewTeamRepository(db),
		Matches: NewMatchRepository(db),
		Stats:   NewTeamStatsRepository(db),
	}
}

// Open connects with query tracing enabled. SQLite is limited to a single
// connection so writers never hit SQLITE_BUSY.
func Open(driver, dsn string, opts ...otelsql.Option) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverPostgres:
		opts = append([]otelsql.Option{otelsql.WithDBSystem("postgresql")}, opts...)
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
		opts = append([]otelsql.Option{otelsql.WithDBSystem("sqlite")}, opts...)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := otelsqlx.Open(driver, dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return New(db), nil
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Driver() string {
	return s.db.DriverName()
}

// Close releases the pool. Calling it more than once is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// sqliteDSN turns a bare path into a file URI with foreign keys and a busy
// timeout enabled, leaving explicit pragmas alone.
func sqliteDSN(dsn string) string {
	dsn = strings.TrimSpace(strings.TrimPrefix(dsn, "sqlite://"))
	if dsn == "" {
		dsn = "match_predictor.db"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
