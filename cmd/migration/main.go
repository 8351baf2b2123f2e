package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/match-predictor/internal/config"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
)

var logger = logging.Default()

func main() {
	action := flag.String("action", "", "up | down | version | force | goto")
	steps := flag.String("steps", "1", "migrations to roll back with -action down")
	version := flag.String("version", "", "target version for -action force and goto")
	flag.Usage = printUsage
	flag.Parse()

	if *action == "" && flag.NArg() > 0 {
		*action = flag.Arg(0)
	}
	if *action == "" {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		fatal("open database", err)
	}

	m, sourceName, err := newMigrator(store)
	if err != nil {
		_ = store.Close()
		fatal("create migrator", err)
	}
	defer closeMigrator(m)

	switch strings.ToLower(strings.TrimSpace(*action)) {
	case "up":
		handleMigrationErr(m.Up())
		logger.Info("migrations applied", "source", sourceName, "driver", cfg.DBDriver)
	case "down":
		n, parseErr := parseSteps(*steps)
		if parseErr != nil {
			fatal("parse steps", parseErr)
		}
		handleMigrationErr(m.Steps(-n))
		logger.Info("rolled back migrations", "steps", n)
	case "version":
		current, dirty, versionErr := m.Version()
		if errors.Is(versionErr, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return
		}
		if versionErr != nil {
			fatal("read version", versionErr)
		}
		fmt.Printf("version: %d\n", current)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		target, parseErr := parseVersion(*version)
		if parseErr != nil {
			fatal("parse version", parseErr)
		}
		if err := m.Force(target); err != nil {
			fatal("force version", err)
		}
		logger.Info("forced migration version", "version", target)
	case "goto", "migrate":
		target, parseErr := parseTarget(*version)
		if parseErr != nil {
			fatal("parse version", parseErr)
		}
		handleMigrationErr(m.Migrate(target))
		logger.Info("migrated to version", "version", target)
	default:
		printUsage()
		os.Exit(2)
	}
}

// newMigrator prefers an on-disk MIGRATIONS_DIR so migrations can be patched
// without a rebuild.
func newMigrator(store *sqlstore.Store) (*migrate.Migrate, string, error) {
	dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if dir == "" {
		m, err := sqlstore.NewMigrator(store.DB())
		return m, "embedded", err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve MIGRATIONS_DIR: %w", err)
	}
	m, err := sqlstore.NewFileMigrator(store.DB(), abs)
	return m, abs, err
}

func parseSteps(raw string) (int, error) {
	steps, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", raw, err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func handleMigrationErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return
	}
	fatal("run migration", err)
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	_ = logger.Sync()
	os.Exit(1)
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s -action <up|down|version|force|goto> [-steps n] [-version v]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s -action up\n", name)
	fmt.Fprintf(os.Stderr, "  %s -action down -steps 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s -action version\n", name)
	fmt.Fprintf(os.Stderr, "  %s -action force -version 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s -action goto -version 2\n", name)
}
