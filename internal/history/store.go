// Package history keeps an optional log of preview and sync runs in a SQL
// database (PostgreSQL, MySQL or SQL Server).
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres

	"postman-sync/internal/config"
	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/reconcile"
	"postman-sync/internal/reporter"
)

// Supported drivers, named as registered with database/sql.
const (
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLServer = "sqlserver"
)

var drivers = []string{DriverPostgres, DriverMySQL, DriverSQLServer}

const table = "sync_runs"

// Entry is one recorded run.
type Entry struct {
	ID            string
	Command       string
	CollectionUID string
	Timestamp     time.Time
	New           int
	Updated       int
	Unchanged     int
	Report        reconcile.Report
}

// Store records runs in a database
type Store struct {
	db     *sql.DB
	driver string
	logger zerolog.Logger
}

// Enabled reports whether cfg names a database.
func Enabled(cfg config.HistoryConfig) bool {
	return cfg.Driver != ""
}

// DSN returns the connection string for cfg. An explicit DSN wins over the
// individual fields.
func DSN(cfg config.HistoryConfig) (string, error) {
	if cfg.DSN != "" {
		if !isDriver(cfg.Driver) {
			return "", unsupportedDriver(cfg.Driver)
		}
		return cfg.DSN, nil
	}

	switch cfg.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, portOr(cfg.Port, 5432), cfg.User, cfg.Password, cfg.Database), nil
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, portOr(cfg.Port, 3306), cfg.Database), nil
	case DriverSQLServer:
		return fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			cfg.Host, portOr(cfg.Port, 1433), cfg.User, cfg.Password, cfg.Database), nil
	default:
		return "", unsupportedDriver(cfg.Driver)
	}
}

// Open connects to the configured database and creates the run table when
// it does not exist yet.
func Open(ctx context.Context, cfg config.HistoryConfig, logger zerolog.Logger) (*Store, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, syncerrors.NewCollaboratorError("connect to history database", 0, "", err)
	}

	s := &Store{
		db:     db,
		driver: cfg.Driver,
		logger: logger.With().Str("component", "history").Str("driver", cfg.Driver).Logger(),
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the run table.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, CreateTableSQL(s.driver)); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}
	return nil
}

// Record stores a run. A run without an ID gets a fresh one, which is
// returned.
func (s *Store) Record(ctx context.Context, run reporter.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	report, err := json.Marshal(run.Report)
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, InsertSQL(s.driver),
		run.ID, run.Command, run.CollectionUID, run.Timestamp.UTC(),
		len(run.Report.New), len(run.Report.Updated), len(run.Report.Unchanged), string(report))
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug().Str("run_id", run.ID).Str("command", run.Command).Msg("run recorded")
	return run.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, RecentSQL(s.driver, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			report string
		)
		if err := rows.Scan(&e.ID, &e.Command, &e.CollectionUID, &e.Timestamp,
			&e.New, &e.Updated, &e.Unchanged, &report); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(report), &e.Report); err != nil {
			s.logger.Warn().Err(err).Str("run_id", e.ID).Msg("stored report is unreadable")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Placeholder returns the n-th (1-based) bind parameter of the driver.
func Placeholder(driver string, n int) string {
	switch driver {
	case DriverPostgres:
		return fmt.Sprintf("$%d", n)
	case DriverSQLServer:
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

// CreateTableSQL is the dialect's statement creating the run table.
func CreateTableSQL(driver string) string {
	switch driver {
	case DriverPostgres:
		return `CREATE TABLE IF NOT EXISTS sync_runs (
	id VARCHAR(36) PRIMARY KEY,
	command VARCHAR(32) NOT NULL,
	collection_uid VARCHAR(128) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	new_count INTEGER NOT NULL,
	updated_count INTEGER NOT NULL,
	unchanged_count INTEGER NOT NULL,
	report TEXT NOT NULL
)`
	case DriverSQLServer:
		return `IF OBJECT_ID('sync_runs', 'U') IS NULL
CREATE TABLE sync_runs (
	id VARCHAR(36) PRIMARY KEY,
	command VARCHAR(32) NOT NULL,
	collection_uid VARCHAR(128) NOT NULL,
	created_at DATETIME2 NOT NULL,
	new_count INT NOT NULL,
	updated_count INT NOT NULL,
	unchanged_count INT NOT NULL,
	report NVARCHAR(MAX) NOT NULL
)`
	default:
		return `CREATE TABLE IF NOT EXISTS sync_runs (
	id VARCHAR(36) PRIMARY KEY,
	command VARCHAR(32) NOT NULL,
	collection_uid VARCHAR(128) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	new_count INT NOT NULL,
	updated_count INT NOT NULL,
	unchanged_count INT NOT NULL,
	report LONGTEXT NOT NULL
)`
	}
}

var columns = []string{
	"id", "command", "collection_uid", "created_at",
	"new_count", "updated_count", "unchanged_count", "report",
}

// InsertSQL is the dialect's statement inserting one run.
func InsertSQL(driver string) string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = Placeholder(driver, i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(params, ", "))
}

// RecentSQL is the dialect's query for the newest limit runs.
func RecentSQL(driver string, limit int) string {
	cols := strings.Join(columns, ", ")
	if driver == DriverSQLServer {
		return fmt.Sprintf("SELECT TOP %d %s FROM %s ORDER BY created_at DESC", limit, cols, table)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC LIMIT %d", cols, table, limit)
}

func isDriver(d string) bool {
	for _, known := range drivers {
		if d == known {
			return true
		}
	}
	return false
}

func unsupportedDriver(d string) error {
	return syncerrors.NewUnsupportedOptionError("history driver", d, drivers...)
}

func portOr(port, fallback int) int {
	if port > 0 {
		return port
	}
	return fallback
}
