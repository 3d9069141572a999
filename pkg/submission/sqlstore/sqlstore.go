// Package sqlstore persists form submissions in SQLite or PostgreSQL. The
// driver is picked from the DSN: postgres:// and postgresql:// URLs (or
// key=value strings with a host) use lib/pq, anything else is a SQLite file.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submission"
)

// Driver names accepted by database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connection pool settings applied to PostgreSQL.
const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 5 * time.Minute
	defaultDirPermissions  = 0o755
)

// ErrNotFound is returned by Get for unknown submission ids.
var ErrNotFound = errors.New("sqlstore: submission not found")

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

// Opts holds the store configuration.
type Opts struct {
	DSN    string
	Driver string
	Logger *slog.Logger
}

// Option configures Opts.
type Option func(*Opts)

// WithDSN sets the data source name.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithDriver forces a driver instead of detecting it from the DSN.
func WithDriver(driver string) Option {
	return func(o *Opts) { o.Driver = driver }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opts) { o.Logger = logger }
}

// DetectDriver guesses the driver for dsn.
func DetectDriver(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// Store is a submission.Submitter backed by a SQL database.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var _ submission.Submitter = (*Store)(nil)

// Open connects to the database, creating the SQLite directory when needed,
// and applies the migrations.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("sqlstore: database DSN not set")
	}
	driver := cfg.Driver
	if driver == "" {
		driver = DetectDriver(cfg.DSN)
	}
	logger.Debug("opening submission store", "driver", driver)

	var migrations string
	switch driver {
	case DriverSQLite:
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, err
		}
		migrations = sqliteMigrations
	case DriverPostgres:
		migrations = postgresMigrations
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverPostgres {
		db.SetMaxOpenConns(DefaultMaxOpenConns)
		db.SetMaxIdleConns(DefaultMaxIdleConns)
		db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, migrations); err != nil {
		db.Close()
		logger.Error("submission store migrations failed", "driver", driver, "error", err)
		return nil, fmt.Errorf("sqlstore: run migrations: %w", err)
	}
	logger.Debug("submission store ready", "driver", driver)
	return &Store{db: db, driver: driver, logger: logger}, nil
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermissions); err != nil {
		return fmt.Errorf("sqlstore: create database directory %s: %w", dir, err)
	}
	return nil
}

// Driver reports the database/sql driver in use.
func (s *Store) Driver() string {
	return s.driver
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Submit stores sub. It satisfies submission.Submitter.
func (s *Store) Submit(ctx context.Context, sub submission.Submission) error {
	return s.Save(ctx, sub)
}

// Save inserts a submission. Submissions are immutable; saving an existing id
// fails.
func (s *Store) Save(ctx context.Context, sub submission.Submission) error {
	if sub.ID == "" {
		return errors.New("sqlstore: submission id is empty")
	}
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("sqlstore: encode answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO submissions (id, form_id, answers, submitted_at) VALUES (?, ?, ?, ?)`),
		sub.ID, sub.FormID, string(answers), sub.SubmittedAt.UTC())
	if err != nil {
		s.logger.Error("save submission failed", "submission", sub.ID, "form", sub.FormID, "error", err)
		return fmt.Errorf("sqlstore: insert submission %s: %w", sub.ID, err)
	}
	s.logger.Debug("submission saved", "submission", sub.ID, "form", sub.FormID)
	return nil
}

// Get loads one submission by id.
func (s *Store) Get(ctx context.Context, id string) (submission.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, form_id, answers, submitted_at FROM submissions WHERE id = ?`), id)
	sub, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return submission.Submission{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sub, err
}

// List returns submissions for formID (all forms when empty), newest first.
// A limit <= 0 returns every row.
func (s *Store) List(ctx context.Context, formID string, limit int) ([]submission.Submission, error) {
	query := `SELECT id, form_id, answers, submitted_at FROM submissions`
	var args []any
	if formID != "" {
		query += ` WHERE form_id = ?`
		args = append(args, formID)
	}
	query += ` ORDER BY submitted_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: query submissions: %w", err)
	}
	defer rows.Close()

	var out []submission.Submission
	for rows.Next() {
		sub, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterate submissions: %w", err)
	}
	return out, nil
}

// Count returns the number of stored submissions for formID (all forms when
// empty).
func (s *Store) Count(ctx context.Context, formID string) (int, error) {
	query := `SELECT COUNT(*) FROM submissions`
	var args []any
	if formID != "" {
		query += ` WHERE form_id = ?`
		args = append(args, formID)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlstore: count submissions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (submission.Submission, error) {
	var (
		sub     submission.Submission
		answers string
	)
	if err := row.Scan(&sub.ID, &sub.FormID, &answers, &sub.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sub, err
		}
		return sub, fmt.Errorf("sqlstore: scan submission: %w", err)
	}
	sub.Answers = model.Answers{}
	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		return sub, fmt.Errorf("sqlstore: decode answers for %s: %w", sub.ID, err)
	}
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	return sub, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
