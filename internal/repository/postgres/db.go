package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/config"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/metrics"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB is a database handle that knows its placeholder dialect
type DB struct {
	*sql.DB
	Driver string
}

// Wrap pairs an open handle with its driver name
func Wrap(db *sql.DB, driver string) *DB {
	return &DB{DB: db, Driver: driver}
}

// New creates a new database connection
func New(cfg config.DatabaseConfig) (*DB, error) {
	var db *sql.DB
	var err error

	if cfg.Driver == "sqlite" {
		db, err = sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		// Enable WAL mode for better concurrency
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}

		db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)

	} else if cfg.Driver == "postgres" {
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
		)

		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return Wrap(db, cfg.Driver), nil
}

// Rebind rewrites ? placeholders to $n for postgres
func (d *DB) Rebind(query string) string {
	if d.Driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, op, table, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.ExecContext(ctx, d.Rebind(query), args...)
	metrics.RecordDBQuery(op, table, time.Since(start))
	return res, err
}

func (d *DB) query(ctx context.Context, op, table, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.QueryContext(ctx, d.Rebind(query), args...)
	metrics.RecordDBQuery(op, table, time.Since(start))
	return rows, err
}

func (d *DB) queryRow(ctx context.Context, op, table, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.QueryRowContext(ctx, d.Rebind(query), args...)
	metrics.RecordDBQuery(op, table, time.Since(start))
	return row
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
