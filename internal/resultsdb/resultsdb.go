// Package resultsdb records benchmark runs in a SQLite database.
package resultsdb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite handle holding recorded benchmark runs.
type DB struct {
	*sql.DB
}

// Run is one benchmark invocation. Timings are in milliseconds.
type Run struct {
	ID            string
	ImageSize     int
	KernelSize    int
	Extrapolation string
	Op            string
	Method        string
	Repetitions   int
	MeanMs        float64
	StdDevMs      float64
	MinMs         float64
	MaxMs         float64
	CreatedAt     time.Time
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// Open opens (creating if needed) the database at path and brings its
// schema up to date.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// MigrateUp runs all pending migrations. Already being at the latest
// version is not an error.
func (db *DB) MigrateUp() error {
	m, err := db.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current schema version and dirty state.
// Returns 0, false, nil if no migrations have been applied yet.
func (db *DB) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := db.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (db *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// RecordRun inserts r, assigning an ID and creation time when they are
// unset. The stored run is returned.
func (db *DB) RecordRun(r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO bench_runs (
			run_id, image_size, kernel_size, extrapolation, op, method,
			repetitions, mean_ms, stddev_ms, min_ms, max_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ImageSize, r.KernelSize, r.Extrapolation, r.Op, r.Method,
		r.Repetitions, r.MeanMs, r.StdDevMs, r.MinMs, r.MaxMs, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to record run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs in insertion order, oldest first.
// A limit of zero or less returns every run.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT run_id, image_size, kernel_size, extrapolation, op, method,
		       repetitions, mean_ms, stddev_ms, min_ms, max_ms, created_at
		FROM (
			SELECT *, rowid AS seq FROM bench_runs ORDER BY seq DESC LIMIT ?
		)
		ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(
			&r.ID, &r.ImageSize, &r.KernelSize, &r.Extrapolation, &r.Op, &r.Method,
			&r.Repetitions, &r.MeanMs, &r.StdDevMs, &r.MinMs, &r.MaxMs, &created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// TSVHeader is the header row written by WriteTSV.
const TSVHeader = "kernel\tmode\tms"

// WriteTSV writes runs as a three-column table that barplot draws as a
// grouped chart of mean time per kernel size and boundary mode.
func WriteTSV(w io.Writer, runs []Run) error {
	if _, err := io.WriteString(w, TSVHeader+"\n"); err != nil {
		return err
	}
	for _, r := range runs {
		if _, err := io.WriteString(w, TSVRow(r)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// TSVRow formats one run as a WriteTSV data row.
func TSVRow(r Run) string {
	return strconv.Itoa(r.KernelSize) + "\t" + r.Extrapolation + "\t" +
		strconv.FormatFloat(r.MeanMs, 'f', 3, 64)
}
