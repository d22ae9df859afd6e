package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"asset-organizer/internal/database/migrations"
	"asset-organizer/internal/model"
	"asset-organizer/internal/organizer"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrRunNotFound is returned when updating a run that does not exist.
var ErrRunNotFound = errors.New("run not found")

// SQLiteDatabase implements organizer.HistoryStore using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMAs apply per connection, and every connection to ":memory:" is
	// a separate database. The CLI is single-threaded, so one is enough.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Run operations

func (s *SQLiteDatabase) CreateRun(run *model.Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, op_id, operation, source, dry_run, started_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.OpID, run.Operation, run.Source, run.DryRun, run.StartedAt.UTC(), run.Status,
	)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishRun(runID string, status string, finishedAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ? WHERE id = ?`,
		finishedAt.UTC(), status, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) AddRunEntry(entry *model.RunEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO run_entries (run_id, seq, package_id, title, decision, match_state, source_path, destination_path, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID, entry.Seq, entry.PackageID, entry.Title, entry.Decision,
		entry.MatchState, entry.SourcePath, entry.DestinationPath, entry.Error,
	)
	if err != nil {
		return fmt.Errorf("adding run entry: %w", err)
	}
	return nil
}

const runColumns = `id, op_id, operation, source, dry_run, started_at, finished_at, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.OpID, &run.Operation, &run.Source, &run.DryRun, &run.StartedAt, &finished, &run.Status); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func (s *SQLiteDatabase) ListRuns(limit int) ([]*model.Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var result []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return result, nil
}

func (s *SQLiteDatabase) FindRun(prefix string) (*model.Run, error) {
	if prefix == "" {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return nil, fmt.Errorf("finding run: %w", err)
	}
	defer rows.Close()

	var found []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding run: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, nil // Not found
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", prefix)
	}
}

func (s *SQLiteDatabase) ListRunEntries(runID string) ([]*model.RunEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seq, package_id, title, decision, match_state, source_path, destination_path, error
		 FROM run_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing run entries: %w", err)
	}
	defer rows.Close()

	var result []*model.RunEntry
	for rows.Next() {
		var e model.RunEntry
		if err := rows.Scan(&e.RunID, &e.Seq, &e.PackageID, &e.Title, &e.Decision, &e.MatchState, &e.SourcePath, &e.DestinationPath, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning run entry: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing run entries: %w", err)
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate applies any pending migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements organizer.HistoryStore
var _ organizer.HistoryStore = (*SQLiteDatabase)(nil)
