// Package history keeps analysis results in a local SQLite database so practice sessions can
// be compared over time.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver registration

	"github.com/farcloser/tactus"
)

var ErrNotFound = errors.New("record not found")

// Entry is one stored analysis.
type Entry struct {
	ID        string
	File      string
	Profile   string
	CreatedAt time.Time
	Result    tactus.Result
}

// Store is a SQLite backed history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path
	if !strings.Contains(dsn, "_busy_timeout") {
		dsn += "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if err = createTables(db); err != nil {
		db.Close()

		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	const schema = `
    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY,
        file TEXT NOT NULL,
        profile TEXT NOT NULL DEFAULT 'standard',
        created_at INTEGER NOT NULL,
        tempo_bpm REAL NOT NULL,
        timing_variance_ms REAL NOT NULL,
        consistency_score REAL NOT NULL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores result and returns its new entry.
func (s *Store) Save(ctx context.Context, file, profile string, result *tactus.Result) (*Entry, error) {
	record, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		File:      file,
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
		Result:    *result,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, file, profile, created_at, tempo_bpm, timing_variance_ms, consistency_score, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.File, entry.Profile, entry.CreatedAt.UnixNano(),
		result.TempoBPM, result.Timing.TimingVarianceMs, result.Trends.ConsistencyScore, string(record),
	)
	if err != nil {
		return nil, fmt.Errorf("storing analysis: %w", err)
	}

	return entry, nil
}

// List returns up to limit entries, most recent first. limit <= 0 returns everything.
// A non-empty file restricts the list to that file.
func (s *Store) List(ctx context.Context, file string, limit int) ([]Entry, error) {
	query := `SELECT id, file, profile, created_at, record FROM analyses`

	var args []any

	if file != "" {
		query += ` WHERE file = ?`

		args = append(args, file)
	}

	query += ` ORDER BY created_at DESC, rowid DESC`

	if limit > 0 {
		query += ` LIMIT ?`

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		entry, err := scan(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}

	return entries, nil
}

// Get returns a single entry by id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file, profile, created_at, record FROM analyses WHERE id = ?`, id)

	entry, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return entry, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Entry, error) {
	var (
		entry   Entry
		created int64
		record  string
	)

	if err := row.Scan(&entry.ID, &entry.File, &entry.Profile, &created, &record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("reading analysis: %w", err)
	}

	entry.CreatedAt = time.Unix(0, created).UTC()

	if err := json.Unmarshal([]byte(record), &entry.Result); err != nil {
		return nil, fmt.Errorf("decoding analysis %s: %w", entry.ID, err)
	}

	return &entry, nil
}
