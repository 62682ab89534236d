// Package history records every bundle that was produced, newest first.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no entry matches an id
var ErrNotFound = errors.New("history: entry not found")

// ErrAmbiguous is returned when an id prefix matches more than one entry
var ErrAmbiguous = errors.New("history: id prefix matches more than one entry")

// Entry is one recorded bundle
type Entry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Source       string    `json:"source"`
	Language     string    `json:"language"`
	FilesCount   int       `json:"files_count"`
	AllowedCount int       `json:"allowed_count"`
	TokensCount  int       `json:"tokens_count"`
	Size         int64     `json:"size"`
	Format       string    `json:"format"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// DefaultPath returns the history database location under the user config dir
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("history: locate config dir: %w", err)
	}
	return filepath.Join(dir, "repoprompt", "history.db"), nil
}

// NewStore opens (creating if needed) the database at dbPath.
// ":memory:" gives a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath, now: time.Now}, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location
func (s *Store) Path() string {
	return s.dbPath
}

// Add records e, assigning its ID and CreatedAt when they are unset
func (s *Store) Add(ctx context.Context, e *Entry) error {
	if e == nil {
		return errors.New("history: nil entry")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.Language == "" {
		e.Language = LanguageUnknown
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO projects
		(id, name, source, language, files_count, allowed_count, tokens_count, size_bytes, format, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Source, e.Language, e.FilesCount, e.AllowedCount,
		e.TokensCount, e.Size, e.Format, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, name, source, language, files_count, allowed_count, tokens_count, size_bytes, format, created_at FROM projects`

// List returns up to limit entries, newest first; limit <= 0 means all
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := selectColumns + ` ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Get returns the entry whose id equals or uniquely starts with id
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	full, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, full)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Delete removes the entry whose id equals or uniquely starts with id
func (s *Store) Delete(ctx context.Context, id string) (*Entry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, e.ID); err != nil {
		return nil, fmt.Errorf("delete history entry: %w", err)
	}
	return e, nil
}

// Clear removes every entry and returns how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) resolve(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrNotFound
	}
	prefix := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM projects WHERE id LIKE ? ESCAPE '\' LIMIT 2`, prefix)
	if err != nil {
		return "", fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", fmt.Errorf("scan history id: %w", err)
		}
		ids = append(ids, v)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate history ids: %w", err)
	}

	switch {
	case len(ids) == 0:
		return "", ErrNotFound
	case len(ids) > 1:
		for _, v := range ids {
			if v == id {
				return v, nil
			}
		}
		return "", ErrAmbiguous
	}
	return ids[0], nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	e := &Entry{}
	err := row.Scan(&e.ID, &e.Name, &e.Source, &e.Language, &e.FilesCount, &e.AllowedCount,
		&e.TokensCount, &e.Size, &e.Format, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history row: %w", err)
	}
	return e, nil
}
