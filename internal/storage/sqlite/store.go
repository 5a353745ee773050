// Package sqlite stores named whiteboard documents in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"whiteboard/document"
	"whiteboard/internal/storage"
	"whiteboard/internal/storage/sqlite/migrations"
)

// Info describes a stored document.
type Info struct {
	Name      string
	Shapes    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a SQLite document store.
type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Store = (*Store)(nil)

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var up []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			up = append(up, entry.Name())
		}
	}
	sort.Strings(up)

	for _, name := range up {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UnixMilli()); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Save stores or replaces the document name.
func (s *Store) Save(ctx context.Context, name string, m document.Model) error {
	if name == "" {
		return errors.New("saving document: empty name")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}
	shapes := 0
	for _, p := range m.Pages {
		shapes += len(p.Shapes)
	}
	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, model, shapes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			model = excluded.model,
			shapes = excluded.shapes,
			updated_at = excluded.updated_at
	`, name, string(data), shapes, now, now)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Load returns the document name, or storage.ErrNotFound.
func (s *Store) Load(ctx context.Context, name string) (document.Model, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT model FROM documents WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Model{}, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}
	if err != nil {
		return document.Model{}, fmt.Errorf("loading document: %w", err)
	}
	var m document.Model
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return document.Model{}, fmt.Errorf("unmarshalling document %s: %w", name, err)
	}
	return m, nil
}

// List returns the stored documents, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, shapes, created_at, updated_at
		FROM documents
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var created, updated int64
		if err := rows.Scan(&info.Name, &info.Shapes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		info.CreatedAt = time.UnixMilli(created)
		info.UpdatedAt = time.UnixMilli(updated)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes the document name, or returns storage.ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}
	return nil
}
