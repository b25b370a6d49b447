// Package journal provides the SQLite persistence layer for applied
// patches: what changed, the content hashes on both sides, and the full
// pre-patch text that undo restores.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/domedit/dbopen"
)

// ErrNotFound is returned when no patch row matches the given ID.
var ErrNotFound = errors.New("journal: patch not found")

// Patch is one journal row.
type Patch struct {
	ID         string
	File       string
	Kind       string
	Source     string
	BeforeHash string
	AfterHash  string
	BeforeText string
	CreatedAt  string
	RevertedAt string // empty while the patch is live
}

// Store is the journal database handle.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path, applies pragmas
// and the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an already-open database (tests use dbopen.OpenMemory).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert records an applied patch.
func (s *Store) Insert(ctx context.Context, p Patch) error {
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO patches (id, file, kind, source, before_hash, after_hash, before_text)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.File, p.Kind, p.Source, p.BeforeHash, p.AfterHash, p.BeforeText)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// Get returns one patch by ID.
func (s *Store) Get(ctx context.Context, id string) (*Patch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file, kind, source, before_hash, after_hash, before_text,
		       created_at, COALESCE(reverted_at, '')
		FROM patches WHERE id = ?`, id)

	var p Patch
	err := row.Scan(&p.ID, &p.File, &p.Kind, &p.Source, &p.BeforeHash,
		&p.AfterHash, &p.BeforeText, &p.CreatedAt, &p.RevertedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: get: %w", err)
	}
	return &p, nil
}

// List returns the most recent patches, newest first. When file is
// non-empty the result is limited to that file.
func (s *Store) List(ctx context.Context, file string, limit int) ([]Patch, error) {
	query := `
		SELECT id, file, kind, source, before_hash, after_hash,
		       created_at, COALESCE(reverted_at, '')
		FROM patches`
	args := []any{}
	if file != "" {
		query += ` WHERE file = ?`
		args = append(args, file)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var out []Patch
	for rows.Next() {
		var p Patch
		if err := rows.Scan(&p.ID, &p.File, &p.Kind, &p.Source, &p.BeforeHash,
			&p.AfterHash, &p.CreatedAt, &p.RevertedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkReverted stamps a patch as undone. Returns ErrNotFound when the ID
// does not exist or the patch was already reverted.
func (s *Store) MarkReverted(ctx context.Context, id string) error {
	res, err := dbopen.Exec(ctx, s.db, `
		UPDATE patches
		SET reverted_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
		WHERE id = ? AND reverted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("journal: mark reverted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("journal: mark reverted: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
