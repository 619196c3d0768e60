package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/calc/internal/history"
)

// List returns all entries newest first.
// Ordering: ORDER BY created_at DESC, seq DESC.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) List(ctx context.Context) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expression, created_at
		FROM history_entries
		ORDER BY created_at DESC, seq DESC
	`)
	if err != nil {
		return nil, history.NewStorageError("list", err)
	}
	defer rows.Close()

	entries := []history.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, history.NewStorageError("list", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("list", fmt.Errorf("iterate entries: %w", err))
	}

	return entries, nil
}

// Get retrieves a single entry by id.
// Returns history.ErrNotFound if no such entry exists.
func (s *Store) Get(ctx context.Context, id string) (history.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, expression, created_at
		FROM history_entries
		WHERE id = ?
	`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return history.Entry{}, history.ErrNotFound
	}
	if err != nil {
		return history.Entry{}, history.NewStorageError("get", err)
	}
	return e, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history_entries`).Scan(&n); err != nil {
		return 0, history.NewStorageError("count", err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (history.Entry, error) {
	var (
		e       history.Entry
		created int64
	)
	if err := row.Scan(&e.ID, &e.Expression, &created); err != nil {
		return history.Entry{}, err
	}
	e.Timestamp = time.Unix(0, created).UTC()
	return e, nil
}
