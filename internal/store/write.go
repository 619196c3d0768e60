package store

import (
	"context"
	"time"

	"github.com/roach88/calc/internal/history"
)

// Append inserts a new history entry and returns its generated id.
// The timestamp is stored as Unix nanoseconds.
func (s *Store) Append(ctx context.Context, expression string, ts time.Time) (string, error) {
	id := s.ids.Generate()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_entries (id, expression, created_at)
		VALUES (?, ?, ?)
	`, id, expression, ts.UnixNano())
	if err != nil {
		return "", history.NewStorageError("append", err)
	}

	return id, nil
}

// Delete removes the entry with the given id.
// Deleting an id that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history_entries WHERE id = ?`, id)
	if err != nil {
		return history.NewStorageError("delete", err)
	}
	return nil
}

// DeleteAll removes every entry inside a single transaction, so a
// concurrent List sees either all entries or none.
func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return history.NewStorageError("delete all", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
		return history.NewStorageError("delete all", err)
	}

	if err := tx.Commit(); err != nil {
		return history.NewStorageError("delete all", err)
	}
	return nil
}
