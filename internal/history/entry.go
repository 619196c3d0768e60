package history

import (
	"context"
	"strings"
	"time"
)

// Entry is one completed calculation.
type Entry struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Timestamp  time.Time `json:"timestamp"`
}

// Result returns the text after the last "=" of the expression, trimmed.
// Returns "" when the expression has no result part.
func (e Entry) Result() string {
	i := strings.LastIndex(e.Expression, "=")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(e.Expression[i+1:])
}

// Recorder is the append-only view of the log used by the engine.
type Recorder interface {
	Append(ctx context.Context, expression string, ts time.Time) (string, error)
}

// Store is the full history log consumed by the presentation layer.
type Store interface {
	Recorder

	// List returns all live entries ordered newest first. Never nil.
	List(ctx context.Context) ([]Entry, error)

	// Get returns a single entry or ErrNotFound.
	Get(ctx context.Context, id string) (Entry, error)

	// Delete removes one entry. Deleting a missing id returns nil.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every entry in one step.
	DeleteAll(ctx context.Context) error

	// Count returns the number of live entries.
	Count(ctx context.Context) (int, error)
}

// IDGenerator produces entry identifiers.
type IDGenerator interface {
	Generate() string
}
