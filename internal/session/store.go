package session

import (
	"context"

	dErrors "bizdir/pkg/domain-errors"
)

// ErrNotFound keeps session-store 404s consistent across the redis and
// in-memory implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "session not found")

// Store is the engine's view of session persistence: read/write/delete with
// per-request visibility. The engine does not depend on the storage mechanism.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
