package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no live record exists for the user.
var ErrNotFound = errors.New("state: not found")

// Backend persists one record per user. A ttl of zero keeps the record until deleted.
type Backend interface {
	Load(ctx context.Context, userID int64) ([]byte, error)
	Save(ctx context.Context, userID int64, record []byte, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}

// Sweeper is implemented by backends that need expired records removed explicitly.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}
