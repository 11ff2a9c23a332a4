package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m3rciful/menfes/core/telegram/state"
)

// Store maps user ids to conversation states. Get returns Absent for unknown users.
type Store interface {
	Get(ctx context.Context, userID int64) (State, error)
	Set(ctx context.Context, userID int64, s State) error
	Clear(ctx context.Context, userID int64) error
}

// BackendStore encodes states onto a byte backend. Every Set refreshes the idle TTL.
type BackendStore struct {
	backend state.Backend
	ttl     time.Duration
}

// NewStore wraps backend; ttl of zero disables expiry.
func NewStore(backend state.Backend, ttl time.Duration) *BackendStore {
	return &BackendStore{backend: backend, ttl: ttl}
}

func (s *BackendStore) Get(ctx context.Context, userID int64) (State, error) {
	data, err := s.backend.Load(ctx, userID)
	if errors.Is(err, state.ErrNotFound) {
		return Absent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	st, err := DecodeState(data)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Set stores st. Absent deletes the entry.
func (s *BackendStore) Set(ctx context.Context, userID int64, st State) error {
	if _, ok := st.(Absent); ok {
		return s.Clear(ctx, userID)
	}
	data, err := EncodeState(st)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, userID, data, s.ttl); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *BackendStore) Clear(ctx context.Context, userID int64) error {
	if err := s.backend.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}
