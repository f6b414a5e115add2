package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"marketplace/domain"
)

// Gateway persists whole snapshots of the store.
type Gateway interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
}

// Store keeps every entity in maps guarded by one RWMutex. Reads return
// copies, so callers never share mutable state with the store.
type Store struct {
	mu      sync.RWMutex
	data    domain.Snapshot
	gateway Gateway
}

func NewStore(gateway Gateway) *Store {
	return &Store{
		data:    domain.NewSnapshot(),
		gateway: gateway,
	}
}

// Restore replaces the whole content of the store with snap.
func (s *Store) Restore(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = cloneSnapshot(snap)
}

// Snapshot returns a deep copy of the current content.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSnapshot(s.data)
}

// Load restores the store from the gateway. A missing snapshot is reported
// as ErrSnapshotMissing; any other failure is a persistence error and leaves
// the store untouched.
func (s *Store) Load(ctx context.Context) error {
	if s.gateway == nil {
		return domain.ErrSnapshotMissing
	}

	snap, err := s.gateway.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotMissing) {
			return domain.ErrSnapshotMissing
		}
		return &domain.Error{Kind: domain.ErrPersistence, Msg: fmt.Sprintf("failed to load snapshot: %v", err)}
	}

	s.Restore(snap)
	return nil
}

// Commit saves the current content through the gateway. The in-memory state
// is kept when saving fails; the next successful commit persists it.
func (s *Store) Commit(ctx context.Context) error {
	if s.gateway == nil {
		return nil
	}

	if err := s.gateway.Save(ctx, s.Snapshot()); err != nil {
		return &domain.Error{Kind: domain.ErrPersistence, Msg: fmt.Sprintf("failed to save snapshot: %v", err)}
	}

	return nil
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data.Users) == 0
}

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return nil
}
