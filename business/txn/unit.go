package txn

import (
	"context"
	"sync"
	"time"
)

// Committer persists the current state of the store.
type Committer interface {
	Commit(ctx context.Context) error
}

// Clock returns the current time. Services take one so tests can move time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// Unit serializes every mutation of the marketplace behind one process-wide
// lock and persists the store after each mutation that changed something.
//
// Methods suffixed with Tx on the services expect the caller to already be
// inside Do; calling Do again from there deadlocks.
type Unit struct {
	mu        sync.Locker
	committer Committer
}

func NewUnit(mu sync.Locker, committer Committer) *Unit {
	return &Unit{mu: mu, committer: committer}
}

// Do runs fn under the write lock. fn reports whether it mutated state; the
// store is committed whenever it did, even if fn also returned an error, so
// partially applied work is never left unsaved. A commit failure is returned
// when fn itself succeeded.
func (u *Unit) Do(ctx context.Context, fn func() (bool, error)) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	changed, err := fn()
	if !changed {
		return err
	}

	cerr := u.committer.Commit(ctx)
	if err != nil {
		return err
	}

	return cerr
}

type nopCommitter struct{}

func (nopCommitter) Commit(context.Context) error { return nil }

// NewLocalUnit builds a unit that never persists, for tests and tools.
func NewLocalUnit() *Unit {
	return NewUnit(&sync.Mutex{}, nopCommitter{})
}
