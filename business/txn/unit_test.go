//go:build !integration

package txn

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingCommitter struct {
	calls int
	err   error
}

func (c *countingCommitter) Commit(context.Context) error {
	c.calls++
	return c.err
}

func TestUnit_CommitsOnlyWhenChanged(t *testing.T) {
	c := &countingCommitter{}
	u := NewUnit(&sync.Mutex{}, c)

	assert.NoError(t, u.Do(context.Background(), func() (bool, error) { return false, nil }))
	assert.Equal(t, 0, c.calls)

	assert.NoError(t, u.Do(context.Background(), func() (bool, error) { return true, nil }))
	assert.Equal(t, 1, c.calls)
}

func TestUnit_CommitsPartialWorkAndKeepsOriginalError(t *testing.T) {
	c := &countingCommitter{err: errors.New("disk full")}
	u := NewUnit(&sync.Mutex{}, c)
	boom := errors.New("boom")

	err := u.Do(context.Background(), func() (bool, error) { return true, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.calls)
}

func TestUnit_SurfacesCommitError(t *testing.T) {
	c := &countingCommitter{err: errors.New("disk full")}
	u := NewUnit(&sync.Mutex{}, c)

	err := u.Do(context.Background(), func() (bool, error) { return true, nil })
	assert.EqualError(t, err, "disk full")
}
