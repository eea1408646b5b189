package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/sprintboard/internal/model"
)

type scriptedFetcher struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

type reply struct {
	user *model.User
	err  error
}

func (f *scriptedFetcher) Me(context.Context) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	if r.user == nil {
		return nil, r.err
	}
	u := *r.user
	return &u, r.err
}

func TestPollReportsOnlyChanges(t *testing.T) {
	ana := &model.User{ID: 1, Name: "Ana"}
	renamed := &model.User{ID: 1, Name: "Ana María"}
	f := &scriptedFetcher{replies: []reply{{user: ana}, {user: ana}, {err: errors.New("offline")}, {user: renamed}}}
	p := NewPoller(f, time.Second, nil)
	ctx := context.Background()

	u, changed, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Ana", u.Name)

	_, changed, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = p.Poll(ctx)
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, "Ana", p.Current().Name)

	u, changed, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Ana María", u.Name)
}

func TestRunPublishesUntilCancelled(t *testing.T) {
	f := &scriptedFetcher{replies: []reply{
		{user: &model.User{ID: 1}},
		{err: errors.New("timeout")},
		{user: &model.User{ID: 2}},
	}}
	p := NewPoller(f, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	published := make(chan *model.User, 4)
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, func(u *model.User) { published <- u })
	}()

	first := <-published
	assert.Equal(t, int64(1), first.ID)
	second := <-published
	assert.Equal(t, int64(2), second.ID)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Len(t, published, 0)
}

func TestNewPollerDefaultsInterval(t *testing.T) {
	p := NewPoller(&scriptedFetcher{}, 0, nil)
	if p.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), DefaultInterval)
	}
}
