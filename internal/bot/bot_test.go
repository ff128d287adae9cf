package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReplies struct {
	shutdowns atomic.Int32
}

func (f *fakeReplies) Pending() int { return 0 }

func (f *fakeReplies) Shutdown() error {
	f.shutdowns.Add(1)
	return nil
}

type fakeMetrics struct {
	err error
}

func (f fakeMetrics) Run(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

func newTestBot(t *testing.T, metrics MetricsServer) (*Bot, *fakeReplies) {
	t.Helper()

	cron, err := NewScheduler(nil, nil, nil)
	require.NoError(t, err)

	replies := &fakeReplies{}
	return NewBot(nil, replies, cron, metrics), replies
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	b, replies := newTestBot(t, fakeMetrics{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop")
	}
	assert.Equal(t, int32(1), replies.shutdowns.Load())
}

func TestBot_ComponentFailureStopsEverything(t *testing.T) {
	t.Parallel()

	listenErr := errors.New("address in use")
	b, replies := newTestBot(t, fakeMetrics{err: listenErr})

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, listenErr)
	assert.Equal(t, int32(1), replies.shutdowns.Load())
}

func TestBot_WithoutMetrics(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, b.Run(ctx))
}
