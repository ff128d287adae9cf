package reply_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/shamstagram/internal/reply"
)

func TestGocronDispatcher_RunsAndCancels(t *testing.T) {
	t.Parallel()

	d, err := reply.NewGocronDispatcher(nil)
	require.NoError(t, err)

	var ran atomic.Int32
	_, err = d.After(0, "immediate", func() { ran.Add(1) })
	require.NoError(t, err)
	_, err = d.After(100*time.Millisecond, "soon", func() { ran.Add(1) })
	require.NoError(t, err)

	later, err := d.After(time.Hour, "later", func() { ran.Add(100) })
	require.NoError(t, err)
	assert.True(t, d.Cancel(later))

	assert.Eventually(t, func() bool { return ran.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return d.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, d.Shutdown())
	assert.Equal(t, int32(2), ran.Load())
}

func TestGocronDispatcher_ReleasesFinishedJobs(t *testing.T) {
	t.Parallel()

	d, err := reply.NewGocronDispatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Shutdown() })

	const jobs = 100
	var ran atomic.Int32
	for i := range jobs {
		_, err := d.After(60*time.Millisecond, fmt.Sprintf("job-%d", i), func() { ran.Add(1) })
		require.NoError(t, err)
	}
	_, err = d.After(0, "panics", func() { panic("boom") })
	require.NoError(t, err)

	require.Eventually(t, func() bool { return ran.Load() == jobs }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return d.Len() == 0 }, 5*time.Second, 10*time.Millisecond,
		"finished one-time jobs must not stay registered")
}

func TestScheduler_WithGocron(t *testing.T) {
	t.Parallel()

	d, err := reply.NewGocronDispatcher(nil)
	require.NoError(t, err)

	gateway := newFakeGateway()
	sched := reply.NewScheduler(nil, mustDefaultRegistry(t), gateway, d)

	sched.ScheduleReplies(reply.Target{PostID: 42}, "I passed my exam with 100 points",
		reply.Burst{Count: 3, MinDelay: 60 * time.Millisecond, MaxDelay: 120 * time.Millisecond, Stagger: 20 * time.Millisecond})
	sched.ScheduleReplies(reply.Target{PostID: 42}, "never",
		reply.Burst{Count: 3, MinDelay: time.Hour, MaxDelay: 2 * time.Hour})

	assert.Eventually(t, func() bool { return len(gateway.savedComments()) == 3 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, sched.Pending())
	assert.Eventually(t, func() bool { return d.Len() == 3 }, 5*time.Second, 10*time.Millisecond,
		"only the jobs still waiting stay registered")

	assert.Equal(t, 3, sched.CancelAll())
	assert.Eventually(t, func() bool { return d.Len() == 0 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, sched.Shutdown())
	assert.Zero(t, sched.Pending())
	assert.Len(t, gateway.savedComments(), 3)
}
