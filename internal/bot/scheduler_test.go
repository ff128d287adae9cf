package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/shamstagram/internal/bot/tasks"
	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/logger"
)

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"every_second": func(context.Context) error {
			runs.Add(1)
			return nil
		},
		"disabled": func(context.Context) error {
			t.Error("disabled task must not run")
			return nil
		},
	}
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"every_second": {Enabled: true, Schedule: "* * * * * *"},
		"disabled":     {Enabled: false, Schedule: "* * * * * *"},
		"unknown":      {Enabled: true, Schedule: "* * * * * *"},
		"bad_schedule": {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap["bad_schedule"] = taskMap["every_second"]

	s, err := NewScheduler(logger.Discard(), cfg, taskMap)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "double start is rejected")

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestScheduler_NoTasks(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s, err := NewScheduler(nil, nil, map[string]tasks.ScheduledTaskFunc{
		"ok":   func(context.Context) error { return nil },
		"fail": func(context.Context) error { return boom },
	})
	require.NoError(t, err)

	assert.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.ErrorIs(t, s.RunNow(context.Background(), "fail"), boom)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}
