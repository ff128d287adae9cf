package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/shamstagram/internal/config"
	"github.com/edgard/shamstagram/internal/database"
	"github.com/edgard/shamstagram/internal/logger"
)

type fakePersonas struct {
	names     []string
	reloadErr error
	reloads   int
}

func (f *fakePersonas) Names() []string { return f.names }
func (f *fakePersonas) Source() string  { return "test" }

func (f *fakePersonas) Reload() error {
	f.reloads++
	return f.reloadErr
}

type fixedPending int

func (p fixedPending) Pending() int { return int(p) }

func newDeps(t *testing.T) (TaskDeps, *fakePersonas) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	personas := &fakePersonas{names: []string{"HypeBot3000", "JealousAI"}}
	return TaskDeps{
		Logger:   logger.Discard(),
		Store:    database.NewStore(db, nil),
		Personas: personas,
		Replies:  fixedPending(2),
		Config:   &config.Config{Personas: config.PersonasConfig{Path: "personas.yaml"}},
	}, personas
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()
	deps, _ := newDeps(t)

	registered := RegisterAllTasks(deps)
	assert.Len(t, registered, 3)
	for _, name := range []string{SQLMaintenance, BotActivityReport, PersonaReload} {
		assert.Contains(t, registered, name)
	}
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()
	deps, _ := newDeps(t)

	require.NoError(t, newSQLMaintenanceTask(deps)(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, newSQLMaintenanceTask(deps)(ctx))
}

func TestBotActivityReportTask(t *testing.T) {
	t.Parallel()
	deps, _ := newDeps(t)
	ctx := context.Background()

	post := &database.Post{UserID: 1, OriginalText: "hi", AIText: "HI"}
	require.NoError(t, deps.Store.CreatePost(ctx, post))
	require.NoError(t, deps.Store.SaveComment(ctx, database.NewBotComment(post.ID, 0, "JealousAI", "hmph", time.Second)))

	assert.NoError(t, newBotActivityReportTask(deps)(ctx))
}

func TestPersonaReloadTask(t *testing.T) {
	t.Parallel()

	deps, personas := newDeps(t)
	task := newPersonaReloadTask(deps)

	require.NoError(t, task(context.Background()))
	assert.Equal(t, 1, personas.reloads)

	personas.reloadErr = errors.New("malformed")
	assert.Error(t, task(context.Background()))

	deps.Config = &config.Config{}
	require.NoError(t, newPersonaReloadTask(deps)(context.Background()))
	assert.Equal(t, 2, personas.reloads, "no reload without a configured file")
}
