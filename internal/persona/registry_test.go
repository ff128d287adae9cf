package persona_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/shamstagram/internal/persona"
	"github.com/edgard/shamstagram/internal/random"
)

func TestNewRegistry_FallsBackToBuiltin(t *testing.T) {
	t.Parallel()

	reg := persona.NewRegistry(filepath.Join(t.TempDir(), "missing.yaml"), nil)

	assert.Equal(t, "builtin", reg.Source())
	assert.Equal(t, len(persona.DefaultCatalog().Personas), reg.Len())
	assert.Equal(t, persona.DefaultKeywords(), reg.Keywords())
}

func TestRegistry_GetAndNames(t *testing.T) {
	t.Parallel()

	reg := persona.NewRegistry(writeFile(t, sampleCatalog), nil)
	assert.Equal(t, []string{"HypeBot3000", "Quiet"}, reg.Names())

	p, err := reg.Get("HypeBot3000")
	require.NoError(t, err)
	assert.Equal(t, "🤖", p.Emoji)

	_, err = reg.Get("Nobody")
	assert.ErrorIs(t, err, persona.ErrNotFound)
}

func TestRegistry_Sample(t *testing.T) {
	t.Parallel()

	reg, err := persona.NewRegistryFromCatalog(persona.DefaultCatalog(), nil)
	require.NoError(t, err)
	src := random.NewSeeded(42, 7)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero", 0, 0},
		{"negative", -3, 0},
		{"fewer than available", 2, 2},
		{"exactly available", reg.Len(), reg.Len()},
		{"more than available", reg.Len() + 5, reg.Len()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 20 {
				got := reg.Sample(tt.n, src)
				require.Len(t, got, tt.want)

				seen := map[string]bool{}
				for _, p := range got {
					assert.False(t, seen[p.Name], "duplicate persona %s", p.Name)
					seen[p.Name] = true
				}
			}
		})
	}
}

func TestRegistry_SampleCoversAll(t *testing.T) {
	t.Parallel()

	reg, err := persona.NewRegistryFromCatalog(persona.DefaultCatalog(), nil)
	require.NoError(t, err)
	src := random.NewSeeded(1, 1)

	seen := map[string]int{}
	for range 300 {
		for _, p := range reg.Sample(1, src) {
			seen[p.Name]++
		}
	}
	assert.Len(t, seen, reg.Len())
}

func TestRegistry_Reload(t *testing.T) {
	t.Parallel()

	path := writeFile(t, sampleCatalog)
	reg := persona.NewRegistry(path, nil)
	old, err := reg.Get("HypeBot3000")
	require.NoError(t, err)
	_, before := reg.KeywordTable()

	require.NoError(t, os.WriteFile(path, []byte("personas:\n  - name: Newcomer\n"), 0o600))
	require.NoError(t, reg.Reload())
	assert.Equal(t, []string{"Newcomer"}, reg.Names())
	assert.Equal(t, "HypeBot3000", old.Name, "personas from an older snapshot stay valid")
	keywords, after := reg.KeywordTable()
	assert.Greater(t, after, before)
	assert.Equal(t, persona.DefaultKeywords(), keywords)

	require.NoError(t, os.WriteFile(path, []byte("personas: [\n"), 0o600))
	err = reg.Reload()
	assert.ErrorIs(t, err, persona.ErrConfiguration)
	assert.Equal(t, []string{"Newcomer"}, reg.Names(), "failed reload keeps the current snapshot")
	_, unchanged := reg.KeywordTable()
	assert.Equal(t, after, unchanged)
}

func TestRegistry_ConcurrentSampleAndReload(t *testing.T) {
	t.Parallel()

	path := writeFile(t, sampleCatalog)
	reg := persona.NewRegistry(path, nil)
	src := random.NewSeeded(5, 5)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				for _, p := range reg.Sample(2, src) {
					assert.NotEmpty(t, p.Name)
				}
			}
		}()
	}
	for range 10 {
		assert.NoError(t, reg.Reload())
	}
	wg.Wait()
}

func TestNewRegistryFromCatalog_Invalid(t *testing.T) {
	t.Parallel()

	_, err := persona.NewRegistryFromCatalog(nil, nil)
	assert.ErrorIs(t, err, persona.ErrConfiguration)

	_, err = persona.NewRegistryFromCatalog(&persona.Catalog{}, nil)
	assert.ErrorIs(t, err, persona.ErrConfiguration)
}
