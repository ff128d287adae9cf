package persona

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/edgard/shamstagram/internal/logger"
	"github.com/edgard/shamstagram/internal/random"
)

// snapshot is one immutable generation of the registry contents.
type snapshot struct {
	version  uint64
	source   string
	order    []string
	personas map[string]*Persona
	keywords map[string][]string
}

func newSnapshot(version uint64, source string, cat *Catalog) *snapshot {
	s := &snapshot{
		version:  version,
		source:   source,
		order:    make([]string, 0, len(cat.Personas)),
		personas: make(map[string]*Persona, len(cat.Personas)),
		keywords: cat.Keywords,
	}
	for i := range cat.Personas {
		p := cat.Personas[i]
		s.order = append(s.order, p.Name)
		s.personas[p.Name] = &p
	}
	return s
}

// Registry holds the loaded personas. Readers always see a complete
// snapshot; Reload swaps the whole snapshot atomically, so callers holding
// a *Persona from an older generation keep a valid value.
type Registry struct {
	path    string
	log     *slog.Logger
	current atomic.Pointer[snapshot]
	version atomic.Uint64
}

func (r *Registry) install(source string, cat *Catalog) {
	r.current.Store(newSnapshot(r.version.Add(1), source, cat))
}

// NewRegistry loads the catalog at path. A missing or malformed source is
// logged and replaced by DefaultCatalog; the registry is never empty.
func NewRegistry(path string, log *slog.Logger) *Registry {
	if log == nil {
		log = logger.Discard()
	}
	r := &Registry{path: path, log: log.With("component", "persona_registry")}

	cat, err := LoadCatalog(path)
	if err != nil {
		r.log.Warn("Persona source unusable, falling back to built-in personas", "path", path, "error", err)
		r.install("builtin", DefaultCatalog())
		return r
	}

	r.install(path, cat)
	r.log.Info("Personas loaded", "path", path, "count", len(cat.Personas), "keyword_categories", len(cat.Keywords))
	return r
}

// NewRegistryFromCatalog builds a registry around an already decoded
// catalog. Reload is not available for such registries.
func NewRegistryFromCatalog(cat *Catalog, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = logger.Discard()
	}
	if cat == nil {
		return nil, &ConfigurationError{Source: "inline", Reason: "nil catalog"}
	}
	if err := cat.validate("inline"); err != nil {
		return nil, err
	}
	if len(cat.Keywords) == 0 {
		cat.Keywords = DefaultKeywords()
	}

	r := &Registry{log: log.With("component", "persona_registry")}
	r.install("inline", cat)
	return r, nil
}

// Reload reads the source again and swaps it in. On failure the current
// personas stay in place and the error is returned.
func (r *Registry) Reload() error {
	cat, err := LoadCatalog(r.path)
	if err != nil {
		r.log.Warn("Persona reload failed, keeping current personas", "path", r.path, "error", err)
		return err
	}

	r.install(r.path, cat)
	r.log.Info("Personas reloaded", "path", r.path, "count", len(cat.Personas))
	return nil
}

// Source names where the current personas came from ("builtin" for the
// fallback set).
func (r *Registry) Source() string {
	return r.current.Load().source
}

// Len returns the number of personas.
func (r *Registry) Len() int {
	return len(r.current.Load().order)
}

// Names returns persona names in catalog order.
func (r *Registry) Names() []string {
	s := r.current.Load()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Get returns the persona with the given name.
func (r *Registry) Get(name string) (*Persona, error) {
	p, ok := r.current.Load().personas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Keywords returns the keyword table of the current snapshot. The returned
// map is shared and must not be modified.
func (r *Registry) Keywords() map[string][]string {
	return r.current.Load().keywords
}

// KeywordTable returns the keyword table together with the version of the
// snapshot it belongs to. The version changes on every successful reload.
func (r *Registry) KeywordTable() (map[string][]string, uint64) {
	s := r.current.Load()
	return s.keywords, s.version
}

// Sample draws min(n, Len()) distinct personas uniformly at random using a
// partial Fisher-Yates shuffle over a copy of the current order.
func (r *Registry) Sample(n int, src random.Source) []*Persona {
	s := r.current.Load()
	if n <= 0 {
		return nil
	}
	if n > len(s.order) {
		n = len(s.order)
	}

	names := make([]string, len(s.order))
	copy(names, s.order)

	picked := make([]*Persona, 0, n)
	for i := 0; i < n; i++ {
		j := i + src.IntN(len(names)-i)
		names[i], names[j] = names[j], names[i]
		picked = append(picked, s.personas[names[i]])
	}
	return picked
}
