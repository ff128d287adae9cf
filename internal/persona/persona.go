// Package persona holds the fixed set of bot personas and the keyword table
// used to extract context from text. Both come from one catalog source.
package persona

import (
	"errors"
	"fmt"
)

// DefaultEmoji is shown for personas that do not define one.
const DefaultEmoji = "🤖"

var (
	// ErrConfiguration marks a missing or malformed persona source.
	ErrConfiguration = errors.New("persona configuration error")
	// ErrNotFound is returned by Registry.Get for unknown names.
	ErrNotFound = errors.New("persona not found")
)

// ConfigurationError describes why a catalog source could not be used.
type ConfigurationError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persona source %q: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("persona source %q: %s", e.Source, e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Persona is a named bot identity with template-driven comment generation.
// Personas are immutable once loaded.
type Persona struct {
	Name        string `yaml:"name"`
	Emoji       string `yaml:"emoji"`
	Personality string `yaml:"personality"`

	// Templates is the default template list. Placeholders use {name}.
	Templates []string `yaml:"templates"`

	// SignalTemplates are alternate template sets keyed by a context
	// signal such as "numbers" or "achievements".
	SignalTemplates map[string][]string `yaml:"signal_templates"`

	// Fillers maps a placeholder name to candidate literal values.
	Fillers map[string][]string `yaml:"fillers"`
}

// DisplayEmoji returns the persona emoji or DefaultEmoji.
func (p *Persona) DisplayEmoji() string {
	if p.Emoji == "" {
		return DefaultEmoji
	}
	return p.Emoji
}

// Catalog is the decoded form of a persona source.
type Catalog struct {
	Personas []Persona          `yaml:"personas"`
	Keywords map[string][]string `yaml:"keywords"`
}

func (c *Catalog) validate(source string) error {
	if len(c.Personas) == 0 {
		return &ConfigurationError{Source: source, Reason: "no personas defined"}
	}

	seen := make(map[string]struct{}, len(c.Personas))
	for i, p := range c.Personas {
		if p.Name == "" {
			return &ConfigurationError{Source: source, Reason: fmt.Sprintf("persona #%d has no name", i+1)}
		}
		if _, dup := seen[p.Name]; dup {
			return &ConfigurationError{Source: source, Reason: fmt.Sprintf("duplicate persona name %q", p.Name)}
		}
		seen[p.Name] = struct{}{}
	}

	return nil
}
