// Package render turns a persona and an extracted context bag into the
// final text of a bot comment.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/edgard/shamstagram/internal/extract"
	"github.com/edgard/shamstagram/internal/logger"
	"github.com/edgard/shamstagram/internal/persona"
	"github.com/edgard/shamstagram/internal/random"
)

const (
	// DefaultSignalChance is the probability of using a matching signal
	// template set instead of the default templates.
	DefaultSignalChance = 0.5

	// GenericFiller replaces any placeholder nothing else can resolve.
	GenericFiller = "absolutely amazing"

	// GenericPraise is used for personas without templates.
	GenericPraise = "That's amazing!"

	fallbackPreviewLen = 40
)

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// DefaultFillers returns the fixed filler table consulted after the bag and
// the persona's own fillers.
func DefaultFillers() map[string][]string {
	return map[string][]string{
		"achievement_modifier": {"even better", "twice as fast", "blindfolded"},
		"competitive_action":   {"that kind of thing", "the same thing"},
		"precise_percentage":   {"87.3", "99.9", "142.8"},
		"extreme_praise":       {"truly incredible", "legendary"},
		"celebration_reason":   {"greatness", "this achievement"},
		"initial_doubt":        {"it was no big deal", "it was nothing"},
		"intensifier":          {"seriously", "absolutely"},
		"number":               {"100", "1000"},
		"superlative":          {"the greatest", "the best ever"},
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSignalChance overrides DefaultSignalChance.
func WithSignalChance(p float64) Option {
	return func(r *Renderer) { r.signalChance = p }
}

// Renderer produces bot comment text. It is safe for concurrent use when the
// random source is.
type Renderer struct {
	src          random.Source
	defaults     map[string][]string
	signalChance float64
}

// New creates a Renderer. A nil src uses random.Global.
func New(src random.Source, opts ...Option) *Renderer {
	if src == nil {
		src = random.Global()
	}
	r := &Renderer{
		src:          src,
		defaults:     DefaultFillers(),
		signalChance: DefaultSignalChance,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds "<name> <emoji>: <content>" for p. Every placeholder in the
// chosen template is resolved; none survive into the result.
func (r *Renderer) Render(p *persona.Persona, bag extract.Bag, fallbackText string) string {
	templates := r.selectTemplates(p, bag)
	tmpl, ok := random.Pick(r.src, templates)
	if !ok {
		return fmt.Sprintf("%s: %s %s", p.Name, GenericPraise, p.DisplayEmoji())
	}

	content := tmpl
	for placeholder.MatchString(content) {
		content = placeholder.ReplaceAllStringFunc(content, func(token string) string {
			name := strings.TrimSpace(token[1 : len(token)-1])
			return stripBraces(r.resolve(name, p, bag, fallbackText))
		})
	}

	return fmt.Sprintf("%s %s: %s", p.Name, p.DisplayEmoji(), content)
}

func (r *Renderer) selectTemplates(p *persona.Persona, bag extract.Bag) []string {
	var matching [][]string
	for _, signal := range bag.Signals() {
		if set := p.SignalTemplates[signal]; len(set) > 0 {
			matching = append(matching, set)
		}
	}
	if len(matching) > 0 && r.src.Float64() < r.signalChance {
		set, _ := random.Pick(r.src, matching)
		return set
	}
	return p.Templates
}

func (r *Renderer) resolve(name string, p *persona.Persona, bag extract.Bag, fallbackText string) string {
	if name == "fallback" || name == "text" {
		if text := strings.TrimSpace(fallbackText); text != "" {
			return logger.Preview(text, fallbackPreviewLen)
		}
	}
	if values, ok := bag.Lookup(name); ok {
		if v, ok := random.Pick(r.src, values); ok {
			return v
		}
	}
	if v, ok := random.Pick(r.src, p.Fillers[name]); ok {
		return v
	}
	if v, ok := random.Pick(r.src, r.defaults[name]); ok {
		return v
	}
	return GenericFiller
}

func stripBraces(s string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(s)
}
