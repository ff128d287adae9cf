package render_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/shamstagram/internal/extract"
	"github.com/edgard/shamstagram/internal/persona"
	"github.com/edgard/shamstagram/internal/random"
	"github.com/edgard/shamstagram/internal/render"
)

var unresolved = regexp.MustCompile(`\{[^{}]+\}`)

// fixedSource always returns the same draws.
type fixedSource struct {
	n int
	f float64
}

func (s fixedSource) IntN(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}

func (s fixedSource) Float64() float64 { return s.f }

func TestRender_NoPlaceholderSurvives(t *testing.T) {
	t.Parallel()

	personas := append(persona.DefaultCatalog().Personas,
		persona.Persona{Name: "Tricky", Templates: []string{
			"{unknown} and {another unknown}",
			"{{number}} nested",
			"{ } blank and {fallback}",
			"{x}{y}{z}",
		}},
		persona.Persona{Name: "SelfRef", Templates: []string{"{loop}"}, Fillers: map[string][]string{
			"loop": {"{loop}", "{{loop}}", "}{"},
		}},
	)

	e := extract.New(persona.DefaultKeywords())
	texts := []string{"", "I passed my exam with 100 points", "회사 프로젝트 출시 성공!", "{number} {object}"}
	r := render.New(random.NewSeeded(11, 13))

	for _, p := range personas {
		for _, text := range texts {
			bag := e.Extract(text)
			for range 50 {
				out := r.Render(&p, bag, text)
				assert.False(t, unresolved.MatchString(out), "unresolved placeholder in %q", out)
				assert.True(t, strings.HasPrefix(out, p.Name), "missing persona name in %q", out)
				assert.Contains(t, out, p.DisplayEmoji())
			}
		}
	}
}

func TestRender_Format(t *testing.T) {
	t.Parallel()

	p := &persona.Persona{Name: "Bot", Emoji: "🎉", Templates: []string{"Got {number} points"}}
	bag := extract.New(nil).Extract("I scored 42 and 7")

	out := render.New(fixedSource{}).Render(p, bag, "")
	assert.Equal(t, "Bot 🎉: Got 42 points", out)
}

func TestRender_NoTemplates(t *testing.T) {
	t.Parallel()

	p := &persona.Persona{Name: "Silent"}
	out := render.New(nil).Render(p, extract.Bag{}, "")
	assert.Equal(t, "Silent: "+render.GenericPraise+" "+persona.DefaultEmoji, out)
}

func TestRender_SignalTemplates(t *testing.T) {
	t.Parallel()

	p := &persona.Persona{
		Name:      "Counter",
		Emoji:     "🔢",
		Templates: []string{"plain"},
		SignalTemplates: map[string][]string{
			extract.SignalNumbers: {"numeric {number}"},
		},
	}
	withNumber := extract.New(nil).Extract("ran 10km")
	noNumber := extract.New(nil).Extract("ran far")

	tests := []struct {
		name string
		src  fixedSource
		bag  extract.Bag
		want string
	}{
		{"signal chosen", fixedSource{f: 0.1}, withNumber, "Counter 🔢: numeric 10"},
		{"coin says default", fixedSource{f: 0.9}, withNumber, "Counter 🔢: plain"},
		{"no signal in bag", fixedSource{f: 0.1}, noNumber, "Counter 🔢: plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, render.New(tt.src).Render(p, tt.bag, ""))
		})
	}
}

func TestRender_ResolutionOrder(t *testing.T) {
	t.Parallel()

	p := &persona.Persona{
		Name:      "Order",
		Emoji:     "1",
		Templates: []string{"{number}|{extreme_praise}|{intensifier}|{mystery}|{text}"},
		Fillers: map[string][]string{
			"number":         {"persona-number"},
			"extreme_praise": {"persona-praise"},
		},
	}
	bag := extract.New(nil).Extract("score 99")

	out := render.New(fixedSource{}).Render(p, bag, "score 99")
	assert.Equal(t, "Order 1: 99|persona-praise|"+render.DefaultFillers()["intensifier"][0]+"|"+render.GenericFiller+"|score 99", out)
}

func TestRender_FallbackIsShortened(t *testing.T) {
	t.Parallel()

	p := &persona.Persona{Name: "Echo", Templates: []string{"you said: {fallback}"}}
	long := strings.Repeat("가", 100)

	out := render.New(nil).Render(p, extract.Bag{}, long)
	assert.Less(t, len([]rune(out)), 80)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestRender_Randomized(t *testing.T) {
	t.Parallel()

	p := &persona.Persona{Name: "Many", Templates: []string{"a", "b", "c", "d"}}
	r := render.New(random.NewSeeded(2, 3))

	seen := map[string]bool{}
	for range 100 {
		seen[r.Render(p, extract.Bag{}, "")] = true
	}
	assert.Greater(t, len(seen), 1)
}
