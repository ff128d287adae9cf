package transform

import (
	"context"
	"strconv"
	"strings"

	"github.com/edgard/shamstagram/internal/random"
)

// Provider names.
const (
	ProviderTemplate = "template"
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
)

var (
	transformTemplates = []string{
		"Today I {original}. Turns out it started a revolution in the {industry} world and I am now shortlisted for a Nobel prize. Harvard offered me an honorary doctorate but I was too busy to accept.",
		"I just {original}. Spontaneous applause broke out in {number} countries at once and the UN is preparing a special award.",
		"I was in the middle of it ({original}) when NASA called: the {concept} I came up with will be the core of the Mars mission. I politely declined.",
	}
	industries = []string{"IT", "space", "medical", "finance", "art"}
	concepts   = []string{"algorithm", "theory", "invention", "idea", "technology"}
)

// Template exaggerates text with fixed templates. It never fails.
type Template struct {
	src random.Source
}

// NewTemplate creates a template transformer. A nil src uses random.Global.
func NewTemplate(src random.Source) *Template {
	if src == nil {
		src = random.Global()
	}
	return &Template{src: src}
}

// Name implements Transformer.
func (t *Template) Name() string {
	return ProviderTemplate
}

// Transform fills a random template with the original text, an industry, a
// number between 100 and 195 and a concept.
func (t *Template) Transform(_ context.Context, text string) (string, error) {
	tmpl, _ := random.Pick(t.src, transformTemplates)
	industry, _ := random.Pick(t.src, industries)
	concept, _ := random.Pick(t.src, concepts)

	r := strings.NewReplacer(
		"{original}", strings.TrimSpace(text),
		"{industry}", industry,
		"{number}", strconv.Itoa(100+t.src.IntN(96)),
		"{concept}", concept,
	)
	return r.Replace(tmpl), nil
}
