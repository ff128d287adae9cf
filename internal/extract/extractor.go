// Package extract derives a small attribute bag from free text using
// digit-run scanning and keyword-category matching. It is heuristic
// substring matching, not language understanding.
package extract

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SignalNumbers is the signal name reported when the text carries digits.
const SignalNumbers = "numbers"

var digitRun = regexp.MustCompile(`[0-9]+`)

// singular maps single-value placeholder names to the category whose first
// match they expose.
var singular = map[string]string{
	"institution": "institutions",
	"achievement": "achievements",
	"emotion":     "emotions",
	"activity":    "activities",
	"action":      "activities",
	"industry":    "industries",
	"object":      "objects",
}

// Bag is the per-call result of Extract. The zero value is the empty bag.
type Bag struct {
	Numbers        []string
	MaxNumber      string
	Keywords       map[string][]string
	Length         int
	HasExclamation bool
	HasQuestion    bool
}

// Lookup returns the candidate values for a placeholder name. It reports
// false when the bag has nothing for the name.
func (b Bag) Lookup(name string) ([]string, bool) {
	switch name {
	case "numbers":
		return b.Numbers, len(b.Numbers) > 0
	case "number":
		if b.MaxNumber == "" {
			return nil, false
		}
		return []string{b.MaxNumber}, true
	case "length":
		if b.Length == 0 {
			return nil, false
		}
		return []string{strconv.Itoa(b.Length)}, true
	}

	if hits := b.Keywords[name]; len(hits) > 0 {
		return hits, true
	}
	if category, ok := singular[name]; ok {
		if hits := b.Keywords[category]; len(hits) > 0 {
			return hits[:1], true
		}
	}
	return nil, false
}

// Signals lists the signals present in the bag: SignalNumbers first, then
// every matched category in sorted order.
func (b Bag) Signals() []string {
	var out []string
	if len(b.Numbers) > 0 {
		out = append(out, SignalNumbers)
	}
	categories := make([]string, 0, len(b.Keywords))
	for category, hits := range b.Keywords {
		if len(hits) > 0 {
			categories = append(categories, category)
		}
	}
	slices.Sort(categories)
	return append(out, categories...)
}

// Empty reports whether nothing at all was extracted.
func (b Bag) Empty() bool {
	return len(b.Numbers) == 0 && len(b.Keywords) == 0 && b.Length == 0 &&
		!b.HasExclamation && !b.HasQuestion
}

type matcher struct {
	keyword string
	latin   *regexp.Regexp
}

func (m matcher) match(text string) bool {
	if m.latin != nil {
		return m.latin.MatchString(text)
	}
	return strings.Contains(text, m.keyword)
}

type category struct {
	name     string
	matchers []matcher
}

// Extractor matches text against a fixed keyword table. It is immutable and
// safe for concurrent use.
type Extractor struct {
	categories []category
}

// New compiles the keyword table. Keywords containing Latin letters match
// on word boundaries, case-insensitively unless they are all-caps acronyms
// such as "IT", which must match exactly. Any other keyword matches as a
// verbatim substring.
func New(keywords map[string][]string) *Extractor {
	names := make([]string, 0, len(keywords))
	for name := range keywords {
		names = append(names, name)
	}
	slices.Sort(names)

	e := &Extractor{categories: make([]category, 0, len(names))}
	for _, name := range names {
		c := category{name: name}
		for _, kw := range keywords[name] {
			if strings.TrimSpace(kw) == "" {
				continue
			}
			m := matcher{keyword: kw}
			if hasLatin(kw) {
				flags := `(?i)`
				if isAcronym(kw) {
					flags = ""
				}
				m.latin = regexp.MustCompile(flags + `(^|[^\pL\pN])` + regexp.QuoteMeta(kw) + `($|[^\pL\pN])`)
			}
			c.matchers = append(c.matchers, m)
		}
		e.categories = append(e.categories, c)
	}
	return e
}

// Extract builds the attribute bag for text. It never fails.
func (e *Extractor) Extract(text string) Bag {
	var bag Bag
	if text == "" {
		return bag
	}

	bag.Length = utf8.RuneCountInString(text)
	bag.HasExclamation = strings.ContainsAny(text, "!！")
	bag.HasQuestion = strings.ContainsAny(text, "?？")

	bag.Numbers = digitRun.FindAllString(text, -1)
	for _, n := range bag.Numbers {
		bag.MaxNumber = maxDecimal(bag.MaxNumber, normalize(n))
	}

	for _, c := range e.categories {
		var hits []string
		for _, m := range c.matchers {
			if m.match(text) {
				hits = append(hits, m.keyword)
			}
		}
		if len(hits) > 0 {
			if bag.Keywords == nil {
				bag.Keywords = make(map[string][]string)
			}
			bag.Keywords[c.name] = hits
		}
	}

	return bag
}

func hasLatin(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}

// isAcronym reports whether s has at least two letters and none of them
// lower case.
func isAcronym(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 2
}

func normalize(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// maxDecimal compares two normalized digit strings by value.
func maxDecimal(a, b string) string {
	switch {
	case a == "":
		return b
	case len(a) != len(b):
		if len(a) > len(b) {
			return a
		}
		return b
	case a >= b:
		return a
	default:
		return b
	}
}
