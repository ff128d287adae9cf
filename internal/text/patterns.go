// Package text cleans user input and provider output before it is stored.
package text

import (
	"regexp"
	"strings"
)

var (
	invisibleReplacer = strings.NewReplacer(
		"\u2060", "", "\u180E", "",
		"\u2028", "\n", "\u2029", "\n\n",
		"\u200B", " ", "\u200C", " ",
		"\u200D", "", "\uFEFF", "",
		"\u00AD", "", "\u205F", " ",
		"\u202A", "", "\u202B", "",
		"\u202C", "", "\u202D", "", "\u202E", "",
	)

	controlChars     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	multipleNewlines = regexp.MustCompile("\n{3,}")
)

// Block-level tags that become line breaks before the HTML is stripped.
var blockTags = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?li>|</?[uo]l>|</?blockquote>|<hr\s*/?>`)

// Lead-ins models like to put before the answer.
var preamble = regexp.MustCompile(`(?i)^(here(?:'s| is) (?:the |an |your )?(?:exaggerated|rewritten|transformed) (?:version|text|post)[^:\n]*:|exaggerated (?:version|text):)\s*`)

// Matching quote pairs that may wrap a whole answer.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"\u201C", "\u201D"},
	{"\u300C", "\u300D"},
}
