package text

import (
	"bytes"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	strict   = bluemonday.StrictPolicy()
	markdown = goldmark.New()
)

// Normalize cleans user-submitted text: HTML tags are dropped, line endings
// unified, control and invisible characters removed, runs of blanks
// collapsed per line and long gaps between paragraphs shortened.
// Ideographic spaces are kept.
func Normalize(input string) string {
	if input == "" {
		return ""
	}

	return normalize(stripHTML(clean(input)))
}

func clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = invisibleReplacer.Replace(s)
	return controlChars.ReplaceAllString(s, " ")
}

func normalize(input string) string {
	s := clean(input)

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = normalizeLine(lines[i])
	}

	s = strings.Join(lines, "\n")
	s = multipleNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// Sanitize prepares a model answer for publishing. Markdown is rendered and
// flattened to plain text, then the result is normalized and a leading
// "here is the exaggerated version:" preamble and quotes wrapping the whole
// answer are removed.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}

	s := normalize(plainText(clean(input)))
	s = strings.TrimSpace(preamble.ReplaceAllString(s, ""))

	return unquote(s)
}

func plainText(md string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return stripHTML(md)
	}

	return stripHTML(blockTags.ReplaceAllString(buf.String(), "\n"))
}

func stripHTML(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

func unquote(s string) string {
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			inner := s[len(q[0]) : len(s)-len(q[1])]
			if !strings.Contains(inner, q[0]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}

func normalizeLine(line string) string {
	var b strings.Builder

	var space bool

	for _, r := range line {
		switch {
		case r == '\u3000':
			b.WriteRune(r)

			space = false
		case unicode.IsSpace(r) || r == '\u00A0':
			if !space {
				b.WriteRune(' ')

				space = true
			}
		default:
			b.WriteRune(r)

			space = false
		}
	}

	return strings.TrimSpace(b.String())
}
