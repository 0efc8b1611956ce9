// Package script cleans and validates generated announcer copy before
// it reaches the audit or the voice renderer.
package script

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
)

// Sanitize strips model artifacts from a script: markdown markup,
// bracketed stage directions, emoji, smart punctuation, and stray
// whitespace. Running it on already-clean text returns the text
// unchanged, so stored scripts can be re-sanitized safely.
func Sanitize(text string) string {
	text = norm.NFKC.String(text)
	text = quoteReplacer.Replace(text)
	text = stripStageDirections(text)
	text = stripMarkup(text)
	text = stripNonSpeech(text)
	return collapseWhitespace(text)
}

// stripStageDirections removes [bracketed] and *starred* performance
// cues like [laughs] or *clears throat*.
func stripStageDirections(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	depth := 0
	for _, r := range text {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	text = b.String()

	// A starred span opening a line is a performance cue and goes away
	// whole; stars elsewhere are emphasis and only the markers drop.
	var out strings.Builder
	out.Grow(len(text))
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			if end := strings.IndexByte(trimmed[1:], '*'); end >= 0 {
				line = trimmed[end+2:]
			}
		}
		out.WriteString(strings.ReplaceAll(line, "*", ""))
		out.WriteByte('\n')
	}
	return out.String()
}

// stripMarkup drops leading markdown heading and quote markers plus
// inline backticks.
func stripMarkup(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		for strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ">") {
			trimmed = strings.TrimLeft(trimmed[1:], " \t")
		}
		if strings.HasPrefix(trimmed, "- ") {
			trimmed = trimmed[2:]
		}
		out = append(out, strings.ReplaceAll(trimmed, "`", ""))
	}
	return strings.Join(out, "\n")
}

// stripNonSpeech removes emoji and other symbols a voice cannot speak.
func stripNonSpeech(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case strings.ContainsRune(`.,!?;:'"-()&%$/`, r):
			return r
		}
		return -1
	}, text)
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
