package locator

import (
	"regexp"
	"strings"
)

// scopeRadius is the line radius searched around a trusted source line
// before any wider search is considered.
const scopeRadius = 80

// textPattern is one shape the old text can take in source. The open and
// close delimiters are both captured explicitly; replacement re-emits
// them around the new text by submatch index, never by position in a
// replace callback (an under-captured pattern must not be able to leak a
// match offset into the output).
type textPattern struct {
	re *regexp.Regexp
}

// textPatterns builds the candidate patterns for oldText in fixed
// priority order: JSX text node first, then quoted string literals (the
// closing quote must be the same character that opened — RE2 has no
// backreferences, so each quote kind is its own pattern), then template
// literals. First pattern with a match wins.
func textPatterns(oldText string) []textPattern {
	q := regexp.QuoteMeta(oldText)
	return []textPattern{
		{re: regexp.MustCompile(`(>\s*)` + q + `(\s*<)`)},
		{re: regexp.MustCompile(`(")` + q + `(")`)},
		{re: regexp.MustCompile(`(')` + q + `(')`)},
		{re: regexp.MustCompile("(`)" + q + "(`)")},
	}
}

// replaceFirst substitutes newText between the captured delimiters of the
// first match of re in scope. If the closing capture is somehow absent
// the opening delimiter is re-emitted in its place.
func replaceFirst(scope string, re *regexp.Regexp, newText string) (string, bool) {
	m := re.FindStringSubmatchIndex(scope)
	if m == nil {
		return "", false
	}
	open := scope[m[2]:m[3]]
	close := open
	if len(m) >= 6 && m[4] >= 0 {
		close = scope[m[4]:m[5]]
	}
	return scope[:m[0]] + open + newText + close + scope[m[1]:], true
}

func tryTextPatterns(scope, oldText, newText string) (string, bool) {
	for _, p := range textPatterns(oldText) {
		if out, ok := replaceFirst(scope, p.re, newText); ok {
			return out, true
		}
	}
	return "", false
}

// PatchText performs a "change this text node" mutation against content.
// sourceLine, when positive, narrows the search to an 80-line radius; the
// patched scope is spliced back so nothing outside the window can change.
// Without a usable scope the whole document is tried only when oldText
// occurs exactly once — ambiguity is a decline, never a best guess.
func PatchText(content, oldText, newText string, sourceLine int) (string, bool) {
	lines := strings.Split(content, "\n")

	if sourceLine > 0 {
		lo := sourceLine - scopeRadius - 1
		if lo < 0 {
			lo = 0
		}
		if lo > len(lines) {
			lo = len(lines)
		}
		hi := sourceLine + scopeRadius
		if hi > len(lines) {
			hi = len(lines)
		}
		scope := strings.Join(lines[lo:hi], "\n")
		if patched, ok := tryTextPatterns(scope, oldText, newText); ok {
			out := make([]string, 0, len(lines))
			out = append(out, lines[:lo]...)
			out = append(out, strings.Split(patched, "\n")...)
			out = append(out, lines[hi:]...)
			return strings.Join(out, "\n"), true
		}
	}

	if strings.Count(content, oldText) == 1 {
		if patched, ok := tryTextPatterns(content, oldText, newText); ok {
			return patched, true
		}
	}

	return "", false
}
