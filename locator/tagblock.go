package locator

import (
	"regexp"
	"strings"
)

// maxTagBlockLines caps how many physical lines one opening tag may span.
// The cap guarantees termination on malformed input and bounds the cost
// of scanning any single candidate.
const maxTagBlockLines = 12

// readTagBlock reads the complete opening tag starting at lines[i],
// extending across wrapped attribute lines until the tag closes with ">"
// or "/>" or the line cap is hit. Returns the index of the last consumed
// line and the joined block text.
func readTagBlock(lines []string, i int) (end int, text string) {
	end = i
	text = lines[i]
	for !strings.Contains(text, "/>") && !strings.Contains(text, ">") &&
		end-i+1 < maxTagBlockLines && end+1 < len(lines) {
		end++
		text += "\n" + lines[end]
	}
	return end, text
}

var spaceRuns = regexp.MustCompile(`\s+`)

// collapseSpace normalises all whitespace runs to single spaces, so a
// formatter rewrapping an attribute value across lines does not defeat
// substring matching.
func collapseSpace(s string) string {
	return spaceRuns.ReplaceAllString(s, " ")
}

// Prefix length bounds for tolerant attribute matching. A third of the
// value, at least minMatchPrefix characters, is enough to disambiguate
// long values (SVG path data) without demanding byte-identical survival
// through minifiers and formatters.
const (
	minMatchPrefix = 12
	maxMatchPrefix = 64
)

// matchAttribute reports whether the attribute name/value pair is present
// in a tag block's raw text. Checks run from strict to lenient:
//
//  1. "name=" must appear at all — the syntactic prerequisite.
//  2. The literal value appears.
//  3. A bounded prefix of the value appears — tolerates truncation and
//     quoting differences in very long values.
//  4. The whitespace-collapsed prefix appears in the whitespace-collapsed
//     block — tolerates source formatters rewrapping values across lines.
func matchAttribute(tagText, name, value string) bool {
	if !strings.Contains(tagText, name+"=") {
		return false
	}
	if strings.Contains(tagText, value) {
		return true
	}

	n := len(value) / 3
	if n < minMatchPrefix {
		n = minMatchPrefix
	}
	if n > maxMatchPrefix {
		n = maxMatchPrefix
	}
	if n > len(value) {
		n = len(value)
	}
	prefix := value[:n]
	if strings.Contains(tagText, prefix) {
		return true
	}

	return strings.Contains(collapseSpace(tagText), collapseSpace(prefix))
}
