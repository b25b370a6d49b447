package editsvc

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/domedit/locator"
)

// strict strips every HTML element from replacement text. Text arriving
// from a live DOM is attacker-reachable (anything that can run in the page
// can edit the page), and it is about to be written into source files.
var strict = bluemonday.StrictPolicy()

var cssProp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// sanitizeChange returns a copy of ch with replacement payloads cleaned:
// markup stripped from text, control characters and quote-breaking values
// rejected. The original observed text (OldText) is left untouched — it
// must keep matching what is actually in the source.
func sanitizeChange(ch locator.Change) (locator.Change, error) {
	switch ch.Kind {
	case locator.KindText:
		ch.NewText = cleanText(ch.NewText)

	case locator.KindStyle:
		cleaned := make(map[string]string, len(ch.CSS))
		for prop, val := range ch.CSS {
			if !cssProp.MatchString(prop) {
				return ch, fmt.Errorf("%w: css property %q", ErrInvalidInput, prop)
			}
			if strings.ContainsAny(val, ";{}\n") {
				return ch, fmt.Errorf("%w: css value for %q", ErrInvalidInput, prop)
			}
			cleaned[prop] = cleanText(val)
		}
		ch.CSS = cleaned

	case locator.KindAttr:
		if strings.ContainsAny(ch.Value, "\"'<>\n") {
			return ch, fmt.Errorf("%w: attribute value", ErrInvalidInput)
		}
		ch.Value = cleanText(ch.Value)
	}
	return ch, nil
}

// cleanText strips markup and unescapes the entities bluemonday re-encodes,
// so plain text like "A & B" round-trips unchanged.
func cleanText(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}
