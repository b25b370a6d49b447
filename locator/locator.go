// Package locator translates an edit observed on a live, rendered DOM
// element back into a textual patch against the source file that produced
// the element. It is the deterministic fast path tried before any
// generative fallback.
//
// The engine is pure text-in, text-out: no I/O, no shared state, no AST.
// It re-locates the element's opening tag inside raw source using stable
// attribute heuristics, applies a minimal scope-bounded substitution for
// the three supported change kinds (text content, inline style injection,
// attribute replacement), and declines whenever the match is ambiguous.
// A decline is the designed non-answer, not an error: callers escalate to
// a slower generator when the fast path refuses to guess.
package locator

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the type of observed DOM edit.
type Kind string

const (
	KindText  Kind = "text"  // text node content changed
	KindStyle Kind = "style" // inline style properties changed
	KindAttr  Kind = "attr"  // attribute value swapped (e.g. img src)
)

// Change is a single observed edit to apply to source text. Exactly the
// fields for its Kind are set; the rest stay zero.
type Change struct {
	Kind Kind `json:"kind"`

	// Text change.
	OldText string `json:"old_text,omitempty"`
	NewText string `json:"new_text,omitempty"`

	// Style change: CSS property → value.
	CSS map[string]string `json:"css,omitempty"`

	// Attribute change.
	Attr  string `json:"attr,omitempty"`
	Value string `json:"value,omitempty"`
}

// ErrInvalidChange is returned by Apply for caller-contract violations:
// unknown kind, missing required fields, or a style/attr change without a
// tag name. Expected ambiguity never produces an error — it declines.
var ErrInvalidChange = errors.New("locator: invalid change request")

// unreliableBelow is the threshold under which a reported source line is
// treated as untrustworthy. Instrumentation layers emit 0 when they have
// no hint, and the first few lines of a module are imports, not markup.
const unreliableBelow = 5

// ReliableLine reports whether a reported source line can be used to
// scope a search directly.
func ReliableLine(n int) bool { return n >= unreliableBelow }

// Apply runs the fast path for one change request against content.
// reportedLine is the 1-based source line hint from the instrumentation
// layer; 0 or any value below the reliability threshold makes the engine
// derive its own target line from stable attributes.
//
// Returns (patched, true, nil) on success and ("", false, nil) when the
// engine declines. An error is returned only for contract violations.
func Apply(content string, desc Descriptor, ch Change, reportedLine int) (string, bool, error) {
	switch ch.Kind {
	case KindText:
		if ch.OldText == "" {
			return "", false, fmt.Errorf("%w: text change without old_text", ErrInvalidChange)
		}
		out, ok := applyText(content, desc, ch.OldText, ch.NewText, reportedLine)
		return out, ok, nil

	case KindStyle:
		if desc.TagName == "" {
			return "", false, fmt.Errorf("%w: style change without tag name", ErrInvalidChange)
		}
		if len(ch.CSS) == 0 {
			return "", false, fmt.Errorf("%w: style change without properties", ErrInvalidChange)
		}
		out, ok := PatchStyle(content, targetLine(content, desc, reportedLine), desc, ch.CSS)
		return out, ok, nil

	case KindAttr:
		if desc.TagName == "" {
			return "", false, fmt.Errorf("%w: attr change without tag name", ErrInvalidChange)
		}
		if ch.Attr == "" {
			return "", false, fmt.Errorf("%w: attr change without attribute name", ErrInvalidChange)
		}
		out, ok := PatchAttr(content, targetLine(content, desc, reportedLine), desc, ch.Attr, ch.Value)
		return out, ok, nil

	default:
		return "", false, fmt.Errorf("%w: unknown kind %q", ErrInvalidChange, ch.Kind)
	}
}

// applyText is the retry policy around PatchText: trust a reliable
// reported line, otherwise derive one from stable attributes, and as a
// last resort let PatchText fall through to its unique-occurrence global
// pass with no scope at all.
func applyText(content string, desc Descriptor, oldText, newText string, reportedLine int) (string, bool) {
	if ReliableLine(reportedLine) {
		if out, ok := PatchText(content, oldText, newText, reportedLine); ok {
			return out, true
		}
	}
	if eff := EffectiveLine(strings.Split(content, "\n"), desc); eff > 1 {
		if out, ok := PatchText(content, oldText, newText, eff); ok {
			return out, true
		}
	}
	return PatchText(content, oldText, newText, 0)
}

// targetLine picks the anchor line for style/attr location: the reported
// line when trustworthy, a derived one otherwise.
func targetLine(content string, desc Descriptor, reportedLine int) int {
	if ReliableLine(reportedLine) {
		return reportedLine
	}
	return EffectiveLine(strings.Split(content, "\n"), desc)
}
