package locator

import (
	"regexp"
	"sort"
	"strings"
)

// styleWindow is the line radius scanned around the target line for
// candidate opening tags.
const styleWindow = 40

// minScore is the uniqueness gate: a candidate qualifies only when the
// summed weights of its matched stable attributes reach this floor, and
// exactly one candidate may qualify. Several siblings sharing a tag name
// and one weak attribute must not receive someone else's style.
const minScore = 50

// candidate is one opening tag found near the target line, scored by the
// stable attributes matched inside its block.
type candidate struct {
	start int // 0-based first line of the block
	end   int // 0-based last line of the block
	text  string
	score int
}

// locateUnique scans ±styleWindow lines around targetLine for opening
// tags of the element's type, scores each block against the stable
// attributes, and returns the single qualifying candidate. Zero or more
// than one qualifier means the location is unsafe and the caller must
// decline.
func locateUnique(lines []string, targetLine int, desc Descriptor, attrs []StableAttr) (candidate, bool) {
	tag := strings.ToLower(desc.TagName)
	tagStart := regexp.MustCompile(`(?i)<` + regexp.QuoteMeta(tag) + `(?:[\s>/]|$)`)

	lo := targetLine - 1 - styleWindow
	if lo < 0 {
		lo = 0
	}
	hi := targetLine + styleWindow
	if hi > len(lines) {
		hi = len(lines)
	}

	var qualified []candidate
	for i := lo; i < hi; i++ {
		if !strings.Contains(lines[i], "<") || !tagStart.MatchString(lines[i]) {
			continue
		}
		end, block := readTagBlock(lines, i)
		score := 0
		for _, a := range attrs {
			if matchAttribute(block, a.Name, a.Value) {
				score += a.Weight
			}
		}
		if score == 0 {
			continue
		}
		if score >= minScore {
			qualified = append(qualified, candidate{start: i, end: end, text: block, score: score})
			if len(qualified) > 1 {
				return candidate{}, false
			}
		}
	}
	if len(qualified) != 1 {
		return candidate{}, false
	}
	return qualified[0], true
}

// spliceBlock replaces lines[start..end] with the rewritten block and
// rejoins the document.
func spliceBlock(lines []string, c candidate, newBlock string) string {
	out := make([]string, 0, len(lines))
	out = append(out, lines[:c.start]...)
	out = append(out, strings.Split(newBlock, "\n")...)
	out = append(out, lines[c.end+1:]...)
	return strings.Join(out, "\n")
}

// afterTagName finds the end of the tag-name token inside a block and
// returns the byte offset right after it, where an attribute can be
// inserted. The character following the name must be whitespace, ">" or
// "/" so that "<div" never matches "<divider".
func afterTagName(block, tag string) (int, bool) {
	re := regexp.MustCompile(`(?i)(<` + regexp.QuoteMeta(tag) + `)([\s>/])`)
	m := re.FindStringSubmatchIndex(block)
	if m == nil {
		return 0, false
	}
	return m[3], true
}

// PatchStyle injects an inline style object into the element's opening
// tag. The target line is trusted as an anchor only; the actual tag is
// re-located and uniqueness-gated before anything is written. Everything
// in the block except the inserted attribute is preserved byte-for-byte.
func PatchStyle(content string, line int, desc Descriptor, css map[string]string) (string, bool) {
	attrs := StableAttributes(desc)
	if len(attrs) == 0 || desc.TagName == "" {
		return "", false
	}

	lines := strings.Split(content, "\n")
	c, ok := locateUnique(lines, line, desc, attrs)
	if !ok {
		return "", false
	}

	at, ok := afterTagName(c.text, desc.TagName)
	if !ok {
		return "", false
	}
	newBlock := c.text[:at] + " style={{ " + styleObject(css) + " }}" + c.text[at:]
	return spliceBlock(lines, c, newBlock), true
}

// PatchAttr replaces the value of one named attribute in the element's
// opening tag, preserving the original quote style, or inserts the
// attribute after the tag name when the tag does not carry it yet.
// Location and uniqueness gating are identical to PatchStyle.
func PatchAttr(content string, line int, desc Descriptor, name, value string) (string, bool) {
	attrs := StableAttributes(desc)
	if len(attrs) == 0 || desc.TagName == "" {
		return "", false
	}

	lines := strings.Split(content, "\n")
	c, ok := locateUnique(lines, line, desc, attrs)
	if !ok {
		return "", false
	}

	// A preceding whitespace char keeps "src=" from matching "data-src=".
	attrRe := regexp.MustCompile(`(\s)` + regexp.QuoteMeta(name) + `\s*=\s*("[^"]*"|'[^']*'|\{[^}]*\})`)
	if m := attrRe.FindStringSubmatchIndex(c.text); m != nil {
		old := c.text[m[4]:m[5]]
		var repl string
		switch old[0] {
		case '\'':
			repl = "'" + value + "'"
		default:
			repl = `"` + value + `"`
		}
		newBlock := c.text[:m[4]] + repl + c.text[m[5]:]
		return spliceBlock(lines, c, newBlock), true
	}

	at, ok := afterTagName(c.text, desc.TagName)
	if !ok {
		return "", false
	}
	newBlock := c.text[:at] + " " + name + `="` + value + `"` + c.text[at:]
	return spliceBlock(lines, c, newBlock), true
}

// styleObject renders a css map as a JSX style object body, keys
// camelCased and sorted so the same change always produces the same
// patch.
func styleObject(css map[string]string) string {
	keys := make([]string, 0, len(css))
	for k := range css {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(css[k], "'", `\'`)
		parts = append(parts, camelCase(k)+": '"+v+"'")
	}
	return strings.Join(parts, ", ")
}

// camelCase converts a kebab-case CSS property to its JSX form
// (margin-top → marginTop). Already-camel names pass through unchanged.
func camelCase(prop string) string {
	if !strings.Contains(prop, "-") {
		return prop
	}
	segs := strings.Split(prop, "-")
	var b strings.Builder
	b.WriteString(segs[0])
	for _, s := range segs[1:] {
		if s == "" {
			continue
		}
		b.WriteString(strings.ToUpper(s[:1]))
		b.WriteString(s[1:])
	}
	return b.String()
}
