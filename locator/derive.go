package locator

import "strings"

// EffectiveLine recovers a usable 1-based target line when the reported
// one is absent or untrustworthy. It scans the whole file for an opening
// tag of the element's type whose block matches every stable attribute,
// and returns the line of the first such block.
//
// All attributes must match — one hit is not enough evidence, because a
// false positive silently repoints the edit at the wrong element. When
// nothing satisfies every attribute (or the element has none worth
// matching) the deriver gives up gracefully and returns line 1.
func EffectiveLine(lines []string, desc Descriptor) int {
	attrs := StableAttributes(desc)
	if len(attrs) == 0 || desc.TagName == "" {
		return 1
	}

	open := "<" + strings.ToLower(desc.TagName)
	for i := range lines {
		if !strings.Contains(strings.ToLower(lines[i]), open) {
			continue
		}
		_, block := readTagBlock(lines, i)
		all := true
		for _, a := range attrs {
			if !matchAttribute(block, a.Name, a.Value) {
				all = false
				break
			}
		}
		if all {
			return i + 1
		}
	}
	return 1
}
