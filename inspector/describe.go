package inspector

import (
	"encoding/json"

	"github.com/hazyhaar/domedit/locator"
)

// Description is a captured element: the locator Descriptor plus the
// instrumentation hints read from the element's data attributes.
// SourceLine is 0 when the page carries no instrumentation — callers must
// treat that as "no hint", never as line zero.
type Description struct {
	locator.Descriptor
	SourceLine int    `json:"source_line"`
	SourceFile string `json:"source_file,omitempty"`
}

// describeJS runs in the page and serialises the first element matching
// the selector. Attributes are collected in document order: the locator
// breaks ranking ties on it. Returns "" when nothing matches.
const describeJS = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return "";
	const attrs = [];
	for (const a of el.attributes) {
		attrs.push({ name: a.name, value: a.value });
	}
	const hint = el.getAttribute('data-domedit-line')
		|| el.getAttribute('data-inspector-line')
		|| '0';
	return JSON.stringify({
		tag_name: el.tagName.toLowerCase(),
		attributes: attrs,
		class_name: typeof el.className === 'string' ? el.className : '',
		id: el.id || '',
		text: (el.textContent || '').trim().slice(0, 400),
		source_line: parseInt(hint, 10) || 0,
		source_file: el.getAttribute('data-domedit-file') || ''
	});
}`

func decodeDescription(raw []byte) (*Description, error) {
	var d Description
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
