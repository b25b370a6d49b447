package locator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Attr is one attribute of a live DOM element. Attribute order matters:
// it breaks ties when ranking stable attributes, so descriptors carry an
// ordered slice rather than a map.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Descriptor identifies one DOM element as reported by the inspector.
// It is a loosely shaped bag at the wire boundary; validation happens in
// Apply, not here.
type Descriptor struct {
	TagName    string   `json:"tag_name"`
	Attributes AttrList `json:"attributes,omitempty"`
	ClassName  string   `json:"class_name,omitempty"`
	ID         string   `json:"id,omitempty"`
	Text       string   `json:"text,omitempty"`
}

// Attr returns the value of the named attribute, or "".
func (d Descriptor) Attr(name string) string {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// AttrList is an ordered attribute collection. It unmarshals from either
// a JSON array of {name,value} pairs or a plain JSON object; the object
// form preserves encounter order via token-level decoding, so the same
// descriptor always ranks the same way.
type AttrList []Attr

func (l *AttrList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var arr []Attr
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("locator: attributes must be an object or array")
	}
	var out AttrList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("locator: attribute %q: %w", key, err)
		}
		out = append(out, Attr{Name: key, Value: val})
	}
	*l = out
	return nil
}

// StableAttr is an attribute ranked by how uniquely it is likely to
// identify its element in raw markup.
type StableAttr struct {
	Name   string
	Value  string
	Weight int
}

// maxStableAttrs caps how many ranked attributes are kept per element.
const maxStableAttrs = 3

// instrumentationPrefix marks attributes injected by the inspector
// overlay; they never exist in source and must not anchor a match.
const instrumentationPrefix = "data-domedit-"

// bannedAttrs are volatile or injected attributes excluded from ranking:
// class/id churn across re-renders and style is what we are editing.
var bannedAttrs = map[string]bool{
	"class":     true,
	"className": true,
	"id":        true,
	"style":     true,
}

// StableAttributes ranks a descriptor's attributes by identifying power
// and returns at most maxStableAttrs of them, best first. Ties keep the
// original attribute order. An element with no usable attributes yields
// an empty slice; callers that need an anchor must check for that.
func StableAttributes(d Descriptor) []StableAttr {
	var out []StableAttr
	for _, a := range d.Attributes {
		if a.Name == "" || a.Value == "" {
			continue
		}
		if bannedAttrs[a.Name] || strings.HasPrefix(a.Name, instrumentationPrefix) {
			continue
		}
		out = append(out, StableAttr{Name: a.Name, Value: a.Value, Weight: attrWeight(a.Name, a.Value)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > maxStableAttrs {
		out = out[:maxStableAttrs]
	}
	return out
}

// attrWeight scores an attribute. SVG path data is near-unique, URLs and
// accessibility labels are strong, everything else scores by value length
// clamped to [10,40] — longer values are less likely to repeat.
func attrWeight(name, value string) int {
	switch name {
	case "d":
		return 100
	case "href", "xlink:href", "src":
		return 80
	case "aria-label":
		return 70
	case "viewBox":
		return 60
	}
	w := len(value)
	if w < 10 {
		w = 10
	}
	if w > 40 {
		w = 40
	}
	return w
}
