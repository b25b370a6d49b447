// Package verify is the syntactic gate between a computed patch and the
// file write. It never proves a patch correct; it catches the class of
// damage a textual splice can cause — an unterminated string, a dropped
// brace, markup the parser can no longer walk — so that a bad patch is
// converted back into a decline instead of being written to disk.
package verify

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ErrSyntax is returned when the patched text fails the gate for its file
// type. Callers treat it like a locator decline.
var ErrSyntax = errors.New("verify: patched text fails syntax check")

var markupExts = map[string]bool{
	".html": true, ".htm": true, ".vue": true, ".svelte": true,
}

var scriptExts = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
}

// Patched checks the patched text of path against its pre-patch form.
// Markup files must still tokenize; script files must keep the same
// quote and bracket balance they had before the patch. Unknown extensions
// pass — the gate only speaks for file types it understands.
func Patched(path, before, after string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case markupExts[ext]:
		return checkMarkup(after)
	case scriptExts[ext]:
		return checkScript(before, after)
	default:
		return nil
	}
}

// checkMarkup runs the HTML tokenizer over the full document. The parser
// is deliberately error-tolerant, so the only hard failures are tokenizer
// errors other than EOF.
func checkMarkup(content string) error {
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		if z.Next() == html.ErrorToken {
			err := z.Err()
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrSyntax, err)
		}
	}
}

// balance is the count of each delimiter kind that matters for splice
// damage. Absolute balance is meaningless in JSX (an apostrophe in text
// content is not a string), so the gate compares the patched counts with
// the pre-patch counts instead of judging either in isolation.
type balance struct {
	dquote, squote, backtick int
	brace, paren, bracket    int
}

func count(content string) balance {
	var b balance
	escaped := false
	for _, r := range content {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '"':
			b.dquote++
		case '\'':
			b.squote++
		case '`':
			b.backtick++
		case '{':
			b.brace++
		case '}':
			b.brace--
		case '(':
			b.paren++
		case ')':
			b.paren--
		case '[':
			b.bracket++
		case ']':
			b.bracket--
		}
	}
	return b
}

// checkScript rejects a patch that changes quote parity or bracket
// balance relative to the original. A text substitution inside one string
// literal leaves every one of these counts intact.
func checkScript(before, after string) error {
	a, b := count(before), count(after)
	if a.dquote%2 != b.dquote%2 || a.squote%2 != b.squote%2 || a.backtick%2 != b.backtick%2 {
		return fmt.Errorf("%w: quote balance changed", ErrSyntax)
	}
	if a.brace != b.brace || a.paren != b.paren || a.bracket != b.bracket {
		return fmt.Errorf("%w: bracket balance changed", ErrSyntax)
	}
	return nil
}
