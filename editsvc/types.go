package editsvc

import (
	"context"

	"github.com/hazyhaar/domedit/locator"
)

// EditRequest is one observed live-DOM edit to translate into a source
// patch. File is relative to the configured project root. SourceLine is
// the 1-based line hint from the instrumentation layer; 0 means no hint.
type EditRequest struct {
	File       string             `json:"file"`
	Descriptor locator.Descriptor `json:"descriptor"`
	Change     locator.Change     `json:"change"`
	SourceLine int                `json:"source_line,omitempty"`
}

// PatchResult describes an applied (or previewed) patch.
type PatchResult struct {
	PatchID    string `json:"patch_id,omitempty"`
	File       string `json:"file"`
	Source     string `json:"source"` // "fast_path" or "generator"
	BeforeHash string `json:"before_hash"`
	AfterHash  string `json:"after_hash"`
	// Patched holds the full patched text on Preview; empty on Apply.
	Patched string `json:"patched,omitempty"`
}

// PatchRecord is one journal entry, returned by History.
type PatchRecord struct {
	ID         string `json:"id"`
	File       string `json:"file"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	BeforeHash string `json:"before_hash"`
	AfterHash  string `json:"after_hash"`
	CreatedAt  string `json:"created_at"`
	RevertedAt string `json:"reverted_at,omitempty"`
}

// Generator is the slow-path escalation seam: given the file content and
// the request the fast path declined, it produces the full patched text.
// Implementations live outside this module (an LLM-backed patcher, a
// human-in-the-loop queue); the service only defines the seam.
type Generator interface {
	Generate(ctx context.Context, content string, req EditRequest) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, content string, req EditRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, content string, req EditRequest) (string, error) {
	return f(ctx, content, req)
}
