package editsvc

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domedit/dbopen"
	"github.com/hazyhaar/domedit/editsvc/internal/journal"
	"github.com/hazyhaar/domedit/idgen"
	"github.com/hazyhaar/domedit/locator"
)

// testService creates a Service over a temp project root and an in-memory
// journal.
func testService(t *testing.T, opts ...Option) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &Config{ProjectRoot: root}
	cfg.defaults()

	s := &Service{
		cfg:     cfg,
		journal: journal.New(dbopen.OpenMemory(t, dbopen.WithSchema(journal.Schema))),
		logger:  slog.Default(),
		newID:   idgen.Prefixed("pat_", idgen.UUIDv7()),
	}
	for _, o := range opts {
		o(s)
	}
	return s, root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const labelSource = `function label(state) {
  switch (state) {
    case 'joined':
      return 'Joined';
    default:
      return 'Unknown';
  }
}`

func textRequest(file string) EditRequest {
	return EditRequest{
		File:       file,
		Descriptor: locator.Descriptor{TagName: "button"},
		Change:     locator.Change{Kind: locator.KindText, OldText: "Joined", NewText: "Join"},
	}
}

func TestApply_TextPatch(t *testing.T) {
	s, root := testService(t)
	writeFile(t, root, "src/App.jsx", labelSource)

	res, err := s.Apply(context.Background(), textRequest("src/App.jsx"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.PatchID, "pat_") {
		t.Errorf("patch ID %q, want pat_ prefix", res.PatchID)
	}
	if res.Source != "fast_path" {
		t.Errorf("source = %q", res.Source)
	}
	if res.BeforeHash == res.AfterHash {
		t.Error("hashes identical, file unchanged?")
	}
	if got := readFile(t, root, "src/App.jsx"); !strings.Contains(got, "return 'Join';") {
		t.Errorf("file not patched:\n%s", got)
	}

	hist, err := s.History(context.Background(), "src/App.jsx", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].ID != res.PatchID {
		t.Errorf("history: %+v", hist)
	}
}

func TestApply_DeclinesOnAmbiguity(t *testing.T) {
	s, root := testService(t)
	content := "<a>Download</a>\n<b>Download</b>"
	writeFile(t, root, "src/Links.jsx", content)

	req := EditRequest{
		File:       "src/Links.jsx",
		Descriptor: locator.Descriptor{TagName: "a"},
		Change:     locator.Change{Kind: locator.KindText, OldText: "Download", NewText: "Save"},
	}
	_, err := s.Apply(context.Background(), req)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("got %v, want ErrDeclined", err)
	}
	if got := readFile(t, root, "src/Links.jsx"); got != content {
		t.Errorf("declined apply modified the file:\n%s", got)
	}
}

func TestApply_GeneratorFallback(t *testing.T) {
	gen := GeneratorFunc(func(_ context.Context, content string, req EditRequest) (string, error) {
		return strings.Replace(content, "Download", "Save", 1), nil
	})
	s, root := testService(t, WithGenerator(gen))
	writeFile(t, root, "src/Links.jsx", "<a>Download</a>\n<b>Download</b>")

	req := EditRequest{
		File:       "src/Links.jsx",
		Descriptor: locator.Descriptor{TagName: "a"},
		Change:     locator.Change{Kind: locator.KindText, OldText: "Download", NewText: "Save"},
	}
	res, err := s.Apply(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "generator" {
		t.Errorf("source = %q, want generator", res.Source)
	}
	if got := readFile(t, root, "src/Links.jsx"); !strings.HasPrefix(got, "<a>Save</a>") {
		t.Errorf("file not patched:\n%s", got)
	}
}

func TestApply_VerificationGatesGeneratorOutput(t *testing.T) {
	// WHY: the generator is outside this module's trust boundary — broken
	// output must never reach disk.
	gen := GeneratorFunc(func(_ context.Context, content string, req EditRequest) (string, error) {
		return "const broken = 'oops;", nil
	})
	s, root := testService(t, WithGenerator(gen))
	content := "<a>Download</a>\n<b>Download</b>"
	writeFile(t, root, "src/Links.js", content)

	req := EditRequest{
		File:       "src/Links.js",
		Descriptor: locator.Descriptor{TagName: "a"},
		Change:     locator.Change{Kind: locator.KindText, OldText: "Download", NewText: "Save"},
	}
	_, err := s.Apply(context.Background(), req)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("got %v, want ErrDeclined", err)
	}
	if got := readFile(t, root, "src/Links.js"); got != content {
		t.Errorf("broken patch reached disk:\n%s", got)
	}
}

func TestApply_PathTraversal(t *testing.T) {
	s, _ := testService(t)
	req := textRequest("../outside.jsx")
	_, err := s.Apply(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestApply_EmptyFile(t *testing.T) {
	s, _ := testService(t)
	_, err := s.Apply(context.Background(), textRequest(""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestPreview_DoesNotWrite(t *testing.T) {
	s, root := testService(t)
	writeFile(t, root, "src/App.jsx", labelSource)

	res, err := s.Preview(context.Background(), textRequest("src/App.jsx"))
	if err != nil {
		t.Fatal(err)
	}
	if res.PatchID != "" {
		t.Errorf("preview minted a patch ID: %q", res.PatchID)
	}
	if !strings.Contains(res.Patched, "return 'Join';") {
		t.Errorf("preview text missing patch:\n%s", res.Patched)
	}
	if got := readFile(t, root, "src/App.jsx"); got != labelSource {
		t.Error("preview wrote to disk")
	}

	hist, _ := s.History(context.Background(), "", 0)
	if len(hist) != 0 {
		t.Errorf("preview journaled: %+v", hist)
	}
}

func TestUndo_RestoresOriginal(t *testing.T) {
	s, root := testService(t)
	writeFile(t, root, "src/App.jsx", labelSource)

	res, err := s.Apply(context.Background(), textRequest("src/App.jsx"))
	if err != nil {
		t.Fatal(err)
	}

	rec, err := s.Undo(context.Background(), res.PatchID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.RevertedAt == "" {
		t.Error("record not stamped reverted")
	}
	if got := readFile(t, root, "src/App.jsx"); got != labelSource {
		t.Errorf("undo did not restore original:\n%s", got)
	}

	if _, err := s.Undo(context.Background(), res.PatchID); !errors.Is(err, ErrAlreadyReverted) {
		t.Errorf("double undo: got %v, want ErrAlreadyReverted", err)
	}
}

func TestUndo_RefusesWhenFileChanged(t *testing.T) {
	s, root := testService(t)
	writeFile(t, root, "src/App.jsx", labelSource)

	res, err := s.Apply(context.Background(), textRequest("src/App.jsx"))
	if err != nil {
		t.Fatal(err)
	}

	// Someone edits the file after the patch.
	writeFile(t, root, "src/App.jsx", "// rewritten\n")

	if _, err := s.Undo(context.Background(), res.PatchID); !errors.Is(err, ErrFileChanged) {
		t.Fatalf("got %v, want ErrFileChanged", err)
	}
	if got := readFile(t, root, "src/App.jsx"); got != "// rewritten\n" {
		t.Errorf("refused undo still wrote: %q", got)
	}
}

func TestUndo_UnknownID(t *testing.T) {
	s, _ := testService(t)
	if _, err := s.Undo(context.Background(), "pat_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestHistory_FileFilter(t *testing.T) {
	s, root := testService(t)
	writeFile(t, root, "a.jsx", "const a = 'One';")
	writeFile(t, root, "b.jsx", "const b = 'Two';")

	reqA := EditRequest{File: "a.jsx", Descriptor: locator.Descriptor{TagName: "a"},
		Change: locator.Change{Kind: locator.KindText, OldText: "One", NewText: "Un"}}
	reqB := EditRequest{File: "b.jsx", Descriptor: locator.Descriptor{TagName: "a"},
		Change: locator.Change{Kind: locator.KindText, OldText: "Two", NewText: "Deux"}}

	if _, err := s.Apply(context.Background(), reqA); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(context.Background(), reqB); err != nil {
		t.Fatal(err)
	}

	got, err := s.History(context.Background(), "b.jsx", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].File != "b.jsx" {
		t.Errorf("filtered history: %+v", got)
	}

	all, err := s.History(context.Background(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("full history: %+v", all)
	}
}
