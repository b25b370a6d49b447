package editsvc

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "modernc.org/sqlite"
)

var testImpl = &mcp.Implementation{Name: "domedit-test", Version: "0.1.0"}

// mcpSession creates a Service over a temp project, registers MCP tools,
// and returns a connected client session that can call tools end-to-end.
func mcpSession(t *testing.T) (*Service, string, *mcp.ClientSession) {
	t.Helper()
	s, root := testService(t)

	srv := mcp.NewServer(testImpl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return s, root, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %v", name, result.Content)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func editArgs(file string) map[string]any {
	return map[string]any{
		"file":       file,
		"descriptor": map[string]any{"tag_name": "button"},
		"change": map[string]any{
			"kind":     "text",
			"old_text": "Joined",
			"new_text": "Join",
		},
	}
}

func TestMCP_PreviewAndApply(t *testing.T) {
	_, root, session := mcpSession(t)
	writeFile(t, root, "src/App.jsx", labelSource)

	text := callTool(t, session, "domedit_preview", editArgs("src/App.jsx"))
	var preview PatchResult
	if err := json.Unmarshal([]byte(text), &preview); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(preview.Patched, "return 'Join';") {
		t.Errorf("preview text: %q", preview.Patched)
	}
	if got := readFile(t, root, "src/App.jsx"); got != labelSource {
		t.Error("preview wrote to disk")
	}

	text = callTool(t, session, "domedit_apply", editArgs("src/App.jsx"))
	var applied PatchResult
	if err := json.Unmarshal([]byte(text), &applied); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasPrefix(applied.PatchID, "pat_") {
		t.Errorf("patch ID %q", applied.PatchID)
	}
	if got := readFile(t, root, "src/App.jsx"); !strings.Contains(got, "return 'Join';") {
		t.Errorf("apply did not write:\n%s", got)
	}
}

func TestMCP_HistoryAndUndo(t *testing.T) {
	_, root, session := mcpSession(t)
	writeFile(t, root, "src/App.jsx", labelSource)

	text := callTool(t, session, "domedit_apply", editArgs("src/App.jsx"))
	var applied PatchResult
	if err := json.Unmarshal([]byte(text), &applied); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	text = callTool(t, session, "domedit_history", map[string]any{"file": "src/App.jsx"})
	var hist []PatchRecord
	if err := json.Unmarshal([]byte(text), &hist); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(hist) != 1 || hist[0].ID != applied.PatchID {
		t.Fatalf("history: %+v", hist)
	}

	text = callTool(t, session, "domedit_undo", map[string]any{"patch_id": applied.PatchID})
	var rec PatchRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.RevertedAt == "" {
		t.Error("record not stamped reverted")
	}
	if got := readFile(t, root, "src/App.jsx"); got != labelSource {
		t.Errorf("undo did not restore:\n%s", got)
	}
}

func TestMCP_ApplyDecline_IsToolError(t *testing.T) {
	_, root, session := mcpSession(t)
	writeFile(t, root, "src/Links.jsx", "<a>Download</a>\n<b>Download</b>")

	args := map[string]any{
		"file":       "src/Links.jsx",
		"descriptor": map[string]any{"tag_name": "a"},
		"change": map[string]any{
			"kind":     "text",
			"old_text": "Download",
			"new_text": "Save",
		},
	}
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "domedit_apply",
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("decline did not surface as a tool error")
	}
}
