package editsvc

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domedit/kit"
)

// RegisterMCP registers the edit tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerApplyTool(srv)
	s.registerPreviewTool(srv)
	s.registerHistoryTool(srv)
	s.registerUndoTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// editRequestSchema is shared by apply and preview: the request mirrors
// the HTTP API body.
func editRequestSchema() map[string]any {
	return inputSchema(map[string]any{
		"file": map[string]any{"type": "string", "description": "Source file path relative to the project root"},
		"descriptor": map[string]any{
			"type":        "object",
			"description": "Observed DOM element: tag_name plus attributes in document order",
			"properties": map[string]any{
				"tag_name":   map[string]any{"type": "string"},
				"attributes": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
				"class_name": map[string]any{"type": "string"},
				"id":         map[string]any{"type": "string"},
				"text":       map[string]any{"type": "string"},
			},
		},
		"change": map[string]any{
			"type":        "object",
			"description": "The observed edit: kind 'text' (old_text/new_text), 'style' (css map), or 'attr' (attr/value)",
			"properties": map[string]any{
				"kind":     map[string]any{"type": "string", "enum": []any{"text", "style", "attr"}},
				"old_text": map[string]any{"type": "string"},
				"new_text": map[string]any{"type": "string"},
				"css":      map[string]any{"type": "object"},
				"attr":     map[string]any{"type": "string"},
				"value":    map[string]any{"type": "string"},
			},
		},
		"source_line": map[string]any{"type": "integer", "description": "1-based source line hint from instrumentation; 0 when unknown"},
	}, []string{"file", "descriptor", "change"})
}

func decodeEditRequest(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r EditRequest
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{
		Request:   &r,
		EnrichCtx: func(ctx context.Context) context.Context { return kit.WithTransport(ctx, "mcp_stdio") },
	}, nil
}

func (s *Service) registerApplyTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domedit_apply",
		Description: "Translate an observed live-DOM edit into a source patch and write it. Declines rather than guessing when the target is ambiguous.",
		InputSchema: editRequestSchema(),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Apply(ctx, *req.(*EditRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeEditRequest)
}

func (s *Service) registerPreviewTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domedit_preview",
		Description: "Compute the source patch for an observed live-DOM edit without writing anything. Returns the full patched text.",
		InputSchema: editRequestSchema(),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Preview(ctx, *req.(*EditRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeEditRequest)
}

type historyRequest struct {
	File  string `json:"file,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

func (s *Service) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domedit_history",
		Description: "List applied patches, newest first, optionally filtered by file.",
		InputSchema: inputSchema(map[string]any{
			"file":  map[string]any{"type": "string", "description": "Filter by project-relative file path"},
			"limit": map[string]any{"type": "integer", "description": "Max results (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*historyRequest)
		return s.History(ctx, r.File, r.Limit)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r historyRequest
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

type undoRequest struct {
	PatchID string `json:"patch_id"`
}

func (s *Service) registerUndoTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domedit_undo",
		Description: "Restore the pre-patch text of a journaled patch. Refuses when the file changed since the patch was applied.",
		InputSchema: inputSchema(map[string]any{
			"patch_id": map[string]any{"type": "string", "description": "Patch ID (pat_...) from apply or history"},
		}, []string{"patch_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Undo(ctx, req.(*undoRequest).PatchID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r undoRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
