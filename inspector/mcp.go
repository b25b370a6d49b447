package inspector

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domedit/kit"
)

type describeRequest struct {
	URL      string `json:"url"`
	Selector string `json:"selector"`
}

// RegisterMCP registers the describe tool on an MCP server.
func (i *Inspector) RegisterMCP(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domedit_describe",
		Description: "Capture an Element Descriptor from a live page: tag, attributes in document order, and the instrumentation source-line hint. Feed the result into domedit_apply.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url":      map[string]any{"type": "string", "description": "Page URL to open"},
				"selector": map[string]any{"type": "string", "description": "CSS selector of the target element"},
			},
			"required": []string{"url", "selector"},
		},
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*describeRequest)
		return i.Describe(ctx, r.URL, r.Selector)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r describeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
