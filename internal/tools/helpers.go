// Package tools implements the MCP tool handlers.
//
// Each tool is a struct that receives its dependencies (the storage.Store,
// a specdoc.Renderer) and exposes a Definition for registration plus a
// Handle compatible with mcp-go's CallToolRequest signature. Each file
// groups the tools for one concern.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reqwire/reqwire/internal/discovery"
	"github.com/reqwire/reqwire/internal/storage"
)

// stringSliceArg reads an optional string-array argument. Missing or
// malformed values yield nil.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// parseResponses decodes the accumulated stage responses carried
// between discovery calls as a JSON object. A missing or unparseable
// payload starts the interview over with an empty map.
func parseResponses(raw string) map[discovery.Stage]string {
	responses := map[discovery.Stage]string{}
	if raw == "" {
		return responses
	}
	if err := json.Unmarshal([]byte(raw), &responses); err != nil {
		return map[discovery.Stage]string{}
	}
	return responses
}

// jsonResult marshals v and wraps it as a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// storeErrResult converts storage failures into tool results. Domain
// errors (validation, not found) become tool-level errors the model
// can act on; anything else propagates as a protocol error.
func storeErrResult(action string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, storage.ErrValidation) || errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, fmt.Errorf("%s: %w", action, err)
}
