// Package mcptools exposes the engine operations as MCP tools.
//
// Each tool is a struct holding the service it drives:
// - Definition() returns the mcp.Tool schema
// - Handle() validates arguments, calls the service and returns JSON text
//
// Engine validation failures come back as tool error results, never as
// protocol errors.
package mcptools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaizenflow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// hasArg reports whether the caller sent key at all, null included.
func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

// intArg extracts an integer argument, returning defaultVal when the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// optionalIntArg returns nil when key is missing or not a number.
func optionalIntArg(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// idArg reads a required positive integer id.
func idArg(req mcp.CallToolRequest, key string) (uint, error) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok || v < 1 || v != float64(uint(v)) {
		return 0, fmt.Errorf("'%s' must be a positive integer", key)
	}
	return uint(v), nil
}

func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func uintSliceArg(req mcp.CallToolRequest, key string) []uint {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]uint, 0, len(raw))
	for _, item := range raw {
		if v, ok := item.(float64); ok && v >= 1 {
			out = append(out, uint(v))
		}
	}
	return out
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// errorResult turns an engine error into a tool error result.
func errorResult(action string, err error) *mcp.CallToolResult {
	var validation *service.ValidationError
	if errors.As(err, &validation) || errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrConflict) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}

func stringItems() mcp.PropertyOption {
	return mcp.Items(map[string]any{"type": "string"})
}

func numberItems() mcp.PropertyOption {
	return mcp.Items(map[string]any{"type": "number"})
}
