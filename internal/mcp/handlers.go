package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Request types for each tool

// SearchRequest represents the arguments for icon_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// QueryRequest represents the arguments for icon_info.
type QueryRequest struct {
	Query string `json:"query"`
}

// ResolveRequest represents the arguments for icon_resolve.
type ResolveRequest struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// DownloadRequest represents the arguments for icon_download.
type DownloadRequest struct {
	Query      string   `json:"query"`
	Output     string   `json:"output,omitempty"`
	Format     string   `json:"format,omitempty"`
	Color      string   `json:"color,omitempty"`
	Invert     bool     `json:"invert,omitempty"`
	Opacity    *float64 `json:"opacity,omitempty"`
	Background string   `json:"background,omitempty"`
	Size       int      `json:"size,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// HistoryRequest represents the arguments for icon_history.
type HistoryRequest struct {
	Slug   string `json:"slug,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Handler implementations

// HandleSearch handles the icon_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Search(ctx, ops.SearchInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInfo handles the icon_info tool call.
func (h *Handlers) HandleInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[QueryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Info(ctx, ops.InfoInput{Query: input.Query})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleResolve handles the icon_resolve tool call.
func (h *Handlers) HandleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResolveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Resolve(ctx, ops.ResolveInput{
		Query:     input.Query,
		Threshold: input.Threshold,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDownload handles the icon_download tool call.
func (h *Handlers) HandleDownload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DownloadRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Download(ctx, ops.DownloadInput{
		Query:      input.Query,
		Output:     input.Output,
		Format:     input.Format,
		Color:      input.Color,
		Invert:     input.Invert,
		Opacity:    input.Opacity,
		Background: input.Background,
		Size:       input.Size,
		Threshold:  input.Threshold,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistory handles the icon_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.History(ctx, ops.HistoryInput{
		Slug:   input.Slug,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed; they may carry file paths or SQL text.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := errors.As(err); ok {
		// Keep wrapper context; drop the repeated code prefix
		msg := strings.Replace(err.Error(), sErr.Error(), sErr.Message, 1)
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
			"status":  sErr.Status,
		}
		if sErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		if sErr.Hint != "" {
			errorObj["hint"] = sErr.Hint
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
