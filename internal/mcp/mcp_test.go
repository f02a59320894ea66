package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/sicon/internal/catalog"
	"github.com/hpungsan/sicon/internal/cdn"
	"github.com/hpungsan/sicon/internal/config"
	"github.com/hpungsan/sicon/internal/db"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/ops"
	"github.com/hpungsan/sicon/internal/render"
)

const testCatalog = `[
	{"title":"GitHub","slug":"github","hex":"181717","source":"https://github.com/logos"},
	{"title":"GitLab","slug":"gitlab","hex":"FC6D26","source":"https://about.gitlab.com/press/","license":"MIT"},
	{"title":"Go","slug":"go","hex":"00ADD8","source":"https://go.dev/blog/go-brand"}
]`

const testSVG = `<svg role="img" viewBox="0 0 24 24" xmlns="http://www.w3.org/2000/svg"><path d="M0 0h24v24H0z"/></svg>`

// testSetup creates a service backed by a fake CDN, a temp cache and a temp ledger.
func testSetup(t *testing.T) (*ops.Service, *config.Config) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data.json" {
			_, _ = w.Write([]byte(testCatalog))
			return
		}
		_, _ = w.Write([]byte(testSVG))
	}))
	t.Cleanup(srv.Close)

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	c := render.Capability{Raster: true}
	policy, err := render.NewPolicy(c, "svg")
	if err != nil {
		t.Fatalf("failed to create policy: %v", err)
	}
	client := cdn.NewClient(srv.URL+"/data.json", srv.URL, 5*time.Second)

	svc := &ops.Service{
		Catalog:     catalog.NewStore(filepath.Join(tmpDir, "data.json"), client),
		Icons:       client,
		Policy:      policy,
		Exporter:    render.NewExporter(c),
		Ledger:      database,
		Threshold:   60,
		DefaultSize: 32,
	}
	return svc, config.DefaultConfig()
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleSearch(t *testing.T) {
	svc, _ := testSetup(t)
	h := NewHandlers(svc)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantErr   string
		wantTotal float64
		wantItems int
	}{
		{"substring", map[string]any{"query": "git"}, "", 2, 2},
		{"limited", map[string]any{"query": "git", "limit": 1}, "", 2, 1},
		{"no matches", map[string]any{"query": "nothing"}, "", 0, 0},
		{"missing query", map[string]any{}, "INVALID_REQUEST", 0, 0},
		{"unknown argument", map[string]any{"query": "git", "lmit": 1}, "INVALID_REQUEST", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := h.HandleSearch(ctx, makeRequest(tc.args))
			if err != nil {
				t.Fatalf("HandleSearch returned error: %v", err)
			}
			if tc.wantErr != "" {
				if !result.IsError {
					t.Fatal("expected error result")
				}
				assertErrorCode(t, result, tc.wantErr)
				return
			}

			output := parseOutput(t, result)
			if output["total"] != tc.wantTotal {
				t.Errorf("total = %v, want %v", output["total"], tc.wantTotal)
			}
			items := output["items"].([]any)
			if len(items) != tc.wantItems {
				t.Errorf("items = %d, want %d", len(items), tc.wantItems)
			}
		})
	}
}

func TestHandleInfo(t *testing.T) {
	svc, _ := testSetup(t)
	h := NewHandlers(svc)

	result, err := h.HandleInfo(context.Background(), makeRequest(map[string]any{"query": "gitlab"}))
	if err != nil {
		t.Fatalf("HandleInfo returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["title"] != "GitLab" {
		t.Errorf("title = %v, want GitLab", output["title"])
	}
	license, ok := output["license"].(map[string]any)
	if !ok || license["type"] != "MIT" {
		t.Errorf("license = %v, want type MIT", output["license"])
	}
	match := output["match"].(map[string]any)
	if match["exact"] != true {
		t.Errorf("match.exact = %v, want true", match["exact"])
	}

	result, err = h.HandleInfo(context.Background(), makeRequest(map[string]any{"query": "zzzzzzzz"}))
	if err != nil {
		t.Fatalf("HandleInfo returned error: %v", err)
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleResolve(t *testing.T) {
	svc, _ := testSetup(t)
	h := NewHandlers(svc)
	ctx := context.Background()

	result, err := h.HandleResolve(ctx, makeRequest(map[string]any{"query": "git"}))
	if err != nil {
		t.Fatalf("HandleResolve returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["slug"] != "github" {
		t.Errorf("slug = %v, want github", output["slug"])
	}
	match := output["match"].(map[string]any)
	if match["exact"] != false {
		t.Errorf("match.exact = %v, want false", match["exact"])
	}

	result, err = h.HandleResolve(ctx, makeRequest(map[string]any{"query": "git", "threshold": 90}))
	if err != nil {
		t.Fatalf("HandleResolve returned error: %v", err)
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleDownload(t *testing.T) {
	svc, _ := testSetup(t)
	dir := t.TempDir()
	h := NewHandlers(svc)

	result, err := h.HandleDownload(context.Background(), makeRequest(map[string]any{
		"query":   "go",
		"output":  filepath.Join(dir, "go.png"),
		"size":    16,
		"opacity": 0.5,
	}))
	if err != nil {
		t.Fatalf("HandleDownload returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["format"] != "png" {
		t.Errorf("format = %v, want png", output["format"])
	}
	if output["width"] != float64(16) {
		t.Errorf("width = %v, want 16", output["width"])
	}
	if _, err := os.Stat(filepath.Join(dir, "go.png")); err != nil {
		t.Errorf("expected file written: %v", err)
	}

	// Capability gaps surface with their hint
	result, err = h.HandleDownload(context.Background(), makeRequest(map[string]any{
		"query":  "go",
		"output": dir,
		"format": "icns",
	}))
	if err != nil {
		t.Fatalf("HandleDownload returned error: %v", err)
	}
	assertErrorCode(t, result, "CAPABILITY_UNAVAILABLE")
	if !strings.Contains(extractErrorMessage(result), "hint") {
		t.Errorf("expected hint in error payload, got %s", extractErrorMessage(result))
	}
}

func TestHandleHistory(t *testing.T) {
	svc, _ := testSetup(t)
	h := NewHandlers(svc)
	ctx := context.Background()
	dir := t.TempDir()

	for _, q := range []string{"github", "go", "github"} {
		if _, err := svc.Download(ctx, ops.DownloadInput{Query: q, Output: dir}); err != nil {
			t.Fatalf("Download(%q) failed: %v", q, err)
		}
	}

	result, err := h.HandleHistory(ctx, makeRequest(map[string]any{"slug": "github", "limit": 1}))
	if err != nil {
		t.Fatalf("HandleHistory returned error: %v", err)
	}
	output := parseOutput(t, result)
	items := output["items"].([]any)
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
	pagination := output["pagination"].(map[string]any)
	if pagination["total"] != float64(2) || pagination["has_more"] != true {
		t.Errorf("pagination = %v, want total 2 with more", pagination)
	}
}

func TestServer_DownloadConfinedToAllowedDirs(t *testing.T) {
	svc, cfg := testSetup(t)
	allowed := t.TempDir()
	cfg.AllowedOutputDirs = []string{allowed}

	s := NewServer(svc, cfg, "test")
	tool, ok := s.ListTools()["icon_download"]
	if !ok {
		t.Fatal("icon_download not registered")
	}

	outside := t.TempDir()
	result, err := tool.Handler(context.Background(), makeRequest(map[string]any{"query": "go", "output": outside}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, err = tool.Handler(context.Background(), makeRequest(map[string]any{"query": "go", "output": allowed}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["path"] != filepath.Join(allowed, "go.svg") {
		t.Errorf("path = %v, want %s", output["path"], filepath.Join(allowed, "go.svg"))
	}

	// The caller's service stays unrestricted
	if svc.OutputDirs != nil {
		t.Errorf("NewServer mutated the shared service: %v", svc.OutputDirs)
	}
}

func TestOutputDirs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowedOutputDirs = []string{"/srv/icons"}

	dirs := OutputDirs(cfg)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || dirs[0] != wd || dirs[1] != "/srv/icons" {
		t.Errorf("OutputDirs() = %v, want [%s /srv/icons]", dirs, wd)
	}
}

func TestServerRegistration(t *testing.T) {
	svc, cfg := testSetup(t)

	s := NewServer(svc, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"icon_search",
		"icon_info",
		"icon_resolve",
		"icon_download",
		"icon_history",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	svc, cfg := testSetup(t)

	cfg.DisabledTools = []string{"icon_download", "icon_history", "icon_download"}
	s := NewServer(svc, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 3 {
		t.Errorf("registered tool count = %d, want 3", len(tools))
	}
	for _, name := range []string{"icon_download", "icon_history"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	svc, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(svc, cfg, "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"icon_download", "icon_history"}, 0},
		{"one unknown", []string{"icon_download", "icon_delete"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 5 {
		t.Errorf("AllToolNames() returned %d names, want 5", len(names))
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Fatalf("internal message leaked: %v", errObj["message"])
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrappedErr := fmt.Errorf("resolve %q: %w", "gthub", errors.NewNotFound("gthub"))

	errObj := errorObject(t, errorResult(wrappedErr))
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if msg := errObj["message"].(string); !strings.Contains(msg, "resolve") {
		t.Errorf("message should contain wrapper context, got: %s", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewIconNotFound("abc")))

	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if errObj["message"] != `icon "abc" not found` {
		t.Errorf("message=%v", errObj["message"])
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != string(errors.ErrInternal) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected IsError=true")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	return payload["error"].(map[string]any)
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result, got: %s", extractErrorMessage(result))
		return
	}
	errorObj := errorObject(t, result)
	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
