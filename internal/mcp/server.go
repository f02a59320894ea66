package mcp

import (
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/sicon/internal/config"
	"github.com/hpungsan/sicon/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"icon_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"icon_info": {
		def:     infoToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInfo },
	},
	"icon_resolve": {
		def:     resolveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResolve },
	},
	"icon_download": {
		def:     downloadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDownload },
	},
	"icon_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// OutputDirs returns the directories MCP downloads may write under:
// the working directory plus cfg.AllowedOutputDirs.
func OutputDirs(cfg *config.Config) []string {
	dirs := make([]string, 0, len(cfg.AllowedOutputDirs)+1)
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return append(dirs, cfg.AllowedOutputDirs...)
}

// NewServer creates a new MCP server with sicon tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
// Downloads are confined to OutputDirs(cfg).
func NewServer(svc *ops.Service, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"sicon",
		version,
		server.WithToolCapabilities(true),
	)

	restricted := *svc
	restricted.OutputDirs = OutputDirs(cfg)
	h := NewHandlers(&restricted)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(svc *ops.Service, cfg *config.Config, version string) error {
	s := NewServer(svc, cfg, version)
	return server.ServeStdio(s)
}
