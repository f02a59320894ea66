package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/sicon/internal/ops"
	"github.com/hpungsan/sicon/internal/render"
)

func formatNames() []string {
	formats := render.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

var searchToolDef = mcp.NewTool(
	"icon_search",
	mcp.WithDescription("Search brand icons by title or slug (case-insensitive substring). Returns matches in catalog order."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to look for in icon titles and slugs"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results to return (default 25)"),
		mcp.Min(1),
		mcp.Max(ops.MaxSearchLimit),
	),
)

var infoToolDef = mcp.NewTool(
	"icon_info",
	mcp.WithDescription("Show the full record of one icon: title, slug, brand color, source, guidelines, license and aliases. The query may be a slug or an approximate name."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Slug or approximate icon name"),
	),
)

var resolveToolDef = mcp.NewTool(
	"icon_resolve",
	mcp.WithDescription("Report which icon a query maps to and whether the match was exact or fuzzy, with its similarity score."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Slug or approximate icon name"),
	),
	mcp.WithNumber("threshold",
		mcp.Description("Minimum fuzzy score 0-100 (default from config, usually 60)"),
		mcp.Min(0),
		mcp.Max(100),
	),
)

var downloadToolDef = mcp.NewTool(
	"icon_download",
	mcp.WithDescription("Fetch an icon and write it to disk as svg, png, jpg, bmp, ico or icns. Output must be inside the working directory or a configured allowed directory."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Slug or approximate icon name"),
	),
	mcp.WithString("output",
		mcp.Description("Target file or existing directory (default: <slug>.<ext> in the working directory). A recognized file extension picks the format."),
	),
	mcp.WithString("format",
		mcp.Description("Output format when the output path does not imply one"),
		mcp.Enum(formatNames()...),
	),
	mcp.WithString("color",
		mcp.Description("Fill color as hex (RRGGBB or RGB) or a color name; default is the brand color"),
	),
	mcp.WithBoolean("invert",
		mcp.Description("Use the complement of the chosen color"),
	),
	mcp.WithNumber("opacity",
		mcp.Description("Opacity 0.0-1.0 (default 1.0)"),
		mcp.Min(0),
		mcp.Max(1),
	),
	mcp.WithString("background",
		mcp.Description("Raster background color; transparent when omitted (jpg and bmp default to white)"),
	),
	mcp.WithNumber("size",
		mcp.Description("Raster edge length in pixels"),
		mcp.Min(1),
		mcp.Max(render.MaxSize),
	),
	mcp.WithNumber("threshold",
		mcp.Description("Minimum fuzzy score 0-100"),
		mcp.Min(0),
		mcp.Max(100),
	),
)

var historyToolDef = mcp.NewTool(
	"icon_history",
	mcp.WithDescription("List recorded downloads, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("slug",
		mcp.Description("Only downloads of this slug"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries to return (default 20, max 100)"),
		mcp.Min(1),
		mcp.Max(ops.MaxHistoryLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Entries to skip"),
		mcp.Min(0),
	),
)
