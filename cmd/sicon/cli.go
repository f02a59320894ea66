package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/sicon/internal/config"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/ops"
	"github.com/hpungsan/sicon/internal/render"
	"github.com/hpungsan/sicon/internal/ui"
)

// runtime carries what commands need. The service is built on first use so
// help and flag errors never touch the network or the history database.
type runtime struct {
	baseDir string
	cfg     *config.Config
	out     io.Writer
	errOut  io.Writer

	svc     *ops.Service
	closeFn func()
	p       *ui.Presenter
	logger  *log.Logger
}

// service returns the wired service, creating it once.
func (rt *runtime) service() (*ops.Service, error) {
	if rt.svc != nil {
		return rt.svc, nil
	}
	svc, closeFn, err := newService(rt.baseDir, rt.cfg, rt.log())
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	rt.svc, rt.closeFn = svc, closeFn
	return svc, nil
}

func (rt *runtime) log() *log.Logger {
	if rt.logger == nil {
		rt.logger = log.New(io.Discard, "", 0)
	}
	return rt.logger
}

// Close releases the history database.
func (rt *runtime) Close() {
	if rt.closeFn != nil {
		rt.closeFn()
		rt.closeFn = nil
	}
}

// configure applies the global flags. Quiet from config applies unless --json is set.
func (rt *runtime) configure(c *cli.Context) {
	quiet := c.Bool("quiet") || (rt.cfg != nil && rt.cfg.Quiet)
	rt.p = ui.NewPresenter(rt.out, rt.errOut, quiet, c.Bool("json"))
	if c.Bool("verbose") {
		rt.logger = log.New(rt.errOut, "sicon: ", log.Ltime|log.Lmicroseconds)
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(rt *runtime) *cli.App {
	app := &cli.App{
		Name:      "sicon",
		Usage:     "Look up, fetch and render brand icons",
		Version:   Version,
		Writer:    rt.out,
		ErrWriter: rt.errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Print only essential values (slugs, paths)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log cache, network and timing details to stderr"},
		},
		Before: func(c *cli.Context) error {
			rt.configure(c)
			return nil
		},
		Commands: []*cli.Command{
			searchCmd(rt),
			infoCmd(rt),
			resolveCmd(rt),
			downloadCmd(rt),
			historyCmd(rt),
			shellCmd(rt),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// searchCmd creates the search command.
func searchCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search icons by title or slug",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: ops.DefaultSearchLimit, Usage: "Maximum results to show"},
		},
		Action: func(c *cli.Context) error {
			svc, err := rt.service()
			if err != nil {
				return outputError(rt, err)
			}

			spin := rt.p.Spin("Fetching icon data...")
			output, err := svc.Search(c.Context, ops.SearchInput{
				Query: queryArg(c),
				Limit: c.Int("limit"),
			})
			spin.Stop()
			if err != nil {
				return outputError(rt, err)
			}

			return rt.p.Search(output)
		},
	}
}

// infoCmd creates the info command.
func infoCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show the full record of an icon",
		ArgsUsage: "<slug or name>",
		Action: func(c *cli.Context) error {
			svc, err := rt.service()
			if err != nil {
				return outputError(rt, err)
			}

			spin := rt.p.Spin("Fetching icon data...")
			output, err := svc.Info(c.Context, ops.InfoInput{Query: queryArg(c)})
			spin.Stop()
			if err != nil {
				return outputError(rt, err)
			}

			return rt.p.Info(output)
		},
	}
}

// resolveCmd creates the resolve command.
func resolveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Show which icon a query maps to (exact or fuzzy, with score)",
		ArgsUsage: "<slug or name>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Usage: "Minimum fuzzy score 0-100 (default from config)"},
		},
		Action: func(c *cli.Context) error {
			svc, err := rt.service()
			if err != nil {
				return outputError(rt, err)
			}

			input := ops.ResolveInput{Query: queryArg(c)}
			if c.IsSet("threshold") {
				t := c.Float64("threshold")
				input.Threshold = &t
			}

			output, err := svc.Resolve(c.Context, input)
			if err != nil {
				return outputError(rt, err)
			}

			return rt.p.Resolve(output)
		},
	}
}

// downloadCmd creates the download command.
func downloadCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download an icon as svg, png, jpg, bmp, ico or icns",
		ArgsUsage: "<slug or name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file or directory (default: <slug>.<ext>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: " + formatList() + " (an output extension wins)"},
			&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "Fill color: hex (RRGGBB, RGB) or a color name"},
			&cli.IntFlag{Name: "size", Aliases: []string{"s"}, Usage: "Raster size in pixels (default from config)"},
			&cli.BoolFlag{Name: "invert", Usage: "Use the complement of the color"},
			&cli.Float64Flag{Name: "opacity", Value: 1.0, Usage: "Opacity 0.0-1.0"},
			&cli.StringFlag{Name: "background", Aliases: []string{"b"}, Usage: "Raster background color (default transparent; white for jpg/bmp)"},
			&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Usage: "Minimum fuzzy score 0-100"},
		},
		Action: func(c *cli.Context) error {
			svc, err := rt.service()
			if err != nil {
				return outputError(rt, err)
			}

			input := ops.DownloadInput{
				Query:      queryArg(c),
				Output:     c.String("output"),
				Format:     c.String("format"),
				Color:      c.String("color"),
				Invert:     c.Bool("invert"),
				Background: c.String("background"),
				Size:       c.Int("size"),
			}
			if c.IsSet("opacity") {
				o := c.Float64("opacity")
				input.Opacity = &o
			}
			if c.IsSet("threshold") {
				t := c.Float64("threshold")
				input.Threshold = &t
			}

			start := time.Now()
			spin := rt.p.Spin(fmt.Sprintf("Downloading %s...", input.Query))
			output, err := svc.Download(c.Context, input)
			spin.Stop()
			if err != nil {
				return outputError(rt, err)
			}

			return rt.p.Download(output, time.Since(start))
		},
	}
}

// historyCmd creates the history command.
func historyCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded downloads, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "slug", Usage: "Only downloads of this slug"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum entries to show"},
			&cli.IntFlag{Name: "offset", Usage: "Entries to skip"},
			&cli.BoolFlag{Name: "clear", Usage: "Remove all recorded downloads"},
		},
		Action: func(c *cli.Context) error {
			svc, err := rt.service()
			if err != nil {
				return outputError(rt, err)
			}

			if c.Bool("clear") {
				output, err := svc.ClearHistory(c.Context)
				if err != nil {
					return outputError(rt, err)
				}
				return rt.p.Cleared(output)
			}

			output, err := svc.History(c.Context, ops.HistoryInput{
				Slug:   c.String("slug"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(rt, err)
			}

			return rt.p.History(output)
		},
	}
}

// Helper functions

// queryArg joins positional arguments so multi-word names need no quoting.
func queryArg(c *cli.Context) string {
	return strings.Join(c.Args().Slice(), " ")
}

func formatList() string {
	formats := render.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// outputError formats error for CLI.
func outputError(rt *runtime, err error) error {
	p := rt.p
	if p == nil {
		p = ui.NewPresenter(rt.out, rt.errOut, false, false)
	}
	return cli.Exit(p.FormatError(err), 1)
}
