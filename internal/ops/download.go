package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/hpungsan/sicon/internal/db"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/render"
	"github.com/hpungsan/sicon/internal/vector"
)

// DownloadInput contains parameters for the Download operation.
type DownloadInput struct {
	Query      string   // required
	Output     string   // optional file or directory
	Format     string   // optional; output extension wins
	Color      string   // optional hex or color name
	Invert     bool     // complement the color
	Opacity    *float64 // optional, default 1.0
	Background string   // optional raster background
	Size       int      // optional raster size
	Threshold  *float64 // optional fuzzy threshold override
}

// DownloadOutput describes the written artifact.
type DownloadOutput struct {
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Match     MatchInfo     `json:"match"`
	URL       string        `json:"url"`
	Color     string        `json:"color,omitempty"`
	Opacity   float64       `json:"opacity"`
	Path      string        `json:"path"`
	Format    render.Format `json:"format"`
	Bytes     int64         `json:"bytes"`
	Width     int           `json:"width,omitempty"`
	Height    int           `json:"height,omitempty"`
	HistoryID string        `json:"history_id,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// Download resolves the query, fetches the icon and writes it in the
// chosen format. Format, capability and flag problems are reported
// before any network I/O.
func (s *Service) Download(ctx context.Context, input DownloadInput) (*DownloadOutput, error) {
	if err := validateQuery(input.Query); err != nil {
		return nil, err
	}

	format, err := s.Policy.Decide(input.Format, input.Output)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Check(format); err != nil {
		return nil, err
	}

	size := input.Size
	if size == 0 {
		size = s.DefaultSize
	}
	opacity := 1.0
	if input.Opacity != nil {
		opacity = *input.Opacity
	}
	if input.Color != "" {
		if _, err := vector.NormalizeColor(input.Color); err != nil {
			return nil, err
		}
	}

	// Validate flags against a provisional target before touching the network
	opts := render.Options{
		Slug:       input.Query,
		Opacity:    opacity,
		Background: input.Background,
		Format:     format,
		Size:       size,
		Target:     render.TargetPath("icon", format, input.Output),
	}
	if _, err := render.NewRequest(opts); err != nil {
		return nil, err
	}
	if err := s.checkOutputPath(opts.Target); err != nil {
		return nil, err
	}

	m, _, err := s.resolveQuery(ctx, input.Query, input.Threshold)
	if err != nil {
		return nil, err
	}
	ic := m.Icon

	hex, _, err := vector.ResolveColor(input.Color, input.Invert, ic.Hex)
	if err != nil {
		return nil, err
	}

	opts.Slug = ic.Slug
	opts.Color = hex
	opts.Invert = input.Invert
	opts.Target = render.TargetPath(ic.Slug, format, input.Output)
	if err := s.checkOutputPath(opts.Target); err != nil {
		return nil, err
	}
	req, err := render.NewRequest(opts)
	if err != nil {
		return nil, err
	}

	doc, err := s.Icons.FetchSVG(ctx, req.Slug, req.Color)
	if err != nil {
		return nil, err
	}

	doc, err = vector.ApplyOpacity(doc, req.Opacity)
	if err != nil {
		return nil, err
	}

	art, err := s.Exporter.Export(ctx, doc, req)
	if err != nil {
		return nil, err
	}

	out := &DownloadOutput{
		Slug:    ic.Slug,
		Title:   ic.Title,
		Match:   MatchInfo{Query: input.Query, Exact: m.Exact, Score: m.Score},
		URL:     s.Icons.IconURL(req.Slug, req.Color),
		Color:   req.Color,
		Opacity: req.Opacity,
		Path:    art.Path,
		Format:  art.Format,
		Bytes:   art.Bytes,
		Width:   art.Width,
		Height:  art.Height,
	}

	if s.Ledger != nil {
		id, err := s.record(ctx, input.Query, out, req)
		if err != nil {
			// The file is written; a ledger failure only warns
			out.Warnings = append(out.Warnings, fmt.Sprintf("history not recorded: %v", err))
		} else {
			out.HistoryID = id
		}
	}

	return out, nil
}

func (s *Service) record(ctx context.Context, query string, out *DownloadOutput, req render.Request) (string, error) {
	id, err := generateULID()
	if err != nil {
		return "", errors.NewInternal(err)
	}

	var color *string
	if req.Color != "" {
		c := req.Color
		color = &c
	}

	size := req.Size
	if !req.Format.IsRaster() {
		size = 0
	} else if req.Format.IsBundle() {
		size = out.Width
	}

	err = db.Insert(ctx, s.Ledger, &db.Download{
		ID:        id,
		Query:     query,
		Slug:      out.Slug,
		Title:     out.Title,
		Format:    string(out.Format),
		Path:      out.Path,
		Color:     color,
		Size:      size,
		Bytes:     out.Bytes,
		Exact:     out.Match.Exact,
		Score:     out.Match.Score,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
