package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/icon"
	"github.com/hpungsan/sicon/internal/vector"
)

// Options are the raw, unvalidated inputs for a Request.
type Options struct {
	Slug       string
	Color      string // final hex for the CDN color segment, "" for the provider default
	Invert     bool
	Opacity    float64
	Background string // color name or hex, "" for none
	Format     Format
	Size       int
	Target     string
}

// Request is a validated render request. Build it with NewRequest and
// treat it as read-only afterwards.
type Request struct {
	Slug       string
	Color      string
	Invert     bool
	Opacity    float64
	Background *color.NRGBA
	Format     Format
	Size       int
	Target     string
}

// NewRequest validates o and returns the request.
func NewRequest(o Options) (Request, error) {
	if strings.TrimSpace(o.Slug) == "" {
		return Request{}, errors.NewInvalidRequest("slug is required")
	}
	if f, ok := lookupFormat(string(o.Format)); !ok || f != o.Format {
		return Request{}, errors.NewInvalidRequest(fmt.Sprintf("unknown format %q", o.Format))
	}
	if o.Target == "" {
		return Request{}, errors.NewInvalidRequest("target path is required")
	}
	if math.IsNaN(o.Opacity) || !inRange(o.Opacity, 0, 1) {
		return Request{}, errors.NewInvalidRequest(fmt.Sprintf("opacity must be between 0.0 and 1.0, got %v", o.Opacity))
	}
	if o.Color != "" && !icon.IsHex(o.Color) {
		return Request{}, errors.NewInvalidRequest(fmt.Sprintf("color must be 6 hex digits, got %q", o.Color))
	}

	if o.Format.IsRaster() && !o.Format.IsBundle() {
		if !inRange(o.Size, 1, MaxSize) {
			return Request{}, errors.NewInvalidRequest(fmt.Sprintf("size must be between 1 and %d, got %d", MaxSize, o.Size))
		}
		if o.Format == FormatICO && o.Size > MaxICOSize {
			return Request{}, errors.NewInvalidRequest(fmt.Sprintf("ico size must be at most %d, got %d", MaxICOSize, o.Size))
		}
	}

	req := Request{
		Slug:    o.Slug,
		Color:   o.Color,
		Invert:  o.Invert,
		Opacity: o.Opacity,
		Format:  o.Format,
		Size:    o.Size,
		Target:  o.Target,
	}

	if bg := strings.TrimSpace(o.Background); bg != "" {
		if o.Format == FormatSVG {
			return Request{}, errors.NewInvalidRequest("background requires a raster format; svg output keeps transparency")
		}
		c, err := vector.ParseColor(bg)
		if err != nil {
			return Request{}, err
		}
		req.Background = &c
	}

	return req, nil
}

// Flattened reports whether rasters are composited onto an opaque background.
func (r Request) Flattened() bool {
	return r.Background != nil || r.Format.Opaque()
}

// BackgroundColor returns the compositing color; white for opaque formats
// without an explicit background.
func (r Request) BackgroundColor() color.NRGBA {
	if r.Background != nil {
		return *r.Background
	}
	return color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
}

func inRange[T constraints.Integer | constraints.Float](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
