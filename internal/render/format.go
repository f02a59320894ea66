// Package render selects output formats and turns vector icon documents
// into output files.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hpungsan/sicon/internal/errors"
)

// Format is an output file format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJPG  Format = "jpg"
	FormatBMP  Format = "bmp"
	FormatICO  Format = "ico"
	FormatICNS Format = "icns"
	FormatPDF  Format = "pdf"
)

// Size limits in pixels.
const (
	MaxSize    = 4096
	MaxICOSize = 256
)

var knownFormats = []Format{FormatSVG, FormatPNG, FormatJPG, FormatBMP, FormatICO, FormatICNS, FormatPDF}

// Formats returns every recognized format.
func Formats() []Format {
	out := make([]Format, len(knownFormats))
	copy(out, knownFormats)
	return out
}

// lookupFormat normalizes s ("PNG", ".jpeg") and reports whether it is known.
func lookupFormat(s string) (Format, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	if s == "jpeg" {
		s = "jpg"
	}
	for _, f := range knownFormats {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f, ok := lookupFormat(s)
	if !ok {
		names := make([]string, len(knownFormats))
		for i, k := range knownFormats {
			names[i] = string(k)
		}
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (supported: %s)", s, strings.Join(names, ", ")))
	}
	return f, nil
}

// FormatFromExt returns the format named by path's extension, if recognized.
func FormatFromExt(path string) (Format, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", false
	}
	return lookupFormat(ext)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	return string(f)
}

// IsRaster reports whether f is produced by rasterizing the vector document.
func (f Format) IsRaster() bool {
	switch f {
	case FormatPNG, FormatJPG, FormatBMP, FormatICO, FormatICNS:
		return true
	}
	return false
}

// IsBundle reports whether f packages several rasters into one file.
func (f Format) IsBundle() bool {
	return f == FormatICNS
}

// Opaque reports whether f cannot carry an alpha channel.
func (f Format) Opaque() bool {
	return f == FormatJPG
}
