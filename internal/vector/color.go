package vector

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/icon"
)

// ResolveColor decides the color segment sent to the icon CDN.
//
//   - no color, no invert: ("", false), the provider default is used
//   - invert: complement of the requested color, or of defaultHex when none
//   - color only: the requested color without a leading '#'
func ResolveColor(requested string, invert bool, defaultHex string) (string, bool, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" && !invert {
		return "", false, nil
	}

	base := defaultHex
	if requested != "" {
		hex, err := NormalizeColor(requested)
		if err != nil {
			return "", false, err
		}
		if !invert {
			return hex, true, nil
		}
		base = hex
	}

	inverted, err := Invert(base)
	if err != nil {
		return "", false, err
	}
	return inverted, true, nil
}

// Invert returns the bitwise complement of a 6-digit hex color, uppercase.
func Invert(hex string) (string, error) {
	hex = strings.TrimPrefix(hex, "#")
	if !icon.IsHex(hex) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid hex color %q", hex))
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid hex color %q", hex))
	}
	return fmt.Sprintf("%06X", 0xFFFFFF^v), nil
}

// NormalizeColor converts a user color to 6 hex digits without '#'.
// Six-digit input keeps its case; short hex and color names come back uppercase.
func NormalizeColor(s string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if icon.IsHex(trimmed) {
		return trimmed, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return HexOf(c), nil
}

// ParseColor accepts "RRGGBB", "RGB" (each optionally prefixed by '#') or
// an SVG color keyword such as "white" or "steelblue".
func ParseColor(s string) (color.NRGBA, error) {
	raw := strings.TrimSpace(s)
	hex := strings.TrimPrefix(raw, "#")

	switch {
	case icon.IsHex(hex):
		v, _ := strconv.ParseUint(hex, 16, 32)
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	case len(hex) == 3 && icon.IsHex(strings.Repeat(hex, 2)):
		expanded := string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		v, _ := strconv.ParseUint(expanded, 16, 32)
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	}

	if named, ok := colornames.Map[strings.ToLower(raw)]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: 0xFF}, nil
	}
	return color.NRGBA{}, errors.NewInvalidRequest(fmt.Sprintf("invalid color %q: use RRGGBB, RGB or a color name", s))
}

// HexOf formats c as 6 uppercase hex digits, ignoring alpha.
func HexOf(c color.NRGBA) string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}
