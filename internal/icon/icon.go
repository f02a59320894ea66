package icon

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// hexRegex matches a 6-digit hex color without a leading '#'.
var hexRegex = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Icon is one record of the icon catalog.
// Values are treated as immutable once the catalog is built.
type Icon struct {
	// Title is the display name (e.g. "GitHub")
	Title string `json:"title"`

	// Slug is the canonical unique key (e.g. "github")
	Slug string `json:"slug"`

	// Hex is the brand color, exactly 6 hex digits without '#'
	Hex string `json:"hex"`

	// Source is the provenance URL of the artwork
	Source string `json:"source"`

	// Guidelines is an optional brand guidelines URL
	Guidelines string `json:"guidelines,omitempty"`

	// License is optional; upstream encodes it as a bare type or as {type, url}
	License *License `json:"license,omitempty"`

	// Aliases holds alternative names; informational only
	Aliases *Aliases `json:"aliases,omitempty"`
}

// License describes the artwork license.
type License struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Aliases lists other names an icon is known by.
type Aliases struct {
	AKA []string `json:"aka,omitempty"`
	Old []string `json:"old,omitempty"`
}

// UnmarshalJSON accepts either "MIT" or {"type": "MIT", "url": "..."}.
func (l *License) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		l.Type = bare
		l.URL = ""
		return nil
	}

	type plain License
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("license must be a string or an object: %w", err)
	}
	*l = License(obj)
	return nil
}

// Summary is the short form of an icon used by search results.
type Summary struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Hex   string `json:"hex"`
}

// ToSummary returns the summary form of the icon.
func (i Icon) ToSummary() Summary {
	return Summary{Title: i.Title, Slug: i.Slug, Hex: i.Hex}
}

// Validate checks the record invariants: non-empty title and slug, and a
// 6-digit hex color.
func (i Icon) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("icon has an empty title")
	}
	if i.Slug == "" {
		return fmt.Errorf("icon %q has an empty slug", i.Title)
	}
	if !IsHex(i.Hex) {
		return fmt.Errorf("icon %q has invalid hex %q", i.Slug, i.Hex)
	}
	return nil
}

// IsHex reports whether s is exactly 6 hex digits.
func IsHex(s string) bool {
	return hexRegex.MatchString(s)
}
