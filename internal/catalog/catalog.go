// Package catalog holds the icon catalog and its read-through disk cache.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/sicon/internal/icon"
)

// Catalog is the ordered, read-only list of icon records with a slug index.
type Catalog struct {
	icons  []icon.Icon
	bySlug map[string]int
}

// New builds a catalog from records in catalog order.
// Every record must validate and slugs must be unique.
func New(icons []icon.Icon) (*Catalog, error) {
	c := &Catalog{
		icons:  make([]icon.Icon, len(icons)),
		bySlug: make(map[string]int, len(icons)),
	}
	copy(c.icons, icons)

	for i, ic := range c.icons {
		if err := ic.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, dup := c.bySlug[ic.Slug]; dup {
			return nil, fmt.Errorf("record %d: duplicate slug %q (first seen at record %d)", i, ic.Slug, prev)
		}
		c.bySlug[ic.Slug] = i
	}
	return c, nil
}

// Decode parses a catalog document.
// Accepts a bare JSON array of records or the legacy {"icons": [...]} envelope.
// Records without a slug get the one derived from their title.
func Decode(data []byte) (*Catalog, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty catalog document")
	}

	var icons []icon.Icon
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &icons); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	case '{':
		var envelope struct {
			Icons []icon.Icon `json:"icons"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		if envelope.Icons == nil {
			return nil, fmt.Errorf("decode catalog: missing icons array")
		}
		icons = envelope.Icons
	default:
		return nil, fmt.Errorf("decode catalog: unexpected leading byte %q", data[0])
	}

	for i := range icons {
		if icons[i].Slug == "" {
			icons[i].Slug = icon.TitleToSlug(icons[i].Title)
		}
	}
	return New(icons)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.icons)
}

// Get returns the record whose slug equals slug exactly.
func (c *Catalog) Get(slug string) (icon.Icon, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return icon.Icon{}, false
	}
	return c.icons[i], true
}

// Slugs returns every slug in catalog order.
func (c *Catalog) Slugs() []string {
	slugs := make([]string, len(c.icons))
	for i, ic := range c.icons {
		slugs[i] = ic.Slug
	}
	return slugs
}

// Icons returns a copy of every record in catalog order.
func (c *Catalog) Icons() []icon.Icon {
	out := make([]icon.Icon, len(c.icons))
	copy(out, c.icons)
	return out
}

// Search returns records whose title or slug contains query,
// case-insensitively, in catalog order.
func (c *Catalog) Search(query string) []icon.Icon {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []icon.Icon
	for _, ic := range c.icons {
		if strings.Contains(strings.ToLower(ic.Title), q) || strings.Contains(strings.ToLower(ic.Slug), q) {
			out = append(out, ic)
		}
	}
	return out
}
