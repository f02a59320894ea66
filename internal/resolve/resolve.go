// Package resolve maps a free-form query to exactly one catalog record.
package resolve

import (
	"strings"

	"github.com/hpungsan/sicon/internal/catalog"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/icon"
)

// DefaultThreshold is the minimum fuzzy score accepted when none is configured.
const DefaultThreshold = 60

// ExactScore is reported for exact slug matches.
const ExactScore = 100.0

// Match is the outcome of resolving a query.
type Match struct {
	Icon  icon.Icon `json:"icon"`
	Exact bool      `json:"exact"`
	Score float64   `json:"score"`
}

// Resolve returns the record whose slug equals query, or otherwise the slug
// most similar to the trimmed, lowercased query with a score of at least
// threshold. Equal scores go to the lexicographically smallest slug.
func Resolve(query string, cat *catalog.Catalog, threshold float64) (*Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.NewInvalidRequest("query must not be empty")
	}

	if ic, ok := cat.Get(query); ok {
		return &Match{Icon: ic, Exact: true, Score: ExactScore}, nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var (
		best      icon.Icon
		bestScore = -1.0
	)
	for _, ic := range cat.Icons() {
		score := Ratio(q, ic.Slug)
		if score > bestScore || (score == bestScore && ic.Slug < best.Slug) {
			best, bestScore = ic, score
		}
	}

	if bestScore < 0 || bestScore < threshold {
		return nil, errors.NewNotFound(query)
	}
	return &Match{Icon: best, Exact: false, Score: bestScore}, nil
}
