package ops

import (
	"context"

	"github.com/hpungsan/sicon/internal/icon"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string // required
	Limit int    // default: 25, max: 500
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Query     string         `json:"query"`
	Items     []icon.Summary `json:"items"`
	Total     int            `json:"total"`
	Remaining int            `json:"remaining"`
	FromCache bool           `json:"from_cache"`
}

// Search lists icons whose title or slug contains the query, in catalog order.
// No matches is an empty result, not an error.
func (s *Service) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	if err := validateQuery(input.Query); err != nil {
		return nil, err
	}
	limit := clampLimit(input.Limit, DefaultSearchLimit, MaxSearchLimit)

	cat, info, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	matches := cat.Search(input.Query)
	shown := matches
	if len(shown) > limit {
		shown = shown[:limit]
	}

	items := make([]icon.Summary, len(shown))
	for i, ic := range shown {
		items[i] = ic.ToSummary()
	}

	return &SearchOutput{
		Query:     input.Query,
		Items:     items,
		Total:     len(matches),
		Remaining: len(matches) - len(items),
		FromCache: info.FromCache,
	}, nil
}
