package ops

import (
	"context"
)

// ResolveInput contains parameters for the Resolve operation.
type ResolveInput struct {
	Query     string
	Threshold *float64 // optional override of the configured threshold
}

// ResolveOutput reports which icon a query maps to.
type ResolveOutput struct {
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
	Hex   string    `json:"hex"`
	Match MatchInfo `json:"match"`
}

// Resolve maps a query to one icon without downloading anything.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	m, _, err := s.resolveQuery(ctx, input.Query, input.Threshold)
	if err != nil {
		return nil, err
	}
	return &ResolveOutput{
		Slug:  m.Icon.Slug,
		Title: m.Icon.Title,
		Hex:   m.Icon.Hex,
		Match: MatchInfo{Query: input.Query, Exact: m.Exact, Score: m.Score},
	}, nil
}
