package ops

import (
	"context"

	"github.com/hpungsan/sicon/internal/icon"
)

// InfoInput contains parameters for the Info operation.
type InfoInput struct {
	Query string // slug or approximate name
}

// InfoOutput is the full record of the resolved icon.
type InfoOutput struct {
	icon.Icon
	Match MatchInfo `json:"match"`
	URL   string    `json:"url"`
}

// Info resolves the query and returns the full icon record.
func (s *Service) Info(ctx context.Context, input InfoInput) (*InfoOutput, error) {
	m, _, err := s.resolveQuery(ctx, input.Query, nil)
	if err != nil {
		return nil, err
	}

	out := &InfoOutput{
		Icon:  m.Icon,
		Match: MatchInfo{Query: input.Query, Exact: m.Exact, Score: m.Score},
	}
	if s.Icons != nil {
		out.URL = s.Icons.IconURL(m.Icon.Slug, "")
	}
	return out, nil
}
