package ops

import (
	"context"

	"github.com/hpungsan/sicon/internal/db"
	"github.com/hpungsan/sicon/internal/errors"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Slug   string // optional filter
	Limit  int    // default: 20, max: 100
	Offset int
}

// HistoryOutput lists recorded downloads, newest first.
type HistoryOutput struct {
	Items      []db.Download `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// ClearHistoryOutput reports how many entries were removed.
type ClearHistoryOutput struct {
	Removed int64 `json:"removed"`
}

// History lists past downloads.
func (s *Service) History(ctx context.Context, input HistoryInput) (*HistoryOutput, error) {
	if s.Ledger == nil {
		return nil, errors.NewInvalidRequest("download history is disabled")
	}
	if input.Offset < 0 {
		return nil, errors.NewInvalidRequest("offset must not be negative")
	}
	limit := clampLimit(input.Limit, DefaultHistoryLimit, MaxHistoryLimit)

	items, total, err := db.List(ctx, s.Ledger, db.ListFilter{Slug: input.Slug, Limit: limit, Offset: input.Offset})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []db.Download{}
	}

	return &HistoryOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  input.Offset,
			HasMore: input.Offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

// ClearHistory removes every recorded download.
func (s *Service) ClearHistory(ctx context.Context) (*ClearHistoryOutput, error) {
	if s.Ledger == nil {
		return nil, errors.NewInvalidRequest("download history is disabled")
	}
	n, err := db.Clear(ctx, s.Ledger)
	if err != nil {
		return nil, err
	}
	return &ClearHistoryOutput{Removed: n}, nil
}
