// Package ops implements the user-facing operations shared by the CLI and
// the MCP server.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/sicon/internal/catalog"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/render"
	"github.com/hpungsan/sicon/internal/resolve"
)

// Result limits
const (
	DefaultSearchLimit  = 25
	MaxSearchLimit      = 500
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
	MaxQueryLength      = 200
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// CatalogLoader provides the icon catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, catalog.LoadInfo, error)
}

// IconFetcher retrieves vector documents from the icon CDN.
type IconFetcher interface {
	FetchSVG(ctx context.Context, slug, hex string) ([]byte, error)
	IconURL(slug, hex string) string
}

// Service wires the collaborators every operation needs.
type Service struct {
	Catalog  CatalogLoader
	Icons    IconFetcher
	Policy   *render.Policy
	Exporter *render.Exporter

	// Ledger records downloads; nil disables history.
	Ledger *sql.DB

	// Threshold is the minimum fuzzy score (0-100).
	Threshold float64

	// DefaultSize is the raster size used when a request gives none.
	DefaultSize int

	// OutputDirs restricts where downloads may be written; nil allows any path.
	OutputDirs []string
}

// MatchInfo reports how a query was resolved.
type MatchInfo struct {
	Query string  `json:"query"`
	Exact bool    `json:"exact"`
	Score float64 `json:"score"`
}

// loadCatalog loads the catalog and maps plain failures to internal errors.
func (s *Service) loadCatalog(ctx context.Context) (*catalog.Catalog, catalog.LoadInfo, error) {
	cat, info, err := s.Catalog.Load(ctx)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, info, err
		}
		return nil, info, errors.NewInternal(fmt.Errorf("load catalog: %w", err))
	}
	return cat, info, nil
}

// resolveQuery validates query and resolves it against the catalog.
func (s *Service) resolveQuery(ctx context.Context, query string, threshold *float64) (*resolve.Match, catalog.LoadInfo, error) {
	if err := validateQuery(query); err != nil {
		return nil, catalog.LoadInfo{}, err
	}
	cat, info, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, info, err
	}

	t := s.Threshold
	if threshold != nil {
		t = *threshold
	}
	if t < 0 || t > 100 {
		return nil, info, errors.NewInvalidRequest(fmt.Sprintf("threshold must be between 0 and 100, got %v", t))
	}

	m, err := resolve.Resolve(query, cat, t)
	if err != nil {
		return nil, info, err
	}
	return m, info, nil
}

func validateQuery(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return errors.NewInvalidRequest("query is required")
	}
	if len([]rune(q)) > MaxQueryLength {
		return errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}
	return nil
}

// clampLimit applies the default and upper bound to a requested limit.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
