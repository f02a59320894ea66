package resolve

import (
	"math"
	"testing"

	"github.com/hpungsan/sicon/internal/catalog"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/icon"
)

func testCatalog(t *testing.T, slugs ...string) *catalog.Catalog {
	t.Helper()
	icons := make([]icon.Icon, len(slugs))
	for i, s := range slugs {
		icons[i] = icon.Icon{Title: s, Slug: s, Hex: "000000", Source: "https://example.com"}
	}
	cat, err := catalog.New(icons)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"github", "github", 100},
		{"git", "github", 66.67},
		{"abc", "xyz", 0},
		{"", "", 100},
		{"", "abc", 0},
		{"kitten", "sitting", 61.54},
	}

	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("Ratio(%q, %q) = %.2f, want %.2f", tt.a, tt.b, got, tt.want)
		}
		if back := Ratio(tt.b, tt.a); math.Abs(back-got) > 1e-9 {
			t.Errorf("Ratio not symmetric for %q/%q: %v vs %v", tt.a, tt.b, got, back)
		}
	}
}

func TestResolve_ExactIgnoresThreshold(t *testing.T) {
	cat := testCatalog(t, "github", "gitlab", "twitter")

	for _, threshold := range []float64{0, 60, 100, 1000} {
		m, err := Resolve("gitlab", cat, threshold)
		if err != nil {
			t.Fatalf("Resolve(threshold=%v) error = %v", threshold, err)
		}
		if !m.Exact || m.Score != ExactScore || m.Icon.Slug != "gitlab" {
			t.Errorf("Resolve(threshold=%v) = %+v, want exact gitlab", threshold, m)
		}
	}
}

func TestResolve_FuzzyPrefix(t *testing.T) {
	cat := testCatalog(t, "github", "twitter", "python")

	m, err := Resolve("git", cat, DefaultThreshold)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Icon.Slug != "github" {
		t.Errorf("Resolve(git) = %q, want github", m.Icon.Slug)
	}
	if m.Exact {
		t.Error("expected fuzzy match")
	}
	if m.Score < DefaultThreshold || m.Score >= 100 {
		t.Errorf("Score = %v, want in [60, 100)", m.Score)
	}
}

func TestResolve_CaseAndWhitespace(t *testing.T) {
	cat := testCatalog(t, "github", "twitter")

	m, err := Resolve("  GitHub ", cat, DefaultThreshold)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Icon.Slug != "github" || m.Exact {
		t.Errorf("Resolve() = %+v, want fuzzy github", m)
	}
	if m.Score != 100 {
		t.Errorf("Score = %v, want 100 after normalization", m.Score)
	}
}

func TestResolve_TieBreakSmallestSlug(t *testing.T) {
	// "git" scores 66.67 against both
	cat := testCatalog(t, "gitlab", "github")

	m, err := Resolve("git", cat, DefaultThreshold)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Icon.Slug != "github" {
		t.Errorf("tie-break = %q, want github", m.Icon.Slug)
	}
}

func TestResolve_BelowThreshold(t *testing.T) {
	cat := testCatalog(t, "github", "twitter")

	_, err := Resolve("zzzzzz", cat, DefaultThreshold)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolve_EmptyCatalog(t *testing.T) {
	_, err := Resolve("github", testCatalog(t), 0)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	cat := testCatalog(t, "github")

	for _, q := range []string{"", "   "} {
		_, err := Resolve(q, cat, DefaultThreshold)
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("Resolve(%q) expected INVALID_REQUEST, got %v", q, err)
		}
	}
}
