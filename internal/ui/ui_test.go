package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/sicon/internal/db"
	"github.com/hpungsan/sicon/internal/errors"
	"github.com/hpungsan/sicon/internal/icon"
	"github.com/hpungsan/sicon/internal/ops"
	"github.com/hpungsan/sicon/internal/render"
)

func newTestPresenter(quiet, jsonMode bool) (*Presenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewPresenter(&out, &errOut, quiet, jsonMode), &out, &errOut
}

func TestNewPresenter_NoColorForBuffers(t *testing.T) {
	p, _, _ := newTestPresenter(false, false)
	require.False(t, p.Color)
	require.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestSearch(t *testing.T) {
	res := &ops.SearchOutput{
		Query: "git",
		Items: []icon.Summary{
			{Title: "GitHub", Slug: "github", Hex: "181717"},
			{Title: "GitLab", Slug: "gitlab", Hex: "FC6D26"},
		},
		Total:     30,
		Remaining: 28,
	}

	p, out, _ := newTestPresenter(false, false)
	require.NoError(t, p.Search(res))
	text := out.String()
	require.Contains(t, text, `Search results for "git"`)
	require.Contains(t, text, "TITLE")
	require.Contains(t, text, "#FC6D26")
	require.Contains(t, text, "...and 28 more")
	require.NotContains(t, text, "\x1b[")

	p, out, _ = newTestPresenter(true, false)
	require.NoError(t, p.Search(res))
	require.Equal(t, "github\ngitlab\n", out.String())

	p, out, _ = newTestPresenter(false, false)
	require.NoError(t, p.Search(&ops.SearchOutput{Query: "zzz"}))
	require.Contains(t, out.String(), `No icons found for "zzz"`)
}

func TestSearch_JSON(t *testing.T) {
	p, out, _ := newTestPresenter(false, true)
	require.NoError(t, p.Search(&ops.SearchOutput{Query: "go", Items: []icon.Summary{{Title: "Go", Slug: "go", Hex: "00ADD8"}}, Total: 1}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, "go", decoded["query"])
	require.Equal(t, float64(1), decoded["total"])
}

func TestInfo(t *testing.T) {
	res := &ops.InfoOutput{
		Icon: icon.Icon{
			Title:      "GitLab",
			Slug:       "gitlab",
			Hex:        "FC6D26",
			Source:     "https://about.gitlab.com/press/",
			Guidelines: "https://design.gitlab.com",
			License:    &icon.License{Type: "MIT"},
		},
		Match: ops.MatchInfo{Query: "gtlab", Exact: false, Score: 90.909},
	}

	p, out, errOut := newTestPresenter(false, false)
	require.NoError(t, p.Info(res))
	text := out.String()
	require.True(t, strings.HasPrefix(text, "GitLab\n"))
	require.Contains(t, text, "Slug: gitlab")
	require.Contains(t, text, "Hex: #FC6D26")
	require.Contains(t, text, "Guidelines: https://design.gitlab.com")
	require.Contains(t, text, "License: MIT (N/A)")
	require.Contains(t, errOut.String(), "score 90.9")
}

func TestResolve(t *testing.T) {
	res := &ops.ResolveOutput{Slug: "github", Title: "GitHub", Match: ops.MatchInfo{Query: "git", Score: 66.666}}

	p, out, _ := newTestPresenter(false, false)
	require.NoError(t, p.Resolve(res))
	require.Equal(t, "git -> github (fuzzy, score 66.7) GitHub\n", out.String())

	p, out, _ = newTestPresenter(true, false)
	require.NoError(t, p.Resolve(res))
	require.Equal(t, "github\n", out.String())
}

func TestDownload(t *testing.T) {
	res := &ops.DownloadOutput{
		Slug:     "github",
		Title:    "GitHub",
		Match:    ops.MatchInfo{Query: "github", Exact: true, Score: 100},
		Path:     "/tmp/github.png",
		Format:   render.FormatPNG,
		Bytes:    2048,
		Width:    256,
		Height:   256,
		Warnings: []string{"history not recorded: disk full"},
	}

	p, out, errOut := newTestPresenter(false, false)
	require.NoError(t, p.Download(res, 1500*time.Millisecond))
	require.Equal(t, "Saved GitHub to /tmp/github.png (png, 256x256, 2.0 KB, 1.50s)\n", out.String())
	require.Contains(t, errOut.String(), "warning: history not recorded")

	p, out, errOut = newTestPresenter(true, false)
	require.NoError(t, p.Download(res, time.Second))
	require.Equal(t, "/tmp/github.png\n", out.String())
	require.Contains(t, errOut.String(), "warning:")
}

func TestHistory(t *testing.T) {
	res := &ops.HistoryOutput{
		Items: []db.Download{
			{ID: "01A", Slug: "github", Format: "png", Size: 64, Path: "/tmp/github.png", CreatedAt: 1700000000},
			{ID: "01B", Slug: "go", Format: "svg", Path: "/tmp/go.svg", CreatedAt: 1700000100},
		},
		Pagination: ops.Pagination{Limit: 2, Total: 5, HasMore: true},
	}

	p, out, _ := newTestPresenter(false, false)
	require.NoError(t, p.History(res))
	text := out.String()
	require.Contains(t, text, "WHEN")
	require.Contains(t, text, "64px")
	require.Contains(t, text, "showing 2 of 5")

	p, out, _ = newTestPresenter(true, false)
	require.NoError(t, p.History(res))
	require.Equal(t, "/tmp/github.png\n/tmp/go.svg\n", out.String())

	p, out, _ = newTestPresenter(false, false)
	require.NoError(t, p.History(&ops.HistoryOutput{}))
	require.Equal(t, "No downloads recorded.\n", out.String())
}

func TestNote_SuppressedWhenQuiet(t *testing.T) {
	p, _, errOut := newTestPresenter(true, false)
	p.Note("catalog from cache")
	require.Empty(t, errOut.String())

	p, _, errOut = newTestPresenter(false, false)
	p.Note("catalog from %s", "cache")
	require.Equal(t, "catalog from cache\n", errOut.String())
}

func TestFormatError(t *testing.T) {
	p, _, _ := newTestPresenter(false, false)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", fmt.Errorf("boom"), "boom"},
		{"structured", errors.NewNotFound("gthub"), `[NOT_FOUND] no icon matches "gthub"`},
		{"with hint", errors.NewCapabilityUnavailable("icns", "install iconutil"), "[CAPABILITY_UNAVAILABLE] icns output is not available in this environment\nhint: install iconutil"},
		{"wrapped", fmt.Errorf("download: %w", errors.NewInvalidRequest("bad size")), "[INVALID_REQUEST] download: bad size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, p.FormatError(tc.err))
		})
	}
}

func TestPaint_HonorsPresenterColor(t *testing.T) {
	p := &Presenter{Color: true}
	require.Contains(t, p.paint(color.FgRed).Sprint("x"), "\x1b[")

	p.Color = false
	require.Equal(t, "x", p.paint(color.FgRed).Sprint("x"))
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching", time.Millisecond, nil)
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	require.Contains(t, buf.String(), "Fetching")

	// Nothing is drawn after Stop returns
	n := buf.Len()
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, n, buf.Len())

	// Second Stop and the zero value are no-ops
	s.Stop()
	var zero Spinner
	zero.Start()
	zero.Stop()
}

func TestSpin_InertWhenNotTerminal(t *testing.T) {
	p, _, errOut := newTestPresenter(false, false)
	s := p.Spin("Downloading")
	s.Stop()
	require.Empty(t, errOut.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m 30.00s"},
		{2*time.Hour + 5*time.Minute, "2h 5m 0.00s"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KB"},
		{2 << 20, "2.0 MB"},
	}
	for _, tc := range tests {
		if got := FormatBytes(tc.n); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestFormatScore(t *testing.T) {
	require.Equal(t, "100", FormatScore(100))
	require.Equal(t, "66.7", FormatScore(200.0/3))
}
