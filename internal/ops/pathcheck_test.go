package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/sicon/internal/errors"
)

func TestValidateOutputPath_TraversalRejected(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../github.svg"},
		{"deep traversal", "../../etc/github.svg"},
		{"mid-path traversal", filepath.Join(dir, "..", "github.svg")},
		{"forward slash traversal", "icons/../../github.svg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOutputPath(tc.path, []string{dir})
			if err == nil {
				t.Fatal("expected error for path traversal, got nil")
			}
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidateOutputPath_AllowedDirs(t *testing.T) {
	allowed := t.TempDir()
	other := t.TempDir()
	nested := filepath.Join(allowed, "brand", "icons")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"directly inside", filepath.Join(allowed, "github.svg"), false},
		{"nested existing dir", filepath.Join(nested, "github.png"), false},
		{"nested missing dir", filepath.Join(allowed, "new", "github.png"), false},
		{"outside", filepath.Join(other, "github.svg"), true},
		{"sibling prefix", allowed + "-evil" + string(filepath.Separator) + "github.svg", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOutputPath(tc.path, []string{allowed})
			if tc.wantErr {
				if !errors.Is(err, errors.ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateOutputPath_MultipleDirs(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	if err := ValidateOutputPath(filepath.Join(second, "x.svg"), []string{"", first, second}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateOutputPath_Empty(t *testing.T) {
	err := ValidateOutputPath("", []string{t.TempDir()})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidateOutputPath_SymlinkRejected(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(allowed, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	// The symlinked dir resolves outside the allowed dir
	err := ValidateOutputPath(filepath.Join(link, "github.svg"), []string{allowed})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlinked dir, got: %v", err)
	}

	target := filepath.Join(outside, "real.svg")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	fileLink := filepath.Join(allowed, "github.svg")
	if err := os.Symlink(target, fileLink); err != nil {
		t.Fatal(err)
	}
	err = ValidateOutputPath(fileLink, []string{allowed})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for symlinked target, got: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"icons/github.svg", false},
		{"..hidden/github.svg", false},
		{"github..svg", false},
		{"../github.svg", true},
		{"icons/../github.svg", true},
		{"..", true},
	}

	for _, tc := range tests {
		if got := containsTraversal(tc.path); got != tc.want {
			t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestCheckOutputPath_Unrestricted(t *testing.T) {
	s := &Service{}
	if err := s.checkOutputPath("../anywhere.svg"); err != nil {
		t.Errorf("unrestricted service rejected path: %v", err)
	}
}
