package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Packager merges a staged iconset directory into one bundle file.
type Packager interface {
	Package(ctx context.Context, stagingDir, target string) error
}

// CommandPackager runs an iconutil-compatible command:
//
//	<Command> -c icns <stagingDir> -o <target>
type CommandPackager struct {
	Command string
}

// Package runs the command and reports its stderr on failure.
func (p *CommandPackager) Package(ctx context.Context, stagingDir, target string) error {
	cmd := exec.CommandContext(ctx, p.Command, "-c", "icns", stagingDir, "-o", target)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", p.Command, err, msg)
		}
		return fmt.Errorf("%s: %w", p.Command, err)
	}
	return nil
}

// IconsetEntry is one image in a bundle ladder.
type IconsetEntry struct {
	Name   string
	Pixels int
}

// iconsetBaseSizes are the logical sizes of the icns ladder.
var iconsetBaseSizes = []int{16, 32, 128, 256, 512}

// IconsetEntries returns the ladder: each base size at 1x and 2x.
func IconsetEntries() []IconsetEntry {
	entries := make([]IconsetEntry, 0, 2*len(iconsetBaseSizes))
	for _, n := range iconsetBaseSizes {
		entries = append(entries,
			IconsetEntry{Name: fmt.Sprintf("icon_%dx%d.png", n, n), Pixels: n},
			IconsetEntry{Name: fmt.Sprintf("icon_%dx%d@2x.png", n, n), Pixels: 2 * n},
		)
	}
	return entries
}
