package render

import (
	"os/exec"

	"github.com/hpungsan/sicon/internal/errors"
)

// Capability records what this process can produce.
// It is detected once at startup and passed to Policy and Exporter.
type Capability struct {
	// Raster is true when raster formats can be rendered.
	Raster bool

	// Packager merges an iconset into a bundle; nil when none is installed.
	Packager Packager
}

// DetectCapability probes the environment. Rasterization is built in;
// the bundle packager is available when packagerCommand is on PATH.
func DetectCapability(packagerCommand string) Capability {
	c := Capability{Raster: true}
	if packagerCommand == "" {
		return c
	}
	if path, err := exec.LookPath(packagerCommand); err == nil {
		c.Packager = &CommandPackager{Command: path}
	}
	return c
}

// Check returns a CapabilityUnavailable error when f cannot be produced.
func (c Capability) Check(f Format) error {
	switch {
	case f == FormatSVG:
		return nil
	case f == FormatPDF:
		return errors.NewCapabilityUnavailable(string(f),
			"PDF output is not supported; download svg and convert it with a vector tool such as rsvg-convert or inkscape")
	case f.IsRaster() && !c.Raster:
		return errors.NewCapabilityUnavailable(string(f),
			"raster rendering is disabled; download svg instead")
	case f.IsBundle() && c.Packager == nil:
		return errors.NewCapabilityUnavailable(string(f),
			"icns bundles need iconutil (macOS); set packager_command or SICON_PACKAGER to a tool that accepts `-c icns <iconset> -o <file>`")
	}
	return nil
}
