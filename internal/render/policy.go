package render

import (
	"os"
	"path/filepath"
)

// Policy chooses the output format and target path for a download.
type Policy struct {
	Capability Capability

	// Default is used when neither the flag nor the output extension picks a format.
	Default Format
}

// NewPolicy creates a Policy, parsing defaultFormat.
func NewPolicy(c Capability, defaultFormat string) (*Policy, error) {
	def := FormatSVG
	if defaultFormat != "" {
		f, err := ParseFormat(defaultFormat)
		if err != nil {
			return nil, err
		}
		def = f
	}
	return &Policy{Capability: c, Default: def}, nil
}

// Decide picks the output format. A recognized extension on an output path
// that is not an existing directory wins over the explicit format.
func (p *Policy) Decide(explicit, output string) (Format, error) {
	if output != "" && !isDir(output) {
		if f, ok := FormatFromExt(output); ok {
			return f, nil
		}
	}
	if explicit != "" {
		return ParseFormat(explicit)
	}
	return p.Default, nil
}

// Check reports whether f can be produced in this environment.
func (p *Policy) Check(f Format) error {
	return p.Capability.Check(f)
}

// TargetPath returns where the artifact for slug is written:
//   - no output: <slug>.<ext> in the working directory
//   - existing directory: <dir>/<slug>.<ext>
//   - otherwise: output as given
func TargetPath(slug string, f Format, output string) string {
	name := slug + "." + f.Ext()
	switch {
	case output == "":
		return name
	case isDir(output):
		return filepath.Join(output, name)
	default:
		return output
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
