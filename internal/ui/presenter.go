// Package ui formats operation results for the terminal.
//
// Core packages return structured values; only this package decides how
// they look. Quiet and JSON modes are fields on the Presenter, set once by
// the command surface.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/hpungsan/sicon/internal/errors"
)

// SpinnerDelay is the frame interval of progress spinners.
const SpinnerDelay = 80 * time.Millisecond

// Presenter writes results to Out and diagnostics to Err.
type Presenter struct {
	Out io.Writer
	Err io.Writer

	// Quiet prints only the essential value of each result (a slug, a path)
	// and suppresses spinners and notes.
	Quiet bool

	// JSON prints every result as indented JSON on Out.
	JSON bool

	// Color enables ANSI styling.
	Color bool
}

// NewPresenter creates a Presenter. Color is enabled when out is a terminal
// and NO_COLOR is not set.
func NewPresenter(out, errOut io.Writer, quiet, jsonMode bool) *Presenter {
	return &Presenter{
		Out:   out,
		Err:   errOut,
		Quiet: quiet,
		JSON:  jsonMode,
		Color: !color.NoColor && IsTerminal(out),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// paint returns a color that honors p.Color regardless of the global setting.
func (p *Presenter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// WriteJSON encodes v as indented JSON on Out.
func (p *Presenter) WriteJSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Note prints an informational line on Err. Suppressed in quiet and JSON modes.
func (p *Presenter) Note(format string, args ...any) {
	if p.Quiet || p.JSON {
		return
	}
	fmt.Fprintln(p.Err, p.paint(color.Faint).Sprintf(format, args...))
}

// Warn prints a warning on Err. Never suppressed.
func (p *Presenter) Warn(format string, args ...any) {
	fmt.Fprintln(p.Err, p.paint(color.FgYellow).Sprint("warning: ")+fmt.Sprintf(format, args...))
}

// FormatError renders err as "[CODE] message", followed by a hint line when
// the error carries one.
func (p *Presenter) FormatError(err error) string {
	sErr, ok := errors.As(err)
	if !ok {
		return err.Error()
	}
	// Wrapping context stays; the code prefix appears once
	text := strings.Replace(err.Error(), sErr.Error(), sErr.Message, 1)
	msg := p.paint(color.FgRed).Sprintf("[%s] %s", sErr.Code, text)
	if sErr.Hint != "" {
		msg += "\n" + p.paint(color.FgYellow).Sprint("hint: ") + sErr.Hint
	}
	return msg
}

// Spin starts a spinner with msg on Err. The spinner is inert in quiet or
// JSON mode and when Err is not a terminal; Stop is always safe to call.
func (p *Presenter) Spin(msg string) *Spinner {
	s := &Spinner{}
	if p.Quiet || p.JSON || !IsTerminal(p.Err) {
		return s
	}
	s = NewSpinner(p.Err, msg, SpinnerDelay, p.paint(color.FgGreen))
	s.Start()
	return s
}
