package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/hpungsan/sicon/internal/ops"
)

// Search prints search results as a table, or one slug per line when quiet.
func (p *Presenter) Search(out *ops.SearchOutput) error {
	if p.JSON {
		return p.WriteJSON(out)
	}
	if p.Quiet {
		for _, it := range out.Items {
			fmt.Fprintln(p.Out, it.Slug)
		}
		return nil
	}
	if len(out.Items) == 0 {
		fmt.Fprintln(p.Out, p.paint(color.FgRed).Sprintf("No icons found for %q", out.Query))
		return nil
	}

	fmt.Fprintln(p.Out, p.paint(color.Bold).Sprintf("Search results for %q", out.Query))
	// Cells stay unstyled; escape codes would skew tabwriter widths
	tw := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tSLUG\tHEX")
	for _, it := range out.Items {
		fmt.Fprintf(tw, "%s\t%s\t#%s\n", it.Title, it.Slug, it.Hex)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if out.Remaining > 0 {
		fmt.Fprintln(p.Out, p.paint(color.Faint).Sprintf("...and %d more. Try a more specific query.", out.Remaining))
	}
	return nil
}

// Info prints the full icon record.
func (p *Presenter) Info(out *ops.InfoOutput) error {
	if p.JSON {
		return p.WriteJSON(out)
	}

	fmt.Fprintln(p.Out, p.paint(color.Bold, color.FgCyan).Sprint(out.Title))
	p.field("Slug", p.paint(color.FgMagenta).Sprint(out.Slug))
	p.field("Hex", p.paint(color.FgGreen).Sprint("#"+out.Hex))
	p.field("Source", p.paint(color.FgBlue).Sprint(out.Source))
	if out.Guidelines != "" {
		p.field("Guidelines", p.paint(color.FgBlue).Sprint(out.Guidelines))
	}
	if out.License != nil {
		url := out.License.URL
		if url == "" {
			url = "N/A"
		}
		p.field("License", fmt.Sprintf("%s (%s)", out.License.Type, url))
	}
	if out.Aliases != nil && len(out.Aliases.AKA) > 0 {
		p.field("Also known as", strings.Join(out.Aliases.AKA, ", "))
	}
	if out.URL != "" {
		p.field("URL", out.URL)
	}
	if !out.Match.Exact {
		p.Note("matched %q with score %s", out.Match.Query, FormatScore(out.Match.Score))
	}
	return nil
}

func (p *Presenter) field(name, value string) {
	fmt.Fprintf(p.Out, "%s: %s\n", name, value)
}

// Resolve prints how a query resolved, or just the slug when quiet.
func (p *Presenter) Resolve(out *ops.ResolveOutput) error {
	if p.JSON {
		return p.WriteJSON(out)
	}
	if p.Quiet {
		fmt.Fprintln(p.Out, out.Slug)
		return nil
	}

	how := "exact"
	if !out.Match.Exact {
		how = "fuzzy, score " + FormatScore(out.Match.Score)
	}
	fmt.Fprintf(p.Out, "%s -> %s (%s) %s\n",
		out.Match.Query,
		p.paint(color.FgMagenta).Sprint(out.Slug),
		how,
		p.paint(color.Faint).Sprint(out.Title))
	return nil
}

// Download prints where the artifact was written, or just its path when quiet.
// Warnings always go to Err.
func (p *Presenter) Download(out *ops.DownloadOutput, elapsed time.Duration) error {
	for _, w := range out.Warnings {
		p.Warn("%s", w)
	}
	if p.JSON {
		return p.WriteJSON(out)
	}
	if p.Quiet {
		fmt.Fprintln(p.Out, out.Path)
		return nil
	}

	if !out.Match.Exact {
		p.Note("%q matched %s (score %s)", out.Match.Query, out.Slug, FormatScore(out.Match.Score))
	}
	detail := []string{string(out.Format)}
	if out.Width > 0 {
		detail = append(detail, fmt.Sprintf("%dx%d", out.Width, out.Height))
	}
	detail = append(detail, FormatBytes(out.Bytes), FormatDuration(elapsed))

	fmt.Fprintf(p.Out, "%s %s to %s %s\n",
		p.paint(color.FgGreen).Sprint("Saved"),
		out.Title,
		p.paint(color.Bold).Sprint(out.Path),
		p.paint(color.Faint).Sprintf("(%s)", strings.Join(detail, ", ")))
	return nil
}

// History prints recorded downloads, or one path per line when quiet.
func (p *Presenter) History(out *ops.HistoryOutput) error {
	if p.JSON {
		return p.WriteJSON(out)
	}
	if p.Quiet {
		for _, d := range out.Items {
			fmt.Fprintln(p.Out, d.Path)
		}
		return nil
	}
	if len(out.Items) == 0 {
		fmt.Fprintln(p.Out, "No downloads recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSLUG\tFORMAT\tSIZE\tPATH")
	for _, d := range out.Items {
		size := "-"
		if d.Size > 0 {
			size = fmt.Sprintf("%dpx", d.Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			time.Unix(d.CreatedAt, 0).Local().Format("2006-01-02 15:04"),
			d.Slug,
			d.Format,
			size,
			d.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if out.Pagination.HasMore {
		fmt.Fprintln(p.Out, p.paint(color.Faint).Sprintf("showing %d of %d; use --offset for more",
			len(out.Items), out.Pagination.Total))
	}
	return nil
}

// Cleared reports a history wipe.
func (p *Presenter) Cleared(out *ops.ClearHistoryOutput) error {
	if p.JSON {
		return p.WriteJSON(out)
	}
	if !p.Quiet {
		fmt.Fprintf(p.Out, "Removed %d history entries.\n", out.Removed)
	}
	return nil
}
