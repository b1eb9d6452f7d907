package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pkt.systems/nikiai/internal/linediff"
	"pkt.systems/nikiai/schema"
)

// DiffStyles holds the lipgloss styles used by RenderDiff.
type DiffStyles struct {
	Header    lipgloss.Style
	Stats     lipgloss.Style
	Gutter    lipgloss.Style
	Added     lipgloss.Style
	Removed   lipgloss.Style
	Unchanged lipgloss.Style
}

// DefaultDiffStyles returns colored styles for terminals.
func DefaultDiffStyles() DiffStyles {
	return DiffStyles{
		Header:    lipgloss.NewStyle().Bold(true),
		Stats:     lipgloss.NewStyle().Faint(true),
		Gutter:    lipgloss.NewStyle().Faint(true),
		Added:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Removed:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Unchanged: lipgloss.NewStyle(),
	}
}

// PlainDiffStyles returns unstyled output.
func PlainDiffStyles() DiffStyles {
	plain := lipgloss.NewStyle()
	return DiffStyles{
		Header:    plain,
		Stats:     plain,
		Gutter:    plain,
		Added:     plain,
		Removed:   plain,
		Unchanged: plain,
	}
}

// Gutter returns the line-number label of a change: the original number for
// removed lines, the new number for added lines, and "o → n" otherwise.
func Gutter(change linediff.Change) string {
	switch change.Type {
	case schema.ChangeRemoved:
		return fmt.Sprintf("%d", change.OriginalLine)
	case schema.ChangeAdded:
		return fmt.Sprintf("%d", change.NewLine)
	default:
		return fmt.Sprintf("%d → %d", change.OriginalLine, change.NewLine)
	}
}

// StatsLabel formats stats as "+A -R".
func StatsLabel(stats linediff.Stats) string {
	return fmt.Sprintf("+%d -%d", stats.Added, stats.Removed)
}

// DiffHeader returns the title line shown above a diff.
func DiffHeader(note schema.NotePath) string {
	if note == "" {
		return "Changes for current file"
	}
	return "Changes for " + string(note)
}

// RenderDiff renders result as a header followed by one line per change.
func RenderDiff(note schema.NotePath, result linediff.Result, styles DiffStyles) string {
	var b strings.Builder
	b.WriteString(styles.Header.Render(DiffHeader(note)))
	b.WriteString("  ")
	b.WriteString(styles.Stats.Render(StatsLabel(result.Stats())))

	width := 0
	for _, change := range result.Changes {
		width = max(width, len([]rune(Gutter(change))))
	}
	for _, change := range result.Changes {
		gutter := Gutter(change)
		pad := strings.Repeat(" ", width-len([]rune(gutter)))
		b.WriteString("\n")
		b.WriteString(styles.Gutter.Render(pad + gutter))
		b.WriteString(" ")
		switch change.Type {
		case schema.ChangeAdded:
			b.WriteString(styles.Added.Render("+ " + change.Content))
		case schema.ChangeRemoved:
			b.WriteString(styles.Removed.Render("- " + change.Content))
		default:
			b.WriteString(styles.Unchanged.Render("  " + change.Content))
		}
	}
	return b.String()
}
