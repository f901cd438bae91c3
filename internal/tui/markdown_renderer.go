package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/leadflow/internal/domain"
)

// markdownRenderer renders markdown for terminal views and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := width
	if wrapWidth < 24 {
		wrapWidth = 24
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// leadMarkdown describes one lead for the detail overlay.
func leadMarkdown(lead domain.Lead) string {
	assignee := "_unassigned_"
	if lead.Assigned() {
		assignee = escapeMarkdown(lead.AssignedTo)
	}
	created := "-"
	if !lead.CreatedAt.IsZero() {
		created = lead.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(lead.Name))
	fmt.Fprintf(&b, "**%s** · %s\n\n", lead.Status.Title(), escapeMarkdown(lead.Source))
	b.WriteString("| field | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| email | %s |\n", escapeMarkdown(lead.Email))
	fmt.Fprintf(&b, "| phone | %s |\n", escapeMarkdown(lead.Phone))
	fmt.Fprintf(&b, "| assigned to | %s |\n", assignee)
	fmt.Fprintf(&b, "| created | %s |\n", created)
	fmt.Fprintf(&b, "| id | `%s` |\n", lead.ID)
	return b.String()
}

// escapeMarkdown keeps user text from being read as table or emphasis syntax.
func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "'").Replace(s)
}
