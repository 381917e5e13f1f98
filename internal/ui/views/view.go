package views

import (
	"fmt"
	"strings"
	"time"
)

// ItemRow is one renderable line of the item list
type ItemRow struct {
	Name     string
	Path     string
	Tags     []string
	Selected bool
	IsCursor bool
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Items          []ItemRow
	ViewportOffset int
	ViewportHeight int
	Scanning       bool
	StatusLine     string
	StatusMessage  string
	QueryActive    bool
	QueryView      string // rendered text input while entering a query
	QueryString    string // the applied query, if any
	SelectedCount  int
	ShowTags       bool
	HelpLine       string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	// Title line with a scan spinner on the right
	title := r.styles.Title.Render("cratedig")
	if state.Scanning {
		spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frame := int(time.Now().UnixMilli()/80) % len(spinner)
		title += "  " + r.styles.Dim.Render(spinner[frame]+" scanning")
	}
	content.WriteString(title)
	content.WriteString("\n")

	// Query line: either the live input or the applied filter
	if state.QueryActive {
		content.WriteString(state.QueryView)
		content.WriteString("\n")
	} else if state.QueryString != "" {
		content.WriteString(r.styles.Query.Render("filter: " + state.QueryString))
		content.WriteString("\n")
	}

	r.renderItems(content, state)

	// Status bar
	status := state.StatusLine
	if state.SelectedCount > 0 {
		status += fmt.Sprintf(" — %d selected", state.SelectedCount)
	}
	content.WriteString(r.styles.Status.Render(status))
	content.WriteString("\n")

	if state.StatusMessage != "" {
		content.WriteString(r.styles.StatusError.Render(state.StatusMessage))
		content.WriteString("\n")
	}

	if state.HelpLine != "" {
		content.WriteString(r.styles.Help.Render(state.HelpLine))
	}

	return content.String()
}

func (r *Renderer) renderItems(content *strings.Builder, state ViewState) {
	if len(state.Items) == 0 {
		content.WriteString(r.styles.Dim.Render("  (no items)"))
		content.WriteString("\n")
		return
	}

	start := state.ViewportOffset
	if start > len(state.Items) {
		start = len(state.Items)
	}
	end := start + state.ViewportHeight
	if end > len(state.Items) {
		end = len(state.Items)
	}

	if start > 0 {
		content.WriteString(r.styles.Scroll.Render(fmt.Sprintf("  ↑ %d more", start)))
		content.WriteString("\n")
	}

	for _, row := range state.Items[start:end] {
		content.WriteString(r.renderRow(row, state.ShowTags))
		content.WriteString("\n")
	}

	if end < len(state.Items) {
		content.WriteString(r.styles.Scroll.Render(fmt.Sprintf("  ↓ %d more", len(state.Items)-end)))
		content.WriteString("\n")
	}
}

func (r *Renderer) renderRow(row ItemRow, showTags bool) string {
	marker := "  "
	if row.Selected {
		marker = "◆ "
	}

	line := marker + row.Name
	if showTags && len(row.Tags) > 0 {
		line += "  " + r.styles.Tag.Render(strings.Join(row.Tags, " "))
	}

	switch {
	case row.IsCursor && row.Selected:
		return r.styles.CursorBg.Render(r.styles.Highlight.Render(line))
	case row.IsCursor:
		return r.styles.CursorBg.Render(line)
	case row.Selected:
		return r.styles.SelectionBg.Render(line)
	default:
		return line
	}
}
