package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dredimura/surface"
	"github.com/dredimura/surface/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// Plain output is used when the terminal cannot be styled.
func NewRenderer(styled bool) func(string) (string, error) {
	opt := glamour.WithStandardStyle("notty")
	if styled {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// SnapshotMarkdown describes a surface snapshot.
func SnapshotMarkdown(snap surface.Snapshot) string {
	var b strings.Builder

	title := snap.Name
	if title == "" {
		title = "surface"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	host := "standalone"
	if snap.HostPresent {
		host = "attached"
	}
	fmt.Fprintf(&b, "- **Host**: %s\n", host)
	fmt.Fprintf(&b, "- **Activation**: %s\n", snap.Phase)
	if !snap.Interactive {
		b.WriteString("- **Input**: locked\n")
	}
	if snap.Activation.LastError != "" {
		fmt.Fprintf(&b, "- **Error**: %s\n", snap.Activation.LastError)
	}
	if info := snap.Activation.Info; info != nil {
		fmt.Fprintf(&b, "- **License**: %s (%d/%d)\n", info.ActivationCode, info.CurrentActivations, info.MaxActivations)
	}

	if len(snap.Parameters) > 0 {
		b.WriteString("\n| Parameter | Kind | Value | Host |\n|---|---|---|---|\n")
		for _, r := range snap.Parameters {
			linked := "no"
			if r.Connected {
				linked = "yes"
			}
			value := fmt.Sprintf("%.3f", r.Value)
			if r.Kind == domain.KindBoolean {
				value = "off"
				if r.Value >= 0.5 {
					value = "on"
				}
			}
			if r.Dragging {
				value += " (dragging)"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.ID, r.Kind, value, linked)
		}
	}
	return b.String()
}

// PresetsMarkdown lists presets grouped as returned by the library.
func PresetsMarkdown(presets []domain.Preset) string {
	if len(presets) == 0 {
		return "_No presets found._\n"
	}

	var b strings.Builder
	group := "\x00"
	for _, p := range presets {
		if p.Group != group {
			group = p.Group
			name := group
			if name == "" {
				name = "Ungrouped"
			}
			fmt.Fprintf(&b, "\n## %s\n\n", name)
		}
		fmt.Fprintf(&b, "- **%s** `%s` (%d values)", p.Name, p.ID, len(p.Updates))
		if p.Description != "" {
			fmt.Fprintf(&b, ": %s", p.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// MessagesMarkdown renders the status code table.
func MessagesMarkdown() string {
	var b strings.Builder
	b.WriteString("| Status | Message |\n|---|---|\n")
	for _, s := range domain.Statuses() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", s, domain.StatusMessage(s))
	}
	return b.String()
}
