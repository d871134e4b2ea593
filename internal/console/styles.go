// SPDX-License-Identifier: MPL-2.0

package console

import "github.com/charmbracelet/lipgloss"

// Palette shared by diagnostics and command output. Each color has a light and a dark
// variant so forced color schemes stay readable.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#7C3AED"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#6B7280"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	ColorKey     = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}
)

// Styles are the lipgloss styles of one output stream.
type Styles struct {
	Subhead lipgloss.Style
	OK      lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds the palette against r, so color detection follows r's writer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Subhead: r.NewStyle().Bold(true).Underline(true).Foreground(ColorPrimary),
		OK:      r.NewStyle().Foreground(ColorSuccess),
		Error:   r.NewStyle().Bold(true).Foreground(ColorError),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Key:     r.NewStyle().Foreground(ColorKey),
		Muted:   r.NewStyle().Foreground(ColorMuted),
	}
}
