// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/invowk/taskconf/internal/console"
)

// Help text styles. Command output goes through console.Styles so that it follows
// the color scheme setting; these only decorate the static help.
var (
	// TitleStyle is for the program name in help headers.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(console.ColorPrimary)

	// SubtitleStyle is for help section labels.
	SubtitleStyle = lipgloss.NewStyle().Foreground(console.ColorMuted)

	// WarningStyle is for the prefix of non-fatal warnings.
	WarningStyle = lipgloss.NewStyle().Foreground(console.ColorWarning)
)
