// Package theme provides the lipgloss color table used by the renderer: two
// named themes (dark, light) for a single-pane dashboard, everything else
// inherits terminal defaults.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors the renderer needs.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color
	BorderDim lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
}

// Dracula is owt's default dark theme.
func Dracula() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#BD93F9"),
		AccentFg:  lipgloss.Color("#282A36"),
		BorderDim: lipgloss.Color("#44475A"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		Cyan:      lipgloss.Color("#8BE9FD"),
	}
}

// Light is a light-background fallback, same field shape as Dracula.
func Light() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#6B4FBB"),
		AccentFg:  lipgloss.Color("#FFFFFF"),
		BorderDim: lipgloss.Color("#E8E8E8"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#059669"),
		WarnFg:    lipgloss.Color("#D97706"),
		ErrorFg:   lipgloss.Color("#DC2626"),
		Cyan:      lipgloss.Color("#0891B2"),
	}
}

// Get returns a theme by name, defaulting to Dracula.
func Get(name string) *Theme {
	if name == "light" {
		return Light()
	}
	return Dracula()
}
