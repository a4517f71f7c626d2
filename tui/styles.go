package tui

import (
	"gemdrop"

	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Button   lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles builds the panel styles from the configured palette.
func NewStyles(p gemdrop.Palette) Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.SoftPrimary)).
			Background(lipgloss.Color(p.DarkPrimary)),
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)).
			Background(lipgloss.Color(p.Primary)).
			Padding(0, 1),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.SoftGrey)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)),
	}
}
