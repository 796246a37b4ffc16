package tui

import (
	"github.com/charmbracelet/lipgloss"

	"bugdaily/internal/features/reports/models"
)

var (
	colorPrimary  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim      = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent   = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen    = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorWarn     = lipgloss.AdaptiveColor{Light: "#C27C0E", Dark: "#F5A623"}
	colorStatusBg = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatusFg = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	filterLabelStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	filterValueStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemMetaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	bountyStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	offlineStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityCritical: badge("#FFFFFF", "#D7263D"),
		models.SeverityHigh:     badge("#FFFFFF", "#F46036"),
		models.SeverityMedium:   badge("#1B1B1B", "#F5C242"),
		models.SeverityLow:      badge("#FFFFFF", "#2E86AB"),
		models.SeverityInfo:     badge("#FFFFFF", "#626262"),
	}
)

func badge(fg, bg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Bold(true)
}

func severityBadge(s models.Severity) string {
	style, ok := severityStyles[s]
	if !ok {
		style = badge("#FFFFFF", "#626262")
	}
	return style.Render(string(s))
}
