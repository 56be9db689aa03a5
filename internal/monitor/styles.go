package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors for severities
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HostNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	AllClearStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	UpdatingStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Status indicator glyphs
const (
	GlyphOK           = "◉"
	GlyphInitializing = "◐"
	GlyphUpdating     = "◐"
	GlyphError        = "◌"
)

// InitSpinnerFrames animate the initializing and updating indicators.
var InitSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// SeverityColor returns the display color for a severity level.
func SeverityColor(sev Severity) lipgloss.Color {
	switch sev {
	case SeverityCritical:
		return ColorCritical
	case SeverityWarning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// SeverityStyle returns a style colored for the severity level.
func SeverityStyle(sev Severity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(SeverityColor(sev))
}

// StatusGlyph returns the indicator glyph for a host's lifecycle status,
// animated for in-flight states.
func StatusGlyph(status Status, frame int) string {
	switch status {
	case StatusInitializing, StatusUpdating:
		return InitSpinnerFrames[frame%len(InitSpinnerFrames)]
	case StatusError:
		return GlyphError
	default:
		return GlyphOK
	}
}

// StatusStyle returns the style for a host's status glyph.
func StatusStyle(status Status) lipgloss.Style {
	switch status {
	case StatusError:
		return lipgloss.NewStyle().Foreground(ColorCritical)
	case StatusInitializing, StatusUpdating:
		return lipgloss.NewStyle().Foreground(ColorTextSecondary)
	default:
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	}
}

// UtilizationBar renders a fixed-width bar colored by utilization severity.
func UtilizationBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("▰")
		} else {
			b.WriteString("▱")
		}
	}
	return SeverityStyle(UtilizationSeverity(percent)).Render(b.String())
}
