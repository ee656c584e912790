package styles

import "github.com/charmbracelet/lipgloss"

// --- Typography ---

var (
	// Title is the main header text style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	// Label is used for field names in detail views.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	// Value is used for field values in detail views.
	Value = lipgloss.NewStyle().
		Foreground(White)

	// MutedText is for help text, hints, and less important info.
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// AccentText is for highlighted values such as URLs.
	AccentText = lipgloss.NewStyle().
			Foreground(Blue)

	// SuccessText is for success messages.
	SuccessText = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// WarningText is for warning messages.
	WarningText = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)
)

// --- Outcome badges ---

// OutcomeStyle returns the style for a recorded render outcome.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case "error":
		return lipgloss.NewStyle().Foreground(Red).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Gray)
	}
}

// OutcomeIndicator returns a small dot + outcome text with appropriate color.
func OutcomeIndicator(outcome string) string {
	style := OutcomeStyle(outcome)
	return style.Render("●") + " " + style.Render(outcome)
}

// --- Layout components ---

// Card is a rounded-border panel for content sections.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(DimGray).
	Padding(0, 1)

// --- Detail views ---

// Field renders a single "label  value" line with the label padded to width.
func Field(label, value string, width int) string {
	return Label.Width(width).Render(label) + " " + Value.Render(value)
}
