package report

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the run summary.
// Use DarkTheme() or LightTheme() to get a pre-built theme.
type Theme struct {
	Primary   lipgloss.Color // title
	Error     lipgloss.Color // request errors, unparseable
	Warning   lipgloss.Color // illegal moves
	Success   lipgloss.Color // answered, correct
	Text      lipgloss.Color
	TextMuted lipgloss.Color // labels
	Border    lipgloss.Color
}

// DarkTheme returns the default theme for dark terminals.
func DarkTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#fab283"),
		Error:     lipgloss.Color("#e06c75"),
		Warning:   lipgloss.Color("#f5a742"),
		Success:   lipgloss.Color("#7fd88f"),
		Text:      lipgloss.Color("#eeeeee"),
		TextMuted: lipgloss.Color("#808080"),
		Border:    lipgloss.Color("#484848"),
	}
}

// LightTheme returns a theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#b35c00"),
		Error:     lipgloss.Color("#cf222e"),
		Warning:   lipgloss.Color("#bf8700"),
		Success:   lipgloss.Color("#116329"),
		Text:      lipgloss.Color("#1f2328"),
		TextMuted: lipgloss.Color("#656d76"),
		Border:    lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds the lipgloss styles derived from a Theme.
type styles struct {
	box     lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	bad     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		label:   lipgloss.NewStyle().Foreground(t.TextMuted).Width(15),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		good:    lipgloss.NewStyle().Foreground(t.Success),
		warning: lipgloss.NewStyle().Foreground(t.Warning),
		bad:     lipgloss.NewStyle().Foreground(t.Error),
	}
}
