package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the studio chrome. The canvas itself is always drawn in
// pigment colours.
type Theme struct {
	Name    string
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Warning lipgloss.Color
	Record  lipgloss.Color
}

var (
	ThemeInk = Theme{
		Name:    "ink",
		Accent:  lipgloss.Color("#6c8ebf"),
		Text:    lipgloss.Color("#e8e6e3"),
		Muted:   lipgloss.Color("#7a7a85"),
		Border:  lipgloss.Color("#3a3a4a"),
		Warning: lipgloss.Color("#e0a458"),
		Record:  lipgloss.Color("#ff4444"),
	}

	ThemePaper = Theme{
		Name:    "paper",
		Accent:  lipgloss.Color("#8b4513"),
		Text:    lipgloss.Color("#2b2b2b"),
		Muted:   lipgloss.Color("#8a8170"),
		Border:  lipgloss.Color("#c8bfa8"),
		Warning: lipgloss.Color("#b8860b"),
		Record:  lipgloss.Color("#c0392b"),
	}

	ThemeNight = Theme{
		Name:    "night",
		Accent:  lipgloss.Color("#00ccff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Border:  lipgloss.Color("#444466"),
		Warning: lipgloss.Color("#ffcc00"),
		Record:  lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemeInk, ThemePaper, ThemeNight}
)

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeInk
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeInk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
