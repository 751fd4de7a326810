package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the field heat map: Positive and Negative for the sign of
// the field, Muted for values near zero, Accent for sheet markers.
type Theme struct {
	Name     string
	Positive lipgloss.Color
	Negative lipgloss.Color
	Muted    lipgloss.Color
	Accent   lipgloss.Color
}

var (
	ThemeThermal = Theme{
		Name:     "thermal",
		Positive: lipgloss.Color("#ff6b3d"),
		Negative: lipgloss.Color("#3d9bff"),
		Muted:    lipgloss.Color("#444466"),
		Accent:   lipgloss.Color("#ffff00"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Positive: lipgloss.Color("#00ff00"),
		Negative: lipgloss.Color("#88ff88"),
		Muted:    lipgloss.Color("#005500"),
		Accent:   lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Positive: lipgloss.Color("#ffffff"),
		Negative: lipgloss.Color("#888888"),
		Muted:    lipgloss.Color("#333333"),
		Accent:   lipgloss.Color("#0088ff"),
	}

	CurrentTheme = ThemeThermal

	Themes = []Theme{
		ThemeThermal,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to thermal.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeThermal
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
