package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme for spins and panels.
type Theme struct {
	Name   string
	Up     lipgloss.Color
	Down   lipgloss.Color
	Mixed  lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var (
	// ThemeRdBu follows the diverging red/blue map: up red, down blue.
	ThemeRdBu = Theme{
		Name:   "rdbu",
		Up:     lipgloss.Color("#d6604d"),
		Down:   lipgloss.Color("#4393c3"),
		Mixed:  lipgloss.Color("#f7f7f7"),
		Accent: lipgloss.Color("#00cccc"),
		Muted:  lipgloss.Color("#666688"),
	}

	ThemeMono = Theme{
		Name:   "mono",
		Up:     lipgloss.Color("#ffffff"),
		Down:   lipgloss.Color("#3a3a3a"),
		Mixed:  lipgloss.Color("#8a8a8a"),
		Accent: lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
	}

	ThemeViridis = Theme{
		Name:   "viridis",
		Up:     lipgloss.Color("#fde725"),
		Down:   lipgloss.Color("#440154"),
		Mixed:  lipgloss.Color("#21918c"),
		Accent: lipgloss.Color("#5ec962"),
		Muted:  lipgloss.Color("#3b528b"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Up:     lipgloss.Color("#00ff00"),
		Down:   lipgloss.Color("#003300"),
		Mixed:  lipgloss.Color("#008800"),
		Accent: lipgloss.Color("#88ff88"),
		Muted:  lipgloss.Color("#005500"),
	}

	CurrentTheme = ThemeRdBu

	Themes = []Theme{
		ThemeRdBu,
		ThemeMono,
		ThemeViridis,
		ThemeRetroGreen,
	}
)

// GetTheme returns a theme by name, falling back to rdbu.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeRdBu
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}
