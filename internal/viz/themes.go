package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme for the cradle scene and the side panel.
type Theme struct {
	Name   string
	Beam   lipgloss.Color
	String lipgloss.Color
	Title  lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Graph  lipgloss.Color
	// Mono draws every bob in Title instead of its own color.
	Mono bool
}

var (
	ThemeSketch = Theme{
		Name:   "sketch",
		Beam:   lipgloss.Color("#e5e5e5"),
		String: lipgloss.Color("#afafaf"),
		Title:  lipgloss.Color("#1cb0f6"),
		Text:   lipgloss.Color("#f7f9fa"),
		Muted:  lipgloss.Color("#777777"),
		Graph:  lipgloss.Color("#1cb0f6"),
	}

	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Beam:   lipgloss.Color("#00ffff"),
		String: lipgloss.Color("#444466"),
		Title:  lipgloss.Color("#ff00ff"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666688"),
		Graph:  lipgloss.Color("#00ff88"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Beam:   lipgloss.Color("#00cc00"),
		String: lipgloss.Color("#005500"),
		Title:  lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#88ff88"),
		Muted:  lipgloss.Color("#005500"),
		Graph:  lipgloss.Color("#00ff00"),
		Mono:   true,
	}

	CurrentTheme = ThemeSketch

	Themes = []Theme{
		ThemeSketch,
		ThemeCyberpunk,
		ThemeRetroGreen,
	}
)

// GetTheme returns a theme by name, falling back to sketch.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeSketch
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
