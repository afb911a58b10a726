package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the UI colors and the heat ramp, cold to hot.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Ramp    []lipgloss.Color
}

// Available themes
var (
	ThemeInferno = Theme{
		Name:    "inferno",
		Primary: lipgloss.Color("#fca50a"),
		Accent:  lipgloss.Color("#f6d746"),
		Muted:   lipgloss.Color("#666666"),
		Ramp: []lipgloss.Color{
			"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60",
			"#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4",
		},
	}

	ThemeViridis = Theme{
		Name:    "viridis",
		Primary: lipgloss.Color("#35b779"),
		Accent:  lipgloss.Color("#fde725"),
		Muted:   lipgloss.Color("#4488aa"),
		Ramp: []lipgloss.Color{
			"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
			"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
		},
	}

	ThemeCoolwarm = Theme{
		Name:    "coolwarm",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Ramp: []lipgloss.Color{
			"#3b4cc0", "#5977e3", "#7b9ff9", "#9ebeff", "#c0d4f5",
			"#dddcdc", "#f2cbb7", "#f7ac8e", "#ee8468", "#b40426",
		},
	}

	ThemeGray = Theme{
		Name:    "gray",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Muted:   lipgloss.Color("#888888"),
		Ramp: []lipgloss.Color{
			"#000000", "#1c1c1c", "#383838", "#555555", "#717171",
			"#8d8d8d", "#aaaaaa", "#c6c6c6", "#e2e2e2", "#ffffff",
		},
	}

	// Default theme
	CurrentTheme = ThemeInferno

	// All available themes
	Themes = []Theme{
		ThemeInferno,
		ThemeViridis,
		ThemeCoolwarm,
		ThemeGray,
	}
)

// GetTheme returns a theme by name, falling back to inferno.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeInferno
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// RampStrings returns the ramp as hex strings for non-terminal renderers.
func (t Theme) RampStrings() []string {
	out := make([]string, len(t.Ramp))
	for i, c := range t.Ramp {
		out[i] = string(c)
	}
	return out
}
