package config

import "sort"

// Presets holds grid layouts of known simulation outputs.
var Presets = map[string]*Config{
	"heat2d": {
		Grid: GridConfig{Height: 100, Width: 100},
	},
	"heat2d-small": {
		Grid: GridConfig{Height: 10, Width: 10},
	},
	"heat2d-large": {
		Grid: GridConfig{Height: 500, Width: 500},
		Viz:  VizConfig{Stride: 10},
	},
	"heat2d-preview": {
		Grid:     GridConfig{Height: 100, Width: 100},
		MaxSteps: 20,
		Viz:      VizConfig{Stride: 2},
	},
}

// GetPreset returns DefaultConfig with the preset's non-zero fields applied,
// or nil for an unknown name.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Grid = p.Grid
	if p.MaxSteps != 0 {
		cfg.MaxSteps = p.MaxSteps
	}
	if p.Viz.Stride != 0 {
		cfg.Viz.Stride = p.Viz.Stride
	}
	if p.MarkerPolicy != "" {
		cfg.MarkerPolicy = p.MarkerPolicy
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
