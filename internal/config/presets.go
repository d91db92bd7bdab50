package config

import (
	"slices"

	"github.com/jinzhu/copier"
	"github.com/san-kum/inksim/internal/physics"
)

// Presets are complete configurations grouped by painting style.
var Presets = map[string]map[string]*Config{
	"watercolor": {
		"wash": preset(
			physics.Params{DryingSpeed: 15, Viscosity: 20, PaperResist: 30, InkWeight: 15},
			physics.PaperConfig{Type: physics.PaperCold, Roughness: 50, Contrast: 50, Align: 10},
			BrushConfig{Type: physics.BrushWater, Radius: 14, Water: 2, Ink: 0.8, Color: "#3a6ea5"},
		),
		"wet-on-wet": preset(
			physics.Params{DryingSpeed: 5, Viscosity: 10, PaperResist: 20, InkWeight: 10},
			physics.PaperConfig{Type: physics.PaperRough, Roughness: 60, Contrast: 60, Align: 5},
			BrushConfig{Type: physics.BrushRound, Radius: 10, Water: 2.5, Ink: 2, Color: "#b03a48"},
		),
		"glaze": preset(
			physics.Params{DryingSpeed: 60, Viscosity: 40, PaperResist: 50, InkWeight: 20},
			physics.PaperConfig{Type: physics.PaperHot, Roughness: 30, Contrast: 40, Align: 10},
			BrushConfig{Type: physics.BrushFlat, Radius: 12, Water: 1.2, Ink: 1, Color: "#e0a458"},
		),
	},
	"sumi": {
		"calligraphy": preset(
			physics.Params{DryingSpeed: 40, Viscosity: 50, PaperResist: 70, InkWeight: 60},
			physics.PaperConfig{Type: physics.PaperRice, Roughness: 40, Contrast: 70, Align: 60},
			BrushConfig{Type: physics.BrushSumi, Radius: 8, Water: 1.5, Ink: 3, Color: "#111111"},
		),
		"bleed": preset(
			physics.Params{DryingSpeed: 10, Viscosity: 20, PaperResist: 90, InkWeight: 30},
			physics.PaperConfig{Type: physics.PaperRice, Roughness: 60, Contrast: 80, Align: 30},
			BrushConfig{Type: physics.BrushSumi, Radius: 10, Water: 2.5, Ink: 2.5, Color: "#1b1b2f"},
		),
	},
	"spray": {
		"speckle": preset(
			physics.Params{DryingSpeed: 50, Viscosity: 30, PaperResist: 40, InkWeight: 40},
			physics.PaperConfig{Type: physics.PaperSmooth, Roughness: 20, Contrast: 30, Align: 0},
			BrushConfig{Type: physics.BrushSpray, Radius: 18, Water: 1, Ink: 1.5, Color: "#2e8b57"},
		),
	},
}

func preset(p physics.Params, paper physics.PaperConfig, brush BrushConfig) *Config {
	cfg := DefaultConfig()
	cfg.Params = p
	cfg.Paper = paper
	cfg.Brush = brush
	return cfg
}

// GetPreset returns an independent copy of a preset, or nil.
func GetPreset(group, name string) *Config {
	byName, ok := Presets[group]
	if !ok {
		return nil
	}
	src, ok := byName[name]
	if !ok {
		return nil
	}
	var out Config
	if err := copier.CopyWithOption(&out, src, copier.Option{DeepCopy: true}); err != nil {
		return nil
	}
	return &out
}

// ListPresets returns the preset names of a group, sorted.
func ListPresets(group string) []string {
	byName, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Groups returns the preset groups, sorted.
func Groups() []string {
	out := make([]string, 0, len(Presets))
	for g := range Presets {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}
