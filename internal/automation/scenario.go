package automation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/inksim/internal/config"
	"github.com/san-kum/inksim/internal/physics"
	"gopkg.in/yaml.v3"
)

var ErrBadScenario = errors.New("automation: invalid scenario")

// Step kinds.
const (
	StepStroke = "stroke"
	StepDab    = "dab"
	StepParams = "params"
	StepPaper  = "paper"
	StepBrush  = "brush"
	StepClear  = "clear"
	StepUndo   = "undo"
	StepRedo   = "redo"
	StepWait   = "wait"
)

// Scenario is a scripted painting session. Zero fields fall back to the
// configuration the scenario runs under.
type Scenario struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Preset      string               `yaml:"preset"`
	Size        int                  `yaml:"size"`
	Seed        int64                `yaml:"seed"`
	Params      *physics.Params      `yaml:"params"`
	Paper       *physics.PaperConfig `yaml:"paper"`
	Brush       *config.BrushConfig  `yaml:"brush"`
	Settle      float64              `yaml:"settle"`
	Steps       []Step               `yaml:"steps"`
}

// Step is one scripted action. Points are grid cells; a stroke visits them
// one frame apart.
type Step struct {
	Do      string               `yaml:"do"`
	Points  [][]float32          `yaml:"points"`
	Brush   *config.BrushConfig  `yaml:"brush"`
	Params  *physics.Params      `yaml:"params"`
	Paper   *physics.PaperConfig `yaml:"paper"`
	Seconds float64              `yaml:"seconds"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrBadScenario)
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrBadScenario, i+1, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	for _, p := range st.Points {
		if len(p) != 2 {
			return fmt.Errorf("point %v is not an x, y pair", p)
		}
	}
	switch st.Do {
	case StepStroke:
		if len(st.Points) < 2 {
			return errors.New("stroke needs at least two points")
		}
	case StepDab:
		if len(st.Points) != 1 {
			return errors.New("dab needs exactly one point")
		}
	case StepParams:
		if st.Params == nil {
			return errors.New("params step without params")
		}
	case StepPaper:
		if st.Paper == nil {
			return errors.New("paper step without paper")
		}
	case StepBrush:
		if st.Brush == nil {
			return errors.New("brush step without brush")
		}
	case StepWait:
		if st.Seconds <= 0 {
			return errors.New("wait needs positive seconds")
		}
	case StepClear, StepUndo, StepRedo:
	default:
		return fmt.Errorf("unknown step %q", st.Do)
	}
	return nil
}

// Resolve layers the scenario over base, and over a preset when one is
// named as "group/name".
func (sc *Scenario) Resolve(base *config.Config) (*config.Config, error) {
	cfg := *base
	if sc.Preset != "" {
		group, name, _ := strings.Cut(sc.Preset, "/")
		p := config.GetPreset(group, name)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrBadScenario, sc.Preset)
		}
		cfg.Params, cfg.Paper, cfg.Brush = p.Params, p.Paper, p.Brush
	}
	if sc.Size != 0 {
		cfg.Size = sc.Size
	}
	if sc.Seed != 0 {
		cfg.Seed = sc.Seed
	}
	if sc.Params != nil {
		cfg.Params = *sc.Params
	}
	if sc.Paper != nil {
		cfg.Paper = *sc.Paper
	}
	if sc.Brush != nil {
		cfg.Brush = mergeBrush(cfg.Brush, *sc.Brush)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeBrush overrides the set fields of b with o.
func mergeBrush(b, o config.BrushConfig) config.BrushConfig {
	if o.Type != "" {
		b.Type = o.Type
	}
	if o.Radius != 0 {
		b.Radius = o.Radius
	}
	if o.Water != 0 {
		b.Water = o.Water
	}
	if o.Ink != 0 {
		b.Ink = o.Ink
	}
	if o.Color != "" {
		b.Color = o.Color
	}
	return b
}
