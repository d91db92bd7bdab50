package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSize         = 256
	DefaultFrameRate    = 60
	DefaultHistoryDepth = 10
	DefaultDataDir      = "data"
	DefaultColor        = "#1a2a6c"
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid value")
)

type Config struct {
	Size         int                 `yaml:"size" toml:"size"`
	Seed         int64               `yaml:"seed" toml:"seed"`
	FrameRate    int                 `yaml:"frame_rate" toml:"frame_rate"`
	HistoryDepth int                 `yaml:"history_depth" toml:"history_depth"`
	DataDir      string              `yaml:"data_dir" toml:"data_dir"`
	LogLevel     string              `yaml:"log_level" toml:"log_level"`
	Metrics      []string            `yaml:"metrics,omitempty" toml:"metrics,omitempty"`
	Params       physics.Params      `yaml:"params" toml:"params"`
	Paper        physics.PaperConfig `yaml:"paper" toml:"paper"`
	Brush        BrushConfig         `yaml:"brush" toml:"brush"`
}

// BrushConfig is the default dab a host paints with. Color is any hex form
// go-colorful accepts.
type BrushConfig struct {
	Type   physics.BrushType `yaml:"type" toml:"type"`
	Radius float32           `yaml:"radius" toml:"radius"`
	Water  float32           `yaml:"water" toml:"water"`
	Ink    float32           `yaml:"ink" toml:"ink"`
	Color  string            `yaml:"color" toml:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		Size:         DefaultSize,
		FrameRate:    DefaultFrameRate,
		HistoryDepth: DefaultHistoryDepth,
		DataDir:      DefaultDataDir,
		LogLevel:     "info",
		Params:       physics.DefaultParams(),
		Paper:        physics.DefaultPaper(),
		Brush: BrushConfig{
			Type:   physics.BrushRound,
			Radius: 6,
			Water:  1.5,
			Ink:    2,
			Color:  DefaultColor,
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".toml":
		data, err = toml.Marshal(cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ext(path string) string { return strings.ToLower(filepath.Ext(path)) }

// Validate rejects values the simulation would refuse. Slider values are not
// checked; they are clamped when applied.
func (c *Config) Validate() error {
	if !grid.ValidSize(c.Size, c.Size) {
		return fmt.Errorf("%w: size %d, want one of %v", ErrInvalid, c.Size, grid.Sizes)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate %d", ErrInvalid, c.FrameRate)
	}
	if c.HistoryDepth <= 0 {
		return fmt.Errorf("%w: history_depth %d", ErrInvalid, c.HistoryDepth)
	}
	if _, err := physics.ParsePaperType(string(c.Paper.Type)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := physics.ParseBrushType(string(c.Brush.Type)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Brush.Radius <= 0 {
		return fmt.Errorf("%w: brush radius %g", ErrInvalid, c.Brush.Radius)
	}
	if _, err := c.Brush.RGB(); err != nil {
		return err
	}
	return nil
}

// FrameDuration is the fixed frame time used by headless runs.
func (c *Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(max(c.FrameRate, 1))
}

// RGB parses Color into 0..255 channels.
func (b BrushConfig) RGB() ([3]float32, error) {
	col, err := colorful.Hex(b.Color)
	if err != nil {
		return [3]float32{}, fmt.Errorf("%w: brush color %q", ErrInvalid, b.Color)
	}
	r, g, bl := col.RGB255()
	return [3]float32{float32(r), float32(g), float32(bl)}, nil
}

// Dab builds a brush input at (x, y) with this brush's settings.
func (b BrushConfig) Dab(x, y, vx, vy float32) (physics.BrushInput, error) {
	rgb, err := b.RGB()
	if err != nil {
		return physics.BrushInput{}, err
	}
	return physics.BrushInput{
		X: x, Y: y, Radius: b.Radius, Water: b.Water, Ink: b.Ink,
		R: rgb[0], G: rgb[1], B: rgb[2], VX: vx, VY: vy,
		Brush: b.Type,
	}, nil
}
