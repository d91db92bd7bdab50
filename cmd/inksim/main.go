package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/san-kum/inksim/internal/config"
	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	logLevel    string
	preset      string
	size        int
	seed        int64
	frameRate   int
	benchN      int
	sketchTicks int
	columns     string
	outFile     string
	svgFile     string
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	workers    int
	// tune
	tuneRanges []string
	tuneMetric string
	tuneTarget float64
	// paper
	paperType string
	roughness float64
	contrast  float64
	align     float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "inksim",
		Short:         "watercolour and ink simulation studio",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&preset, "preset", "", "preset as group/name, see 'inksim presets'")
	pf.IntVar(&size, "size", config.DefaultSize, "canvas resolution (256, 512 or 1024)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scripted scenario headless and save the session",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored session",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "fixed frame rate used for playback")
	replayCmd.Flags().StringVar(&svgFile, "wet-svg", "", "write the final wet mask as SVG")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored sessions",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored metrics trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&columns, "columns", "fixed,floating", "comma separated trace columns")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the first column as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a stored session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	paperCmd := &cobra.Command{
		Use:   "paper",
		Short: "generate paper and print fibre statistics",
		RunE:  paperStats,
	}
	paperCmd.Flags().StringVar(&paperType, "type", "cold", "paper type")
	paperCmd.Flags().Float64Var(&roughness, "roughness", 50, "roughness 0..100")
	paperCmd.Flags().Float64Var(&contrast, "contrast", 50, "contrast 0..100")
	paperCmd.Flags().Float64Var(&align, "align", 0, "fibre alignment 0..100")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "rerun a scenario across one control",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "drying_speed", "control to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 100, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 uses every CPU)")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario.yaml]",
		Short: "grid search controls for a target metric value",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScenario,
	}
	tuneCmd.Flags().StringArrayVar(&tuneRanges, "param", []string{"drying_speed=0:100:5"}, "name=min:max:steps, repeatable")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "fixed_fraction", "metric to match")
	tuneCmd.Flags().Float64Var(&tuneTarget, "target", 0.5, "target metric value")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure ticks per second at every resolution",
		RunE:  benchTicks,
	}
	benchCmd.Flags().IntVar(&benchN, "ticks", 200, "ticks per resolution")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "paint in the terminal studio",
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, g := range config.Groups() {
				fmt.Printf("%s:\n", g)
				for _, p := range config.ListPresets(g) {
					fmt.Printf("  %s/%s\n", g, p)
				}
			}
			return nil
		},
	}

	sketchCmd := &cobra.Command{
		Use:   "sketch [image]",
		Short: "seed the canvas from an image and let it run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSketch,
	}
	sketchCmd.Flags().IntVar(&sketchTicks, "ticks", 120, "ticks to run after import")
	sketchCmd.Flags().StringVar(&outFile, "out", "", "write the final canvas as PNG")

	rootCmd.AddCommand(runCmd, replayCmd, listCmd, plotCmd, exportJSONCmd, paperCmd, sweepCmd, tuneCmd, benchCmd, liveCmd, presetsCmd, sketchCmd)
	return rootCmd
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then the preset, then flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}
	if preset != "" {
		group, name, _ := strings.Cut(preset, "/")
		p := config.GetPreset(group, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (groups: %v)", preset, config.Groups())
		}
		cfg.Params, cfg.Paper, cfg.Brush = p.Params, p.Paper, p.Brush
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("size") {
		cfg.Size = size
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logx.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logx.New(os.Stderr, level), nil
}

// setup is the common prologue of every command that touches the canvas.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, log, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir, log), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, k := range names {
		fmt.Printf("  %s: %.6f\n", k, m[k])
	}
}
