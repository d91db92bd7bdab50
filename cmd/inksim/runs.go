package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/inksim/internal/automation"
	"github.com/san-kum/inksim/internal/export"
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/optim"
	"github.com/san-kum/inksim/internal/storage"
	"github.com/san-kum/inksim/internal/studio"
	"github.com/san-kum/inksim/internal/viz"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir, log)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running scenario %s...\n", args[0])
	start := time.Now()
	res, err := automation.RunScenario(ctx, sc, cfg, log)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.Run{
		Name:    res.Name,
		Session: res.Session,
		Ticks:   res.Ticks,
		Metrics: res.Metrics,
		Trace:   res.Trace,
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", res.Ticks)
	fmt.Printf("actions: %d\n", len(res.Session.Actions))
	printMetrics(res.Metrics)
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	sess, err := storage.New(cfg.DataDir, log).LoadSession(args[0])
	if err != nil {
		return err
	}
	if frameRate <= 0 {
		return fmt.Errorf("invalid frame rate %d", frameRate)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	st, player, err := studio.Replay(ctx, sess, time.Second/time.Duration(frameRate), studio.WithLogger(log))
	if err != nil {
		return err
	}
	fmt.Printf("replayed %d actions in %v\n", len(sess.Actions), time.Since(start))
	fmt.Printf("ticks: %d\n", player.Ticks())
	if n := player.Skipped(); n > 0 {
		fmt.Printf("skipped: %d\n", n)
	}

	g := st.Sim().Grid()
	fmt.Println("\nfixed pigment:")
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		fl, fx := g.PigmentMass(c)
		fmt.Printf("  %-8s fixed %.4f  floating %.4f\n", c, fx, fl)
	}
	final := make(map[string]float64)
	for _, m := range metrics.Default() {
		m.Observe(g, st.Sim().Ticks())
		final[m.Name()] = m.Value()
	}
	printMetrics(final)

	if svgFile == "" {
		return nil
	}
	mask := viz.WetCanvas(g, 64, 32, metrics.WetThreshold)
	if err := os.WriteFile(svgFile, []byte(export.CanvasToSVG(mask, 4, cfg.Brush.Color)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgFile)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSIZE\tDURATION\tACTIONS\tTICKS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.Duration,
			run.Actions,
			run.Ticks,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := store.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, col := range strings.Split(columns, ",") {
		col = strings.TrimSpace(col)
		data, err := metrics.Series(samples, col)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgFile == "" {
		return nil
	}
	col := strings.TrimSpace(strings.Split(columns, ",")[0])
	svg, err := export.TraceToSVG(samples, col, 800, 300, "#1a2a6c")
	if err != nil {
		return err
	}
	if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	data, err := store.SessionJSON(args[0])
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sw := &automation.ParameterSweep{
		Param:   sweepParam,
		Min:     float32(sweepMin),
		Max:     float32(sweepMax),
		Steps:   sweepSteps,
		Workers: workers,
	}
	fmt.Printf("sweeping %s over %d values...\n", sw.Param, len(sw.Values()))
	start := time.Now()
	results, err := automation.RunSweep(ctx, sw, sc, cfg, log)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFIXED\tWET AREA\tMAX SPEED\tTICKS\n", strings.ToUpper(sw.Param))
	fixed := make([]float64, len(results))
	for i, r := range results {
		fixed[i] = r.Metrics["fixed_fraction"]
		fmt.Fprintf(w, "%.2f\t%.4f\t%.4f\t%.4f\t%d\n",
			r.Value, fixed[i], r.Metrics["wet_area"], r.Metrics["max_speed"], r.Ticks)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(fixed) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(fixed,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("fixed fraction vs "+sw.Param),
		))
	}
	return nil
}

// parseRange reads name=min:max:steps.
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	parts := strings.Split(spec, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("bad range %q, want name=min:max:steps", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad range %q: steps must be a positive integer", s)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	resolved, err := sc.Resolve(cfg)
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, r := range tuneRanges {
		name, values, err := parseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	objective := func(ctx context.Context, point map[string]float64) (float64, error) {
		p := resolved.Params
		for name, v := range point {
			if err := automation.SetParam(&p, name, float32(v)); err != nil {
				return 0, err
			}
		}
		c := *sc
		c.Params = &p
		res, err := automation.RunScenario(ctx, &c, cfg, log)
		if err != nil {
			return 0, err
		}
		v, ok := res.Metrics[tuneMetric]
		if !ok {
			return 0, fmt.Errorf("metric %q not collected", tuneMetric)
		}
		return math.Abs(v - tuneTarget), nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %d points for %s = %g...\n", search.Points(), tuneMetric, tuneTarget)
	start := time.Now()
	best, dist, err := search.Search(ctx, objective)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v (%d failed)\n\n", time.Since(start), search.Failed())

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("best:")
	for _, k := range keys {
		fmt.Printf("  %s: %.2f\n", k, best[k])
	}
	fmt.Printf("  |%s - target|: %.6f\n", tuneMetric, dist)
	return nil
}
