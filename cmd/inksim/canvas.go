package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/anthonynsimon/bild/clone"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/inksim/internal/analysis"
	"github.com/san-kum/inksim/internal/config"
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/record"
	"github.com/san-kum/inksim/internal/sim"
	"github.com/san-kum/inksim/internal/storage"
	"github.com/san-kum/inksim/internal/studio"
	"github.com/san-kum/inksim/internal/viz"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// newStudio creates a studio with the configured brush and paper.
func newStudio(cfg *config.Config, opts ...studio.Option) (*studio.Studio, error) {
	opts = append([]studio.Option{
		studio.WithParams(cfg.Params),
		studio.WithHistoryDepth(cfg.HistoryDepth),
	}, opts...)
	if cfg.Seed != 0 {
		opts = append(opts, studio.WithSeed(cfg.Seed))
	}
	st, err := studio.New(cfg.Size, opts...)
	if err != nil {
		return nil, err
	}
	if err := st.SetBrush(cfg.Brush.Type); err != nil {
		return nil, err
	}
	st.SetPaper(cfg.Paper)
	return st, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the studio, so logs are dropped
	st, err := newStudio(cfg)
	if err != nil {
		return err
	}
	store := storage.New(cfg.DataDir, nil)
	save := func(s *record.Session) (string, error) {
		if err := store.Init(); err != nil {
			return "", err
		}
		return store.Save(storage.Run{
			Name:    "live",
			Session: s,
			Ticks:   st.Sim().Ticks(),
			Metrics: st.Sim().Metrics(),
		})
	}
	return viz.Run(st, cfg.Brush, save)
}

func paperStats(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	pt, err := physics.ParsePaperType(paperType)
	if err != nil {
		return err
	}
	s, err := sim.Create(cfg.Size, cfg.Size, sim.WithLogger(log))
	if err != nil {
		return err
	}
	used := s.GeneratePaper(physics.PaperConfig{
		Type:      pt,
		Roughness: float32(roughness),
		Contrast:  float32(contrast),
		Align:     float32(align),
		Seed:      cfg.Seed,
	})

	fibers := s.Fibers()
	fmt.Printf("paper: %s %dx%d seed %d\n", used.Type, s.Width(), s.Height(), used.Seed)
	fmt.Printf("fibres: %s\n\n", analysis.Describe(fibers))
	fmt.Println(analysis.NewHistogram(fibers, 10).Render(40))

	spec := analysis.RadialSpectrum(fibers, s.Width(), s.Height())
	if len(spec) < 3 {
		return nil
	}
	logPower := make([]float64, len(spec)-1)
	for i, p := range spec[1:] {
		logPower[i] = math.Log10(p + 1e-12)
	}
	fmt.Println(asciigraph.Plot(logPower,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("radial power spectrum (log10)"),
	))
	fmt.Printf("\nspectral centroid: %.2f cycles per canvas\n", analysis.SpectralCentroid(spec))
	return nil
}

func benchTicks(cmd *cobra.Command, args []string) error {
	if benchN <= 0 {
		return fmt.Errorf("invalid tick count %d", benchN)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tTICKS/S\tREALTIME\tMS/TICK")
	for _, n := range grid.Sizes {
		s, err := sim.Create(n, n, sim.WithSeed(1))
		if err != nil {
			return err
		}
		s.GeneratePaper(physics.DefaultPaper())
		half := float32(n / 2)
		if err := s.AddInput(half, half, 8, 1.7, 2.5, 50, 50, 200, 0, 0); err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < benchN; i++ {
			s.Step()
		}
		elapsed := time.Since(start)
		rate := float64(benchN) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%.1f\t%.2fx\t%.3f\n",
			n, rate, rate/float64(sim.TickRate(n)), float64(elapsed.Microseconds())/1000/float64(benchN))
	}
	return w.Flush()
}

func runSketch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	src, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	st, err := newStudio(cfg, studio.WithLogger(log))
	if err != nil {
		return err
	}
	for _, m := range metrics.Default() {
		st.AddMetric(m)
	}
	rgba := clone.AsRGBA(src)
	b := rgba.Bounds()
	if err := st.Import(rgba.Pix, b.Dx(), b.Dy()); err != nil {
		return err
	}
	fmt.Printf("imported %s %dx%d onto %dx%d\n", format, b.Dx(), b.Dy(), st.Size(), st.Size())

	tick := st.Scheduler().TickDuration()
	for i := 0; i < sketchTicks; i++ {
		st.Frame(tick)
	}
	fmt.Printf("ticks: %d\n", st.Sim().Ticks())
	printMetrics(st.Sim().Metrics())

	if outFile == "" {
		return nil
	}
	out, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := png.Encode(out, viz.Image(st.Sim(), studio.ViewPigment)); err != nil {
		out.Close()
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return out.Close()
}
