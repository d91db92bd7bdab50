package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/inksim/internal/config"
	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/record"
	"github.com/san-kum/inksim/internal/studio"
)

// DefaultSettle is how long a scenario keeps running after its last step
// when it does not say.
const DefaultSettle = 1.0

// Result is the outcome of one headless scenario run.
type Result struct {
	Name    string
	Config  *config.Config
	Session *record.Session
	Metrics map[string]float64
	Trace   *metrics.Trace
	Studio  *studio.Studio
	Ticks   uint64
}

type runner struct {
	st    *studio.Studio
	brush config.BrushConfig
	frame time.Duration
	ctx   context.Context
}

// RunScenario plays sc headless on a fresh studio configured from base, with
// fixed frame times, while recording it.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, log *slog.Logger) (*Result, error) {
	log = logx.OrNop(log)
	cfg, err := sc.Resolve(base)
	if err != nil {
		return nil, err
	}
	ms, err := metrics.Select(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	st, err := studio.New(cfg.Size,
		studio.WithSeed(cfg.Seed),
		studio.WithParams(cfg.Params),
		studio.WithHistoryDepth(cfg.HistoryDepth),
		studio.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if err := st.SetBrush(cfg.Brush.Type); err != nil {
		return nil, err
	}
	st.SetPaper(cfg.Paper)
	for _, m := range ms {
		st.AddMetric(m)
	}
	trace := metrics.NewTrace(max(cfg.FrameRate/10, 1))
	st.AddObserver(trace)

	if err := st.StartRecording(); err != nil {
		return nil, err
	}
	r := &runner{st: st, brush: cfg.Brush, frame: cfg.FrameDuration(), ctx: ctx}
	for i, step := range sc.Steps {
		log.Debug("scenario step", "n", i+1, "do", step.Do)
		if err := r.do(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Do, err)
		}
	}
	settle := sc.Settle
	if settle == 0 {
		settle = DefaultSettle
	}
	if err := r.wait(settle); err != nil {
		return nil, err
	}

	sess, err := st.StopRecording()
	if err != nil {
		return nil, err
	}
	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	return &Result{
		Name:    name,
		Config:  cfg,
		Session: sess,
		Metrics: st.Sim().Metrics(),
		Trace:   trace,
		Studio:  st,
		Ticks:   st.Sim().Ticks(),
	}, nil
}

func (r *runner) do(step Step) error {
	st := r.st
	brush := r.brush
	if step.Brush != nil && step.Do != StepBrush {
		brush = mergeBrush(brush, *step.Brush)
	}
	switch step.Do {
	case StepStroke, StepDab:
		return r.stroke(step.Points, brush)
	case StepParams:
		st.SetParams(*step.Params)
	case StepPaper:
		st.SetPaper(*step.Paper)
	case StepBrush:
		r.brush = mergeBrush(r.brush, *step.Brush)
		return st.SetBrush(r.brush.Type)
	case StepClear:
		st.Clear()
	case StepUndo:
		return st.Undo()
	case StepRedo:
		return st.Redo()
	case StepWait:
		return r.wait(step.Seconds)
	}
	return r.frames(1)
}

func (r *runner) stroke(points [][]float32, brush config.BrushConfig) error {
	for i, p := range points {
		dab, err := brush.Dab(p[0], p[1], 0, 0)
		if err != nil {
			return err
		}
		if i == 0 {
			err = r.st.BeginStroke(dab)
		} else {
			err = r.st.StrokeTo(dab)
		}
		if err != nil {
			return err
		}
		if err := r.frames(1); err != nil {
			return err
		}
	}
	r.st.EndStroke()
	return nil
}

func (r *runner) wait(seconds float64) error {
	n := int(math.Ceil(seconds * float64(time.Second) / float64(r.frame)))
	return r.frames(n)
}

func (r *runner) frames(n int) error {
	for i := 0; i < n; i++ {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.st.Frame(r.frame)
	}
	return nil
}
