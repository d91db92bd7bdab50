package sim

import (
	"log/slog"
	"time"

	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/physics"
)

const (
	// MaxFrameDelta caps the time one callback may add after a stall.
	MaxFrameDelta = 200 * time.Millisecond
	// MaxTicksPerFrame bounds the work done in one callback.
	MaxTicksPerFrame = 10
	// QueueCapacity is the number of pending inputs kept between ticks.
	QueueCapacity = 256
)

// TickRate is the number of ticks per second for a grid of the given size.
// Larger grids tick less often to keep frame cost bounded.
func TickRate(size int) int {
	switch {
	case size <= 256:
		return 60
	case size <= 512:
		return 30
	default:
		return 15
	}
}

// TickDuration is the simulated time covered by one tick.
func TickDuration(size int) time.Duration {
	return time.Second / time.Duration(TickRate(size))
}

// Scheduler runs fixed-duration ticks out of variable frame times. Brush
// inputs are queued and applied at the start of the next tick.
type Scheduler struct {
	sim  *Sim
	tick time.Duration
	acc  time.Duration

	queue      [QueueCapacity]physics.BrushInput
	head, size int

	dropped uint64
	log     *slog.Logger
}

func NewScheduler(s *Sim, log *slog.Logger) *Scheduler {
	return &Scheduler{
		sim:  s,
		tick: TickDuration(s.Width()),
		log:  logx.OrNop(log),
	}
}

// Enqueue schedules an input for the next tick. When the queue is full the
// oldest pending input is dropped.
func (sc *Scheduler) Enqueue(in physics.BrushInput) {
	if sc.size == QueueCapacity {
		sc.head = (sc.head + 1) % QueueCapacity
		sc.size--
		sc.dropped++
		sc.log.Warn("input queue full, dropping oldest", "dropped", sc.dropped)
	}
	sc.queue[(sc.head+sc.size)%QueueCapacity] = in
	sc.size++
}

// Advance consumes elapsed frame time and runs as many ticks as it covers, at
// most MaxTicksPerFrame. Whole ticks beyond the bound are dropped; the
// fractional remainder carries over. It returns the number of ticks run.
func (sc *Scheduler) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > MaxFrameDelta {
		elapsed = MaxFrameDelta
	}
	sc.acc += elapsed

	ran := 0
	for sc.acc >= sc.tick && ran < MaxTicksPerFrame {
		sc.Flush()
		sc.sim.Step()
		sc.acc -= sc.tick
		ran++
	}
	if sc.acc >= sc.tick {
		sc.acc %= sc.tick
	}
	return ran
}

// Flush applies every queued input now, in arrival order.
func (sc *Scheduler) Flush() {
	for sc.size > 0 {
		in := sc.queue[sc.head]
		sc.head = (sc.head + 1) % QueueCapacity
		sc.size--
		if err := sc.sim.Apply(in); err != nil {
			sc.log.Warn("input rejected", "err", err)
		}
	}
	sc.head = 0
}

// Discard drops every pending input.
func (sc *Scheduler) Discard() { sc.head, sc.size = 0, 0 }

// Reset drops pending inputs and unconsumed time.
func (sc *Scheduler) Reset() {
	sc.Discard()
	sc.acc = 0
}

func (sc *Scheduler) Pending() int                { return sc.size }
func (sc *Scheduler) Dropped() uint64             { return sc.dropped }
func (sc *Scheduler) Accumulated() time.Duration  { return sc.acc }
func (sc *Scheduler) TickDuration() time.Duration { return sc.tick }
func (sc *Scheduler) Sim() *Sim                   { return sc.sim }
