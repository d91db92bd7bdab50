// Package sim is the owned handle around one live simulation grid and the
// fixed-timestep scheduler that drives it.
//
//   - [Sim]: create, paint, step, paper, clear, snapshot and restore
//   - [Scheduler]: turns frame times into a bounded number of ticks
//
// # Example
//
//	s, _ := sim.Create(256, 256, sim.WithSeed(1))
//	s.GeneratePaper(physics.PaperConfig{Type: physics.PaperSmooth, Roughness: 50, Contrast: 50, Align: 10})
//	sched := sim.NewScheduler(s, nil)
//	sched.Enqueue(physics.BrushInput{X: 128, Y: 128, Radius: 6, Water: 1.7, Ink: 2.5})
//	sched.Advance(frameTime)
//
// # Thread Safety
//
// Sim and Scheduler are NOT thread-safe. The host drives them from one loop
// and reads the field slices only between calls.
package sim
