// Package physics advances the fields of a [grid.Grid] one tick at a time.
//
// The package is a set of plain functions over a grid:
//
//   - [StepFluid]: D2Q9 lattice-Boltzmann BGK collision and streaming
//   - [StepPigment]: advection, bleed and fixation of floating pigment
//   - [ApplyBrush]: deposits water and pigment under a brush footprint
//   - [GeneratePaper]: builds the static fibre field
//
// User controls are slider values in 0..100 carried by [Params] and
// [PaperConfig]; the mapping to lattice units lives here and nowhere else.
//
// # Tick
//
// One tick is fluid then pigment:
//
//	recovered := physics.StepFluid(g, params)
//	physics.StepPigment(g, params, paper.Align)
//
// Neither call allocates. Walls reflect, so fluid and pigment never leave
// the grid; floating plus fixed pigment per channel only shrinks, through a
// small evaporation loss.
package physics
