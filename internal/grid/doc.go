// Package grid holds the per-cell field buffers of one ink simulation.
//
// Every field is a flat, contiguous []float32 indexed by i = y*W + x
// (structure of arrays). The lattice distributions live in a single buffer
// laid out direction-major: F[d*N+i].
//
//   - [Grid]: the live buffers, allocated once per resolution
//   - [Arrays]: an independent deep copy used for snapshots and persistence
//   - [Pool]: recycles Arrays of one resolution
//
// # Thread Safety
//
// Grid is NOT safe for concurrent use. The simulation is single-threaded and
// driven by the host's frame callback.
package grid
