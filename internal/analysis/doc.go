// Package analysis characterizes the static and final fields of a
// simulation: summary statistics, histograms and spatial spectra.
//
//   - [Describe]: mean, standard deviation and range of a field
//   - [NewHistogram]: fixed-width bins over [0, 1]
//   - [RadialSpectrum]: radially averaged 2D power spectrum
//   - [SpectralCentroid]: mean frequency of a spectrum
//
// # Resolution Invariance
//
// Paper fields generated in normalized coordinates should look the same at
// every grid size. Compare statistics directly and spectra by centroid in
// cycles per unit length:
//
//	a := analysis.RadialSpectrum(small.Fibers, 256, 256)
//	b := analysis.RadialSpectrum(large.Fibers, 512, 512)
//	analysis.SpectralCentroid(a) // close to SpectralCentroid(b)
package analysis
