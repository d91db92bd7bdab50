package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of a
// time series, such as a metrics trace column.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// RadialSpectrum returns the power of the mean-removed field averaged over
// rings of integer frequency radius k = 0 .. min(w, h)/2. Index k is k
// cycles across the grid, so fields in normalized coordinates keep their
// peaks at the same index at every resolution.
func RadialSpectrum(field []float32, w, h int) []float64 {
	if w <= 0 || h <= 0 || len(field) != w*h {
		return nil
	}
	mean := Describe(field).Mean
	rows := make([][]float64, h)
	for y := range rows {
		rows[y] = make([]float64, w)
		for x := range rows[y] {
			rows[y][x] = float64(field[y*w+x]) - mean
		}
	}
	spec := fft.FFT2Real(rows)

	kmax := min(w, h) / 2
	power := make([]float64, kmax+1)
	count := make([]int, kmax+1)
	norm := float64(w * h)
	for y := 0; y < h; y++ {
		fy := freq(y, h)
		for x := 0; x < w; x++ {
			fx := freq(x, w)
			k := int(math.Round(math.Hypot(float64(fx), float64(fy))))
			if k > kmax {
				continue
			}
			a := cmplx.Abs(spec[y][x]) / norm
			power[k] += a * a
			count[k]++
		}
	}
	for k := range power {
		if count[k] > 0 {
			power[k] /= float64(count[k])
		}
	}
	return power
}

// freq maps a DFT index to its signed frequency.
func freq(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}

// SpectralCentroid is the power-weighted mean frequency index, ignoring the
// DC term.
func SpectralCentroid(power []float64) float64 {
	var num, den float64
	for k := 1; k < len(power); k++ {
		num += float64(k) * power[k]
		den += power[k]
	}
	if den == 0 {
		return 0
	}
	return num / den
}
