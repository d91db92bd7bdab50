package analysis

import (
	"fmt"
	"math"
	"strings"
)

type Stats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Describe computes population statistics of v. An empty field yields zeros.
func Describe(v []float32) Stats {
	if len(v) == 0 {
		return Stats{}
	}
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, x := range v {
		f := float64(x)
		sum += f
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
	}
	s.Mean = sum / float64(len(v))
	ss := 0.0
	for _, x := range v {
		d := float64(x) - s.Mean
		ss += d * d
	}
	s.Std = math.Sqrt(ss / float64(len(v)))
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("mean=%.4f std=%.4f min=%.4f max=%.4f", s.Mean, s.Std, s.Min, s.Max)
}

// Histogram counts values of a unit-range field in equal-width bins. Values
// outside [0, 1] land in the end bins.
type Histogram struct {
	Counts []int
	Total  int
}

func NewHistogram(v []float32, bins int) *Histogram {
	bins = max(bins, 1)
	h := &Histogram{Counts: make([]int, bins), Total: len(v)}
	for _, x := range v {
		b := int(float64(x) * float64(bins))
		h.Counts[min(max(b, 0), bins-1)]++
	}
	return h
}

// Fractions returns each bin's share of the total.
func (h *Histogram) Fractions() []float64 {
	out := make([]float64, len(h.Counts))
	if h.Total == 0 {
		return out
	}
	for i, c := range h.Counts {
		out[i] = float64(c) / float64(h.Total)
	}
	return out
}

// Render draws the histogram as text bars of at most width characters.
func (h *Histogram) Render(width int) string {
	peak := 0
	for _, c := range h.Counts {
		peak = max(peak, c)
	}
	var sb strings.Builder
	n := len(h.Counts)
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = c * width / peak
		}
		fmt.Fprintf(&sb, "%4.2f-%4.2f |%s %d\n",
			float64(i)/float64(n), float64(i+1)/float64(n), strings.Repeat("#", bar), c)
	}
	return sb.String()
}
