package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/inksim/internal/grid"
)

// Sample is one row of a Trace.
type Sample struct {
	Tick     uint64
	Floating float64
	Fixed    float64
	WetArea  float64
	MaxSpeed float64
	Energy   float64
}

// Columns names the CSV columns written by Trace, in order.
var Columns = []string{"tick", "floating", "fixed", "wet_area", "max_speed", "kinetic_energy"}

// Trace is an observer that samples whole-grid totals every few ticks.
type Trace struct {
	every   uint64
	samples []Sample
}

// NewTrace samples every n ticks; n below one samples every tick.
func NewTrace(every int) *Trace {
	return &Trace{every: uint64(max(every, 1))}
}

func (t *Trace) OnTick(g *grid.Grid, tick uint64) {
	if tick%t.every != 0 {
		return
	}
	s := Sample{
		Tick:     tick,
		WetArea:  wetArea(g),
		MaxSpeed: float64(maxSpeed(g)),
		Energy:   kinetic(g),
	}
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		fl, fx := g.PigmentMass(c)
		s.Floating += fl
		s.Fixed += fx
	}
	t.samples = append(t.samples, s)
}

func (t *Trace) Samples() []Sample { return t.samples }
func (t *Trace) Len() int          { return len(t.samples) }
func (t *Trace) Reset()            { t.samples = t.samples[:0] }

// Series returns one column by name, for plotting.
func (t *Trace) Series(column string) ([]float64, error) { return Series(t.samples, column) }

// Series extracts one named column from samples.
func Series(samples []Sample, column string) ([]float64, error) {
	idx := -1
	for i, c := range Columns {
		if c == column {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.values()[idx]
	}
	return out, nil
}

func (s Sample) values() [6]float64 {
	return [6]float64{float64(s.Tick), s.Floating, s.Fixed, s.WetArea, s.MaxSpeed, s.Energy}
}

// WriteCSV writes a header row and one row per sample.
func (t *Trace) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	row := make([]string, len(Columns))
	for _, s := range t.samples {
		row[0] = strconv.FormatUint(s.Tick, 10)
		vals := s.values()
		for i, v := range vals[1:] {
			row[i+1] = strconv.FormatFloat(v, 'g', 8, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Sample, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]Sample, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) != len(Columns) {
			return nil, fmt.Errorf("row %d: %d fields, want %d", n+1, len(rec), len(Columns))
		}
		tick, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+1, err)
		}
		var v [5]float64
		for i := range v {
			if v[i], err = strconv.ParseFloat(rec[i+1], 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", n+1, err)
			}
		}
		out = append(out, Sample{Tick: tick, Floating: v[0], Fixed: v[1], WetArea: v[2], MaxSpeed: v[3], Energy: v[4]})
	}
	return out, nil
}
