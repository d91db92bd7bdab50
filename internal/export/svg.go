// Package export writes wet masks and metric traces as standalone SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/viz"
)

const background = "#fbfaf6"

// CanvasToSVG draws every raised dot of canvas as a circle, scale pixels
// apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64, ink string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, ink)

	r := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.Dot(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceToSVG plots one trace column against tick as a polyline. It returns
// an error for unknown columns and an empty string for fewer than two
// samples.
func TraceToSVG(samples []metrics.Sample, column string, width, height int, stroke string) (string, error) {
	ys, err := metrics.Series(samples, column)
	if err != nil {
		return "", err
	}
	if len(ys) < 2 {
		return "", nil
	}

	minX, maxX := float64(samples[0].Tick), float64(samples[len(samples)-1].Tick)
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		minY, maxY = min(minY, y), max(maxY, y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<title>%s</title>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, column, stroke)

	for i, s := range samples {
		x := (float64(s.Tick) - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String(), nil
}
