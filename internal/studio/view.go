package studio

import "fmt"

// View selects which field the renderer shows.
type View string

const (
	ViewPigment  View = "pigment"
	ViewVelocity View = "velocity"
	ViewDensity  View = "density"
	ViewFibers   View = "fibers"
)

var Views = []View{ViewPigment, ViewVelocity, ViewDensity, ViewFibers}

func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Next returns the view after v, wrapping around.
func (v View) Next() View {
	for i, w := range Views {
		if w == v {
			return Views[(i+1)%len(Views)]
		}
	}
	return ViewPigment
}
