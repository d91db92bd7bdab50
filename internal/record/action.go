package record

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/inksim/internal/physics"
)

// Kind tags a recorded action.
type Kind string

const (
	KindInput       Kind = "input"
	KindParamChange Kind = "param_change"
	KindPaperChange Kind = "paper_change"
	KindClear       Kind = "clear"
	KindRegenPaper  Kind = "regen_paper"
	KindToggleView  Kind = "toggle_view"
	KindUndo        Kind = "undo"
	KindRedo        Kind = "redo"
)

// InputEvent is one brush dab as the host sent it. StrokeStart marks the
// first dab of a stroke, before which the canvas is snapshotted for undo.
type InputEvent struct {
	physics.BrushInput
	StrokeStart bool `json:"stroke_start,omitempty"`
}

// Action is one entry of the append-only session log. T is seconds on the
// session clock; exactly one payload matching Kind is set.
type Action struct {
	T      float64              `json:"t"`
	Kind   Kind                 `json:"type"`
	Input  *InputEvent          `json:"input,omitempty"`
	Params *physics.Params      `json:"params,omitempty"`
	Paper  *physics.PaperConfig `json:"paper,omitempty"`
	View   string               `json:"view,omitempty"`
}

// At returns T as a duration.
func (a Action) At() time.Duration {
	return time.Duration(math.Round(a.T * float64(time.Second)))
}

func seconds(d time.Duration) float64 { return d.Seconds() }

func InputAction(at time.Duration, ev InputEvent) Action {
	return Action{T: seconds(at), Kind: KindInput, Input: &ev}
}

func ParamAction(at time.Duration, p physics.Params) Action {
	return Action{T: seconds(at), Kind: KindParamChange, Params: &p}
}

func PaperAction(at time.Duration, cfg physics.PaperConfig) Action {
	return Action{T: seconds(at), Kind: KindPaperChange, Paper: &cfg}
}

func RegenAction(at time.Duration, cfg physics.PaperConfig) Action {
	return Action{T: seconds(at), Kind: KindRegenPaper, Paper: &cfg}
}

func ClearAction(at time.Duration) Action {
	return Action{T: seconds(at), Kind: KindClear}
}

func ToggleViewAction(at time.Duration, view string) Action {
	return Action{T: seconds(at), Kind: KindToggleView, View: view}
}

func UndoAction(at time.Duration) Action {
	return Action{T: seconds(at), Kind: KindUndo}
}

func RedoAction(at time.Duration) Action {
	return Action{T: seconds(at), Kind: KindRedo}
}

// Validate checks the timestamp and that the payload matches the kind.
func (a Action) Validate() error {
	if math.IsNaN(a.T) || math.IsInf(a.T, 0) || a.T < 0 {
		return fmt.Errorf("%w: bad timestamp %v", ErrMalformedAction, a.T)
	}
	switch a.Kind {
	case KindInput:
		if a.Input == nil {
			return fmt.Errorf("%w: input without payload", ErrMalformedAction)
		}
		if !a.Input.Finite() {
			return fmt.Errorf("%w: non-finite input", ErrMalformedAction)
		}
		if a.Input.Brush != "" {
			if _, err := physics.ParseBrushType(string(a.Input.Brush)); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedAction, err)
			}
		}
	case KindParamChange:
		if a.Params == nil {
			return fmt.Errorf("%w: param_change without params", ErrMalformedAction)
		}
	case KindPaperChange, KindRegenPaper:
		if a.Paper == nil {
			return fmt.Errorf("%w: %s without paper", ErrMalformedAction, a.Kind)
		}
	case KindToggleView:
		if a.View == "" {
			return fmt.Errorf("%w: toggle_view without view", ErrMalformedAction)
		}
	case KindClear, KindUndo, KindRedo:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedAction, a.Kind)
	}
	return nil
}
