package game

import "strconv"

// --- Enums ---

// Each card attribute has exactly three values, encoded 0..2 so the
// third-card derivation can work on the raw integers.

type Filling int

const (
	FillingSolid Filling = iota
	FillingStriped
	FillingEmpty
)

func (f Filling) String() string {
	switch f {
	case FillingSolid:
		return "SOLID"
	case FillingStriped:
		return "STRIPED"
	case FillingEmpty:
		return "EMPTY"
	default:
		return "Filling(" + strconv.Itoa(int(f)) + ")"
	}
}

func (f Filling) Valid() bool { return f >= FillingSolid && f <= FillingEmpty }

type Color int

const (
	ColorGreen Color = iota
	ColorPurple
	ColorRed
)

func (c Color) String() string {
	switch c {
	case ColorGreen:
		return "GREEN"
	case ColorPurple:
		return "PURPLE"
	case ColorRed:
		return "RED"
	default:
		return "Color(" + strconv.Itoa(int(c)) + ")"
	}
}

func (c Color) Valid() bool { return c >= ColorGreen && c <= ColorRed }

type Shape int

const (
	ShapeOval Shape = iota
	ShapeLozenge
	ShapeWave
)

func (s Shape) String() string {
	switch s {
	case ShapeOval:
		return "OVAL"
	case ShapeLozenge:
		return "LOZENGE"
	case ShapeWave:
		return "WAVE"
	default:
		return "Shape(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s Shape) Valid() bool { return s >= ShapeOval && s <= ShapeWave }

// Size is the number of shapes printed on a card. Unlike the other
// attributes its values are 1..3, not 0..2.
type Size int

const (
	SizeOne   Size = 1
	SizeTwo   Size = 2
	SizeThree Size = 3
)

func (s Size) String() string {
	return strconv.Itoa(int(s))
}

func (s Size) Valid() bool { return s >= SizeOne && s <= SizeThree }

// Phase is the state of the selection/resolution machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseEvaluating
	PhaseResolvingSuccess
	PhaseResolvingFail
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseSelecting:
		return "Selecting"
	case PhaseEvaluating:
		return "Evaluating"
	case PhaseResolvingSuccess:
		return "Resolving (Set)"
	case PhaseResolvingFail:
		return "Resolving (no Set)"
	default:
		return "Unknown"
	}
}

// Resolving reports whether a delayed resolution is pending in this phase.
func (p Phase) Resolving() bool {
	return p == PhaseResolvingSuccess || p == PhaseResolvingFail
}

// Outcome describes what a user command did. Boundary conditions of play
// (a fourth card, an empty deck) are outcomes, not errors.
type Outcome int

const (
	OutcomeApplied  Outcome = iota // state changed
	OutcomeIgnored                 // no-op: stale card, full selection, empty deck
	OutcomeRejected                // a resolution is in flight
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
