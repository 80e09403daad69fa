package net

import (
	"github.com/benbenpetit/Seeet/internal/game"
	"github.com/benbenpetit/Seeet/internal/log"
)

// BuildStateView creates a StateView from an engine snapshot. hasSet is
// passed in because the existence search is a separate, on-demand query.
func BuildStateView(s game.State, hasSet bool) *StateView {
	sv := &StateView{
		Game:      s.Game,
		Board:     make([]CardView, 0, len(s.Board)),
		Selection: make([]string, 0, len(s.Selection)),
		Score:     s.Score,
		Phase:     s.Phase.String(),
		DeckCount: s.DeckCount,
		Pending:   s.Pending,
		HasSet:    hasSet,
		Over:      s.Over,
	}
	for i, c := range s.Board {
		cv := BuildCardView(i, c)
		cv.Selected = s.Selected(c)
		sv.Board = append(sv.Board, cv)
	}
	for _, c := range s.Selection {
		sv.Selection = append(sv.Selection, c.String())
	}
	return sv
}

// BuildCardView describes a card at a board index.
func BuildCardView(index int, c game.Card) CardView {
	return CardView{
		Index:   index,
		Name:    c.String(),
		Filling: c.Filling.String(),
		Color:   c.Color.String(),
		Shape:   c.Shape.String(),
		Size:    int(c.Size),
	}
}

// BuildEventView converts an engine event for the wire.
func BuildEventView(event log.GameEvent) *EventView {
	return &EventView{
		Seq:     event.Seq,
		Game:    event.Game,
		Phase:   event.Phase,
		Type:    event.Type.String(),
		Cards:   event.Cards,
		Score:   event.Score,
		Details: event.Details,
	}
}

// snapshotView builds the current StateView of an engine.
func snapshotView(e *game.Engine) *StateView {
	return BuildStateView(e.Snapshot(), e.HasSet())
}
