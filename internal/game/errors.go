package game

import "errors"

var (
	// ErrInvalidAttribute is returned when a card is built from a value
	// outside its attribute's three-value domain.
	ErrInvalidAttribute = errors.New("invalid card attribute")

	// ErrInvalidSelection is returned when the validity check is given
	// anything other than three pairwise-distinct cards.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNotOnBoard is returned when removing a card the board does not hold.
	ErrNotOnBoard = errors.New("card not on board")
)
