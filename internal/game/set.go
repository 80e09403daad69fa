package game

import "fmt"

// thirdValue returns the value a third card must hold for one attribute,
// given the first two. Values are in 0..2: equal inputs yield the same
// value, distinct inputs yield the one that is left, and both cases are
// (3 - a - b) mod 3.
func thirdValue(a, b int) int {
	return ((3-a-b)%3 + 3) % 3
}

// ThirdCard returns the unique card completing a Set with a and b. If a and
// b are equal the result is that same card.
func ThirdCard(a, b Card) Card {
	return Card{
		Filling: Filling(thirdValue(int(a.Filling), int(b.Filling))),
		Color:   Color(thirdValue(int(a.Color), int(b.Color))),
		Shape:   Shape(thirdValue(int(a.Shape), int(b.Shape))),
		Size:    Size(thirdValue(int(a.Size)-1, int(b.Size)-1) + 1),
	}
}

// IsSet reports whether exactly three pairwise-distinct cards form a Set:
// each attribute is all-same or all-different across them. Any other input
// is ErrInvalidSelection.
func IsSet(cards ...Card) (bool, error) {
	if len(cards) != 3 {
		return false, fmt.Errorf("want 3 cards, got %d: %w", len(cards), ErrInvalidSelection)
	}
	a, b, c := cards[0], cards[1], cards[2]
	if a == b || a == c || b == c {
		return false, fmt.Errorf("duplicate card in %s, %s, %s: %w", a, b, c, ErrInvalidSelection)
	}
	for _, card := range cards {
		if !card.Valid() {
			return false, fmt.Errorf("card %s: %w", card, ErrInvalidSelection)
		}
	}
	return isSet(a, b, c), nil
}

// isSet is the unchecked form used by the board search, where inputs are
// already known to be distinct board cards.
func isSet(a, b, c Card) bool {
	return ThirdCard(a, b) == c
}
