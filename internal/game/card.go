package game

import (
	"fmt"
	"strconv"
	"strings"
)

// DeckSize is the number of distinct cards: 3^4.
const DeckSize = 81

// Card is an immutable attribute tuple. Two cards are equal iff all four
// attributes match, so Card values compare with ==.
type Card struct {
	Filling Filling
	Color   Color
	Shape   Shape
	Size    Size
}

// NewCard builds a card, rejecting any value outside its domain.
func NewCard(f Filling, c Color, s Shape, n Size) (Card, error) {
	switch {
	case !f.Valid():
		return Card{}, fmt.Errorf("filling %d: %w", int(f), ErrInvalidAttribute)
	case !c.Valid():
		return Card{}, fmt.Errorf("color %d: %w", int(c), ErrInvalidAttribute)
	case !s.Valid():
		return Card{}, fmt.Errorf("shape %d: %w", int(s), ErrInvalidAttribute)
	case !n.Valid():
		return Card{}, fmt.Errorf("size %d: %w", int(n), ErrInvalidAttribute)
	}
	return Card{Filling: f, Color: c, Shape: s, Size: n}, nil
}

// Valid reports whether every attribute is in its domain. The zero Card is
// not valid (size 0).
func (c Card) Valid() bool {
	return c.Filling.Valid() && c.Color.Valid() && c.Shape.Valid() && c.Size.Valid()
}

// String returns the compact form used on the wire, e.g. "SOLID-GREEN-OVAL-1".
func (c Card) String() string {
	return fmt.Sprintf("%s-%s-%s-%s", c.Filling, c.Color, c.Shape, c.Size)
}

// ParseCard parses the form produced by Card.String. Matching is case-insensitive.
func ParseCard(s string) (Card, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "-")
	if len(parts) != 4 {
		return Card{}, fmt.Errorf("parse card %q: want FILLING-COLOR-SHAPE-SIZE: %w", s, ErrInvalidAttribute)
	}

	f, ok := lookup(parts[0], FillingSolid, FillingStriped, FillingEmpty)
	if !ok {
		return Card{}, fmt.Errorf("parse card %q: filling %q: %w", s, parts[0], ErrInvalidAttribute)
	}
	c, ok := lookup(parts[1], ColorGreen, ColorPurple, ColorRed)
	if !ok {
		return Card{}, fmt.Errorf("parse card %q: color %q: %w", s, parts[1], ErrInvalidAttribute)
	}
	sh, ok := lookup(parts[2], ShapeOval, ShapeLozenge, ShapeWave)
	if !ok {
		return Card{}, fmt.Errorf("parse card %q: shape %q: %w", s, parts[2], ErrInvalidAttribute)
	}
	n, err := strconv.Atoi(parts[3])
	if err != nil {
		return Card{}, fmt.Errorf("parse card %q: size %q: %w", s, parts[3], ErrInvalidAttribute)
	}
	return NewCard(f, c, sh, Size(n))
}

func lookup[T fmt.Stringer](name string, values ...T) (T, bool) {
	for _, v := range values {
		if v.String() == name {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FullDeck returns all 81 cards once each, in canonical order
// (filling, then color, then shape, then size).
func FullDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for f := FillingSolid; f <= FillingEmpty; f++ {
		for c := ColorGreen; c <= ColorRed; c++ {
			for s := ShapeOval; s <= ShapeWave; s++ {
				for n := SizeOne; n <= SizeThree; n++ {
					deck = append(deck, Card{Filling: f, Color: c, Shape: s, Size: n})
				}
			}
		}
	}
	return deck
}
