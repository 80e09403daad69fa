package game

import (
	"fmt"
	"math/rand"
)

// Deck is the ordered remainder not yet placed on the board. The front of
// the deck is index 0.
type Deck []Card

// Board is the ordered sequence of face-up, selectable cards.
type Board []Card

// All Deck and Board operations return new slices and leave the receiver's
// backing array untouched, so a State snapshot can never be changed by a
// later transfer.

// Shuffle returns a uniformly shuffled copy of cards (Fisher–Yates).
func Shuffle(rng *rand.Rand, cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal shuffles a full deck and places the first initial cards on the board.
func Deal(rng *rand.Rand, initial int) (Deck, Board) {
	shuffled := Shuffle(rng, FullDeck())
	deck, board, _ := Replenish(Deck(shuffled), nil, initial)
	return deck, board
}

// Draw takes up to n cards from the front of the deck. It returns the drawn
// cards and the remaining deck.
func (d Deck) Draw(n int) ([]Card, Deck) {
	if n <= 0 || len(d) == 0 {
		return nil, d
	}
	if n > len(d) {
		n = len(d)
	}
	drawn := make([]Card, n)
	copy(drawn, d[:n])
	rest := make(Deck, len(d)-n)
	copy(rest, d[n:])
	return drawn, rest
}

// Append returns a new board with cards added at the end.
func (b Board) Append(cards ...Card) Board {
	out := make(Board, 0, len(b)+len(cards))
	out = append(out, b...)
	return append(out, cards...)
}

// Index returns the position of card on the board, or -1.
func (b Board) Index(card Card) int {
	for i, c := range b {
		if c == card {
			return i
		}
	}
	return -1
}

// Contains reports whether card is on the board.
func (b Board) Contains(card Card) bool {
	return b.Index(card) >= 0
}

// Remove returns a new board without the given cards, keeping the relative
// order of the rest. Every card must be on the board.
func (b Board) Remove(cards ...Card) (Board, error) {
	drop := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if !b.Contains(c) {
			return b, fmt.Errorf("remove %s: %w", c, ErrNotOnBoard)
		}
		drop[c] = true
	}
	out := make(Board, 0, len(b))
	for _, c := range b {
		if !drop[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Replenish moves up to count cards from the front of the deck to the end
// of the board. A short or empty deck moves what it has.
func Replenish(deck Deck, board Board, count int) (Deck, Board, []Card) {
	drawn, rest := deck.Draw(count)
	if len(drawn) == 0 {
		return deck, board, nil
	}
	return rest, board.Append(drawn...), drawn
}
