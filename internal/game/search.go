package game

// Triple is three board cards, as found by the board search.
type Triple [3]Card

// Board searches enumerate every i<j<k triple. At the bounded board sizes in
// play (at most MaxBoardSize cards) that is at most C(21,3) = 1330 checks.

// HasSet reports whether any three of cards form a Set.
func HasSet(cards []Card) bool {
	_, ok := FindSet(cards)
	return ok
}

// FindSet returns the first Set in enumeration order.
func FindSet(cards []Card) (Triple, bool) {
	n := len(cards)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if isSet(cards[i], cards[j], cards[k]) {
					return Triple{cards[i], cards[j], cards[k]}, true
				}
			}
		}
	}
	return Triple{}, false
}

// CountSets returns the number of distinct Sets among cards.
func CountSets(cards []Card) int {
	count := 0
	n := len(cards)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if isSet(cards[i], cards[j], cards[k]) {
					count++
				}
			}
		}
	}
	return count
}
