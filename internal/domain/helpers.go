package domain

// CountTerrain returns how many cards of terrain t are in hand.
func CountTerrain(hand []Resource, t Terrain) int {
	n := 0
	for _, r := range hand {
		if r.Terrain == t {
			n++
		}
	}
	return n
}

// CanAfford reports whether hand covers the bill.
func CanAfford(hand []Resource, c Cost) bool {
	for t, n := range c {
		if CountTerrain(hand, t) < n {
			return false
		}
	}
	return true
}

// PickCards selects the cards paying the bill, oldest first. ok is false when
// hand cannot cover it.
func PickCards(hand []Resource, c Cost) (picked []Resource, ok bool) {
	need := make(Cost, len(c))
	for t, n := range c {
		need[t] = n
	}
	for _, r := range hand {
		if need[r.Terrain] > 0 {
			picked = append(picked, r)
			need[r.Terrain]--
		}
	}
	for _, n := range need {
		if n > 0 {
			return nil, false
		}
	}
	return picked, true
}

// CountCards returns how many development cards of kind k are in hand.
func CountCards(cards []Card, k CardKind) int {
	n := 0
	for _, c := range cards {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// ResourceNames flattens a hand to terrain names.
func ResourceNames(hand []Resource) []string {
	out := make([]string, 0, len(hand))
	for _, r := range hand {
		out = append(out, string(r.Terrain))
	}
	return out
}

// CardNames flattens development cards to kind names.
func CardNames(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, string(c.Kind))
	}
	return out
}
