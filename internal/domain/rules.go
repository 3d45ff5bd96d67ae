package domain

// Cost is a bill of resource cards.
type Cost map[Terrain]int

var (
	RoadCost       = Cost{Lumber: 1, Brick: 1}
	SettlementCost = Cost{Brick: 1, Lumber: 1, Wool: 1, Grain: 1}
	CityCost       = Cost{Grain: 2, Ore: 3}
	CardCost       = Cost{Ore: 1, Wool: 1, Grain: 1}
)

// Total returns the number of cards in the bill.
func (c Cost) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// DevelopmentDeck is the card composition drawn from on purchase.
func DevelopmentDeck() []CardKind {
	deck := make([]CardKind, 0, 25)
	add := func(k CardKind, n int) {
		for i := 0; i < n; i++ {
			deck = append(deck, k)
		}
	}
	add(Knight, 14)
	add(VictoryPoint, 5)
	add(RoadBuilding, 2)
	add(Monopoly, 2)
	add(YearOfPlenty, 2)
	return deck
}

// StandardTokens are the production numbers of a regular board, one per non-desert tile.
var StandardTokens = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// RoadOccupied reports whether a road already joins a and b.
func RoadOccupied(roads []Road, a, b VertexPosition) bool {
	from, to := NormalizeEdge(a, b)
	for _, r := range roads {
		if r.From == from && r.To == to {
			return true
		}
	}
	return false
}

// RoadConnected reports whether a road between a and b would touch one of
// owner's roads or buildings.
func RoadConnected(owner int64, a, b VertexPosition, roads []Road, buildings []Building) bool {
	for _, bl := range buildings {
		if bl.OwnerID == owner && (bl.Position == a || bl.Position == b) {
			return true
		}
	}
	for _, r := range roads {
		if r.OwnerID == owner && (r.Touches(a) || r.Touches(b)) {
			return true
		}
	}
	return false
}

// BuildingAt returns the building standing on v.
func BuildingAt(buildings []Building, v VertexPosition) (Building, bool) {
	for _, bl := range buildings {
		if bl.Position == v {
			return bl, true
		}
	}
	return Building{}, false
}

// SpacingOK reports whether no building stands on a vertex adjacent to v.
func SpacingOK(v VertexPosition, buildings []Building) bool {
	for _, bl := range buildings {
		if AreNeighbors(v, bl.Position) {
			return false
		}
	}
	return true
}

// TouchesOwnRoad reports whether one of owner's roads ends at v.
func TouchesOwnRoad(owner int64, v VertexPosition, roads []Road) bool {
	for _, r := range roads {
		if r.OwnerID == owner && r.Touches(v) {
			return true
		}
	}
	return false
}

// OwnersAround returns the distinct owners of buildings on the corners of t.
func OwnersAround(t TilePosition, buildings []Building) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, bl := range buildings {
		if TileTouches(t, bl.Position) && !seen[bl.OwnerID] {
			seen[bl.OwnerID] = true
			out = append(out, bl.OwnerID)
		}
	}
	return out
}

// VictoryPoints scores one player's holdings: settlement 1, city 2, victory point card 1.
func VictoryPoints(owner int64, buildings []Building, cards []Card) int {
	points := 0
	for _, bl := range buildings {
		if bl.OwnerID != owner {
			continue
		}
		switch bl.Kind {
		case Settlement:
			points++
		case City:
			points += 2
		}
	}
	for _, c := range cards {
		if c.OwnerID == owner && c.Kind == VictoryPoint {
			points++
		}
	}
	return points
}
