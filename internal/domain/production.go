package domain

// HazardRoll is the dice sum that moves the robber instead of producing.
const HazardRoll = 7

// Grant is one resource card owed to a player by a production step.
type Grant struct {
	OwnerID int64
	Terrain Terrain
}

// Produce lists the resource cards a roll of sum yields. Tiles under the robber
// and deserts never produce; a city yields two cards, a settlement one.
// A hazard roll yields nothing.
func Produce(board Board, robber TilePosition, buildings []Building, sum int) []Grant {
	if sum == HazardRoll {
		return nil
	}
	var grants []Grant
	for _, tile := range board.Tiles {
		if tile.Token != sum || tile.Position == robber || !tile.Terrain.IsResource() {
			continue
		}
		for _, bl := range buildings {
			if !TileTouches(tile.Position, bl.Position) {
				continue
			}
			n := 1
			if bl.Kind == City {
				n = 2
			}
			for i := 0; i < n; i++ {
				grants = append(grants, Grant{OwnerID: bl.OwnerID, Terrain: tile.Terrain})
			}
		}
	}
	return grants
}

// GrantsByOwner groups grants by receiving player.
func GrantsByOwner(grants []Grant) map[int64][]Terrain {
	out := make(map[int64][]Terrain)
	for _, g := range grants {
		out[g.OwnerID] = append(out[g.OwnerID], g.Terrain)
	}
	return out
}
