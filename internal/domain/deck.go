package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidBoard is returned when a tile layout does not cover the board exactly.
var ErrInvalidBoard = errors.New("invalid board")

// TerrainDeck returns the terrain tiles of a regular board: one desert plus
// the resource terrains in standard proportion.
func TerrainDeck() []Terrain {
	deck := []Terrain{Desert}
	counts := []struct {
		t Terrain
		n int
	}{{Lumber, 4}, {Wool, 4}, {Grain, 4}, {Brick, 3}, {Ore, 3}}
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			deck = append(deck, c.t)
		}
	}
	return deck
}

// GenerateBoard lays out a shuffled regular board. The desert gets no token.
func GenerateBoard(name string, rng *rand.Rand) Board {
	terrains := TerrainDeck()
	rng.Shuffle(len(terrains), func(i, j int) { terrains[i], terrains[j] = terrains[j], terrains[i] })
	tokens := append([]int(nil), StandardTokens...)
	rng.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })

	board := Board{Name: name}
	next := 0
	for i, pos := range AllTilePositions() {
		tile := Tile{Position: pos, Terrain: terrains[i]}
		if tile.Terrain != Desert {
			tile.Token = tokens[next]
			next++
		}
		board.Tiles = append(board.Tiles, tile)
	}
	return board
}

// ValidateBoard checks that tiles cover every position once with known terrains
// and tokens in 2..12.
func ValidateBoard(b Board) error {
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBoard)
	}
	want := AllTilePositions()
	if len(b.Tiles) != len(want) {
		return fmt.Errorf("%w: %d tiles, want %d", ErrInvalidBoard, len(b.Tiles), len(want))
	}
	seen := make(map[TilePosition]bool, len(b.Tiles))
	for _, t := range b.Tiles {
		if !ValidTile(t.Position) {
			return fmt.Errorf("%w: %s out of bounds", ErrInvalidBoard, t.Position)
		}
		if seen[t.Position] {
			return fmt.Errorf("%w: duplicate %s", ErrInvalidBoard, t.Position)
		}
		seen[t.Position] = true
		if !t.Terrain.IsTerrain() {
			return fmt.Errorf("%w: unknown terrain %q", ErrInvalidBoard, t.Terrain)
		}
		if t.Terrain != Desert && (t.Token < 2 || t.Token > 12) {
			return fmt.Errorf("%w: token %d at %s", ErrInvalidBoard, t.Token, t.Position)
		}
	}
	return nil
}
