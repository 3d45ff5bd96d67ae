package domain

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Ring sizes of the board geometry.
var (
	TileRingSizes   = [3]int{1, 6, 12}
	VertexRingSizes = [3]int{6, 18, 30}
)

// ErrPositionNotFound is returned for positions outside the ring/index bounds.
var ErrPositionNotFound = errors.New("position not found")

//go:embed topology.json
var topologyJSON []byte

type topologyFile struct {
	Tiles []struct {
		Position TilePosition     `json:"position"`
		Vertices []VertexPosition `json:"vertices"`
	} `json:"tiles"`
	Vertices []struct {
		Position  VertexPosition   `json:"position"`
		Neighbors []VertexPosition `json:"neighbors"`
		Tiles     []TilePosition   `json:"tiles"`
	} `json:"vertices"`
}

type topology struct {
	tileVertices    map[TilePosition][]VertexPosition
	vertexNeighbors map[VertexPosition][]VertexPosition
	vertexTiles     map[VertexPosition][]TilePosition
}

var (
	topo     *topology
	topoOnce sync.Once
)

func loadTopology() *topology {
	topoOnce.Do(func() {
		var f topologyFile
		if err := json.Unmarshal(topologyJSON, &f); err != nil {
			panic(fmt.Sprintf("domain: corrupt embedded topology: %v", err))
		}
		t := &topology{
			tileVertices:    make(map[TilePosition][]VertexPosition, len(f.Tiles)),
			vertexNeighbors: make(map[VertexPosition][]VertexPosition, len(f.Vertices)),
			vertexTiles:     make(map[VertexPosition][]TilePosition, len(f.Vertices)),
		}
		for _, tile := range f.Tiles {
			t.tileVertices[tile.Position] = tile.Vertices
		}
		for _, v := range f.Vertices {
			t.vertexNeighbors[v.Position] = v.Neighbors
			t.vertexTiles[v.Position] = v.Tiles
		}
		topo = t
	})
	return topo
}

// ValidTile reports whether p lies inside the tile ring bounds.
func ValidTile(p TilePosition) bool {
	return p.Ring >= 0 && p.Ring < len(TileRingSizes) && p.Index >= 0 && p.Index < TileRingSizes[p.Ring]
}

// ValidVertex reports whether p lies inside the vertex ring bounds.
func ValidVertex(p VertexPosition) bool {
	return p.Ring >= 0 && p.Ring < len(VertexRingSizes) && p.Index >= 0 && p.Index < VertexRingSizes[p.Ring]
}

// TileVertices returns the six corners of a tile.
func TileVertices(p TilePosition) ([]VertexPosition, error) {
	if !ValidTile(p) {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, p)
	}
	return clone(loadTopology().tileVertices[p]), nil
}

// VertexNeighbors returns the vertices one edge away from p.
func VertexNeighbors(p VertexPosition) ([]VertexPosition, error) {
	if !ValidVertex(p) {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, p)
	}
	return clone(loadTopology().vertexNeighbors[p]), nil
}

// VertexTiles returns the tiles sharing corner p.
func VertexTiles(p VertexPosition) ([]TilePosition, error) {
	if !ValidVertex(p) {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, p)
	}
	return clone(loadTopology().vertexTiles[p]), nil
}

// AreNeighbors reports whether a and b are joined by an edge.
func AreNeighbors(a, b VertexPosition) bool {
	if !ValidVertex(a) || !ValidVertex(b) {
		return false
	}
	for _, n := range loadTopology().vertexNeighbors[a] {
		if n == b {
			return true
		}
	}
	return false
}

// TileTouches reports whether vertex v is a corner of tile t.
func TileTouches(t TilePosition, v VertexPosition) bool {
	for _, c := range loadTopology().tileVertices[t] {
		if c == v {
			return true
		}
	}
	return false
}

// AllTilePositions lists every tile ordered by ring then index.
func AllTilePositions() []TilePosition {
	out := make([]TilePosition, 0, 19)
	for ring, size := range TileRingSizes {
		for i := 0; i < size; i++ {
			out = append(out, TilePosition{Ring: ring, Index: i})
		}
	}
	return out
}

// AllVertexPositions lists every vertex ordered by ring then index.
func AllVertexPositions() []VertexPosition {
	out := make([]VertexPosition, 0, 54)
	for ring, size := range VertexRingSizes {
		for i := 0; i < size; i++ {
			out = append(out, VertexPosition{Ring: ring, Index: i})
		}
	}
	return out
}

// AllEdges lists every unordered vertex pair joined by an edge, normalized.
func AllEdges() [][2]VertexPosition {
	var out [][2]VertexPosition
	for _, v := range AllVertexPositions() {
		for _, n := range loadTopology().vertexNeighbors[v] {
			if v.Less(n) {
				out = append(out, [2]VertexPosition{v, n})
			}
		}
	}
	return out
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
