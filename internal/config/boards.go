package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"colonos/internal/domain"
)

type boardsFile struct {
	Boards []boardDoc `yaml:"boards"`
}

type boardDoc struct {
	Name  string    `yaml:"name"`
	Tiles []tileDoc `yaml:"tiles"`
}

type tileDoc struct {
	Level   int    `yaml:"level"`
	Index   int    `yaml:"index"`
	Terrain string `yaml:"terrain"`
	Token   int    `yaml:"token"`
}

// LoadBoards reads board templates from a YAML file.
func LoadBoards(path string) ([]domain.Board, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boards: %w", err)
	}
	return ParseBoards(raw)
}

// ParseBoards decodes board templates and validates each layout.
func ParseBoards(raw []byte) ([]domain.Board, error) {
	var f boardsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("boards.yaml: %w", err)
	}
	boards := make([]domain.Board, 0, len(f.Boards))
	for _, doc := range f.Boards {
		b := domain.Board{Name: doc.Name}
		for _, t := range doc.Tiles {
			b.Tiles = append(b.Tiles, domain.Tile{
				Position: domain.TilePosition{Ring: t.Level, Index: t.Index},
				Terrain:  domain.Terrain(t.Terrain),
				Token:    t.Token,
			})
		}
		if err := domain.ValidateBoard(b); err != nil {
			return nil, fmt.Errorf("boards.yaml: board %q: %w", doc.Name, err)
		}
		boards = append(boards, b)
	}
	return boards, nil
}
