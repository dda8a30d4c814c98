package core

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultCatalogYAML []byte

// TileSpec describes one tile type. Edges are left, right, top, bottom.
type TileSpec struct {
	Type      string   `yaml:"type"`
	Count     int      `yaml:"count"`
	Edges     []string `yaml:"edges"`
	Modifiers []string `yaml:"modifiers"`
}

// Catalog is the full tile set of a game.
type Catalog struct {
	Start TileSpec   `yaml:"start"`
	End   TileSpec   `yaml:"end"`
	River []TileSpec `yaml:"river"`
	Base  []TileSpec `yaml:"base"`
}

// DefaultCatalog returns the embedded standard tile set.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog override file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every spec decodes and that type codes are unique.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	check := func(s TileSpec, counted bool) error {
		if s.Type == "" {
			return fmt.Errorf("catalog: tile with empty type")
		}
		if seen[s.Type] {
			return fmt.Errorf("catalog: duplicate tile type %s", s.Type)
		}
		seen[s.Type] = true
		if counted && s.Count <= 0 {
			return fmt.Errorf("catalog: tile %s: count must be positive, got %d", s.Type, s.Count)
		}
		_, err := s.build(s.Type)
		return err
	}
	if err := check(c.Start, false); err != nil {
		return err
	}
	if err := check(c.End, false); err != nil {
		return err
	}
	for _, s := range c.River {
		if err := check(s, true); err != nil {
			return err
		}
	}
	for _, s := range c.Base {
		if err := check(s, true); err != nil {
			return err
		}
	}
	return nil
}

func (s TileSpec) build(id string) (*Tile, error) {
	if len(s.Edges) != 4 {
		return nil, fmt.Errorf("catalog: tile %s: want 4 edges, got %d", s.Type, len(s.Edges))
	}
	var edges [4]StructureType
	for i, name := range s.Edges {
		st, err := ParseStructureType(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: tile %s: %w", s.Type, err)
		}
		edges[i] = st
	}
	mods := make([]Modifier, 0, len(s.Modifiers))
	for _, name := range s.Modifiers {
		m, err := ParseModifier(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: tile %s: %w", s.Type, err)
		}
		mods = append(mods, m)
	}
	return NewTile(id, s.Type, edges, mods...), nil
}

// StartTile creates the river start tile.
func (c *Catalog) StartTile() *Tile {
	t, _ := c.Start.build(c.Start.Type)
	return t
}

// EndTile creates the river end tile.
func (c *Catalog) EndTile() *Tile {
	t, _ := c.End.build(c.End.Type)
	return t
}

// RiverPool creates the pool of river tiles, excluding start and end.
func (c *Catalog) RiverPool() *TilePool { return newPoolFrom(c.River) }

// BasePool creates the pool of base tiles.
func (c *Catalog) BasePool() *TilePool { return newPoolFrom(c.Base) }

// Spec looks up a tile type across the whole catalog.
func (c *Catalog) Spec(tileType string) (TileSpec, bool) {
	for _, group := range [][]TileSpec{{c.Start, c.End}, c.River, c.Base} {
		for _, s := range group {
			if s.Type == tileType {
				return s, true
			}
		}
	}
	return TileSpec{}, false
}

// NewTileOfType builds a single tile of the given type with the given ID.
// Tests and the replayer use it to recreate tiles outside a pool.
func (c *Catalog) NewTileOfType(tileType, id string) (*Tile, error) {
	s, ok := c.Spec(tileType)
	if !ok {
		return nil, fmt.Errorf("catalog: unknown tile type %s", tileType)
	}
	return s.build(id)
}
