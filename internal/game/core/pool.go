package core

import (
	"fmt"
	"slices"
	"sort"
)

// Rand is the randomness a pool draw needs. *rand.Rand from golang.org/x/exp/rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// TilePool holds the undrawn tiles of the current phase, indexed by type.
// Tiles leave the pool only through Take and Draw.
type TilePool struct {
	byType map[string][]*Tile
	types  []string
	size   int
}

func newPoolFrom(specs []TileSpec) *TilePool {
	p := &TilePool{byType: make(map[string][]*Tile)}
	for _, s := range specs {
		for i := 1; i <= s.Count; i++ {
			t, err := s.build(fmt.Sprintf("%s%d", s.Type, i))
			if err != nil {
				// catalogs are validated before pools are built
				panic(err)
			}
			p.add(t)
		}
	}
	return p
}

// NewTilePool builds a pool from loose tiles.
func NewTilePool(tiles ...*Tile) *TilePool {
	p := &TilePool{byType: make(map[string][]*Tile)}
	for _, t := range tiles {
		p.add(t)
	}
	return p
}

func (p *TilePool) add(t *Tile) {
	if _, ok := p.byType[t.Type]; !ok {
		p.types = append(p.types, t.Type)
		sort.Strings(p.types)
	}
	p.byType[t.Type] = append(p.byType[t.Type], t)
	p.size++
}

// Len is the number of tiles left.
func (p *TilePool) Len() int { return p.size }

// Empty reports whether the pool is exhausted.
func (p *TilePool) Empty() bool { return p.size == 0 }

// Count is the number of tiles of tileType left.
func (p *TilePool) Count(tileType string) int { return len(p.byType[tileType]) }

// Counts returns the remaining count per type.
func (p *TilePool) Counts() map[string]int {
	out := make(map[string]int, len(p.types))
	for _, typ := range p.types {
		if n := len(p.byType[typ]); n > 0 {
			out[typ] = n
		}
	}
	return out
}

// Take removes and returns the first remaining tile of tileType.
func (p *TilePool) Take(tileType string) (*Tile, bool) {
	tiles := p.byType[tileType]
	if len(tiles) == 0 {
		return nil, false
	}
	t := tiles[0]
	p.byType[tileType] = slices.Delete(tiles, 0, 1)
	p.size--
	return t, true
}

// TakeID removes the tile with the given ID. The replayer uses it to mirror
// recorded draws.
func (p *TilePool) TakeID(tileType, id string) (*Tile, bool) {
	tiles := p.byType[tileType]
	for i, t := range tiles {
		if t.ID == id {
			p.byType[tileType] = slices.Delete(tiles, i, i+1)
			p.size--
			return t, true
		}
	}
	return nil, false
}

// Draw removes up to n tiles chosen uniformly with rng. The walk order is by
// sorted type code so the same seed always draws the same tiles.
func (p *TilePool) Draw(rng Rand, n int) []*Tile {
	var out []*Tile
	for i := 0; i < n && p.size > 0; i++ {
		k := rng.Intn(p.size)
		for _, typ := range p.types {
			tiles := p.byType[typ]
			if k < len(tiles) {
				out = append(out, tiles[k])
				p.byType[typ] = slices.Delete(tiles, k, k+1)
				p.size--
				break
			}
			k -= len(tiles)
		}
	}
	return out
}
