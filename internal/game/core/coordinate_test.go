package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(3, 5)
	assert.Equal(t, 3, c.X)
	assert.Equal(t, 5, c.Y)
}

func TestCoordinate_ToIndex(t *testing.T) {
	// row-major offsets cover a small board exactly once
	const width = 7
	seen := make(map[int]bool)
	for y := 0; y < width; y++ {
		for x := 0; x < width; x++ {
			seen[Coordinate{x, y}.ToIndex(width)] = true
		}
	}
	assert.Len(t, seen, width*width)
	assert.True(t, seen[0])
	assert.True(t, seen[width*width-1])
	assert.Equal(t, 15, Coordinate{1, 2}.ToIndex(width))
}

func TestCoordinate_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		coord  Coordinate
		width  int
		height int
		valid  bool
	}{
		{"Valid_Origin", Coordinate{0, 0}, 10, 10, true},
		{"Valid_Corner", Coordinate{9, 9}, 10, 10, true},
		{"Invalid_NegativeX", Coordinate{-1, 5}, 10, 10, false},
		{"Invalid_NegativeY", Coordinate{5, -1}, 10, 10, false},
		{"Invalid_XTooLarge", Coordinate{10, 5}, 10, 10, false},
		{"Invalid_YTooLarge", Coordinate{5, 10}, 10, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.coord.IsValid(tt.width, tt.height))
		})
	}
}

func TestCoordinate_Step(t *testing.T) {
	c := Coordinate{5, 5}
	assert.Equal(t, Coordinate{4, 5}, c.Step(Left))
	assert.Equal(t, Coordinate{6, 5}, c.Step(Right))
	assert.Equal(t, Coordinate{5, 4}, c.Step(Top))
	assert.Equal(t, Coordinate{5, 6}, c.Step(Bottom))

	for _, e := range Edges {
		assert.Equal(t, c, c.Step(e).Step(e.Opposite()), "step %s and back", e)
	}
}

func TestCoordinate_Neighbors(t *testing.T) {
	n := Coordinate{2, 2}.Neighbors()
	assert.Equal(t, [4]Coordinate{{1, 2}, {3, 2}, {2, 1}, {2, 3}}, n)
}

func TestCoordinate_Block(t *testing.T) {
	b := Coordinate{1, 1}.Block()
	assert.Equal(t, Coordinate{0, 0}, b[0])
	assert.Equal(t, Coordinate{1, 1}, b[4])
	assert.Equal(t, Coordinate{2, 2}, b[8])

	seen := make(map[Coordinate]bool)
	for _, c := range b {
		seen[c] = true
	}
	assert.Len(t, seen, 9)
}

func TestCoordinate_String(t *testing.T) {
	assert.Equal(t, "(85,84)", Coordinate{85, 84}.String())
	assert.Equal(t, "(-2,3)", Coordinate{-2, 3}.Add(Coordinate{0, 0}).String())
	assert.Equal(t, Coordinate{4, -6}, Coordinate{2, -3}.Scale(2))
}
