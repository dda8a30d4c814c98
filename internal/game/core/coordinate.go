package core

import "fmt"

// Coordinate is a board cell. X grows to the right and Y grows downward, so
// Top is Y-1.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinate(x, y int) Coordinate { return Coordinate{X: x, Y: y} }

// IsValid reports whether c lies on a width x height board
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < width && c.Y < height
}

// ToIndex is c's row-major offset on a board width cells wide
func (c Coordinate) ToIndex(width int) int { return c.Y*width + c.X }

func (c Coordinate) Add(o Coordinate) Coordinate { return Coordinate{X: c.X + o.X, Y: c.Y + o.Y} }

func (c Coordinate) Scale(k int) Coordinate { return Coordinate{X: c.X * k, Y: c.Y * k} }

// Step is the cell across edge e
func (c Coordinate) Step(e Edge) Coordinate { return c.Add(e.Delta()) }

// Neighbors lists the cells across each edge, in the order of Edges
func (c Coordinate) Neighbors() [4]Coordinate {
	var out [4]Coordinate
	for i, e := range Edges {
		out[i] = c.Step(e)
	}
	return out
}

// Block is the 3x3 square around c, top row first. It can reach off the board.
func (c Coordinate) Block() [9]Coordinate {
	var out [9]Coordinate
	for i := range out {
		out[i] = Coordinate{X: c.X + i%3 - 1, Y: c.Y + i/3 - 1}
	}
	return out
}

func (c Coordinate) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }
