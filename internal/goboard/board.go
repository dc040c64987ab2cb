// Package goboard implements the fixed-side Go board and the move/vertex
// vocabulary shared by the rules engine, the SGF record, and the GTP
// dispatcher.
package goboard

import (
	"fmt"
	"strings"
)

// Stone is the contents of one board intersection.
type Stone int

const (
	Empty Stone = iota
	Black
	White
)

// Opponent returns the other player's stone. Opponent(Empty) is undefined
// and panics, matching the data model's note that the operation has no
// meaning for Empty.
func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	panic("goboard: Opponent of Empty is undefined")
}

func (s Stone) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Black:
		return "Black"
	case White:
		return "White"
	}
	return fmt.Sprintf("Stone(%d)", int(s))
}

// Vertex is a 0-indexed board coordinate.
type Vertex struct {
	X, Y int
}

// Neighbors returns the up-to-four 4-connected neighbors of v, restricted
// to points that lie on a board of the given side.
func (v Vertex) Neighbors(side int) []Vertex {
	candidates := [4]Vertex{
		{v.X + 1, v.Y},
		{v.X - 1, v.Y},
		{v.X, v.Y + 1},
		{v.X, v.Y - 1},
	}
	out := make([]Vertex, 0, 4)
	for _, c := range candidates {
		if c.OnBoard(side) {
			out = append(out, c)
		}
	}
	return out
}

// OnBoard reports whether v lies within a board of the given side.
func (v Vertex) OnBoard(side int) bool {
	return v.X >= 0 && v.X < side && v.Y >= 0 && v.Y < side
}

// ValidSize reports whether side is one of the three sizes GTP and this
// engine support.
func ValidSize(side int) bool {
	return side == 9 || side == 13 || side == 19
}

// MoveKind tags the variant of a Move.
type MoveKind int

const (
	// KindNull is the sentinel move carried by the root SGF node.
	KindNull MoveKind = iota
	KindPlay
	KindPass
	KindResign
)

// Move is the tagged value described in the data model: a stone placement,
// a pass, a resignation, or the root sentinel. Equality ignores no fields.
type Move struct {
	Kind   MoveKind
	Vertex Vertex
	Color  Stone
}

// Play constructs a placement move.
func Play(v Vertex, c Stone) Move { return Move{Kind: KindPlay, Vertex: v, Color: c} }

// Pass constructs a pass move for c.
func Pass(c Stone) Move { return Move{Kind: KindPass, Color: c} }

// Resign constructs a resignation move for c.
func Resign(c Stone) Move { return Move{Kind: KindResign, Color: c} }

// Null is the sentinel move for a node carrying no move.
var Null = Move{Kind: KindNull}

// Equals compares every field of two moves.
func (m Move) Equals(other Move) bool {
	return m.Kind == other.Kind && m.Vertex == other.Vertex && m.Color == other.Color
}

func (m Move) String() string {
	switch m.Kind {
	case KindPlay:
		return fmt.Sprintf("%s %s", m.Color, formatVertex(m.Vertex))
	case KindPass:
		return fmt.Sprintf("%s Pass", m.Color)
	case KindResign:
		return fmt.Sprintf("%s Resign", m.Color)
	}
	return "Null"
}

func formatVertex(v Vertex) string {
	letters := "ABCDEFGHJKLMNOPQRSTUVWXYZ" // skips I, as GTP vertices do
	if v.X < 0 || v.X >= len(letters) {
		return fmt.Sprintf("(%d,%d)", v.X, v.Y)
	}
	return fmt.Sprintf("%c%d", letters[v.X], v.Y+1)
}

// Board is a dense side*side grid of stones. DisplayASCII and
// DisplayLowerLeft only affect String(); they never affect semantics.
type Board struct {
	Side            int
	cells           []Stone
	DisplayASCII    bool
	DisplayLowerLeft bool
}

// NewBoard allocates an empty board of the given side.
func NewBoard(side int) *Board {
	return &Board{
		Side:  side,
		cells: make([]Stone, side*side),
	}
}

func (b *Board) index(v Vertex) int { return v.Y*b.Side + v.X }

// At returns the stone at v. Callers must ensure v.OnBoard(b.Side).
func (b *Board) At(v Vertex) Stone { return b.cells[b.index(v)] }

// Set places (or clears, with Empty) a stone at v.
func (b *Board) Set(v Vertex, s Stone) { b.cells[b.index(v)] = s }

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cp := &Board{Side: b.Side, cells: make([]Stone, len(b.cells)), DisplayASCII: b.DisplayASCII, DisplayLowerLeft: b.DisplayLowerLeft}
	copy(cp.cells, b.cells)
	return cp
}

// AllVertices returns every vertex on the board, row-major.
func (b *Board) AllVertices() []Vertex {
	out := make([]Vertex, 0, len(b.cells))
	for y := 0; y < b.Side; y++ {
		for x := 0; x < b.Side; x++ {
			out = append(out, Vertex{x, y})
		}
	}
	return out
}

// String renders the board for debugging/showboard, honoring the display
// flags. It never affects legality or scoring.
func (b *Board) String() string {
	var sb strings.Builder
	yRange := make([]int, b.Side)
	for i := range yRange {
		if b.DisplayLowerLeft {
			yRange[i] = i
		} else {
			yRange[i] = b.Side - 1 - i
		}
	}
	for i, y := range yRange {
		for x := 0; x < b.Side; x++ {
			sb.WriteString(cellGlyph(b.At(Vertex{x, y}), b.DisplayASCII))
		}
		if i < len(yRange)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func cellGlyph(s Stone, ascii bool) string {
	switch s {
	case Black:
		if ascii {
			return "X"
		}
		return "@"
	case White:
		if ascii {
			return "O"
		}
		return "O"
	default:
		return "."
	}
}
