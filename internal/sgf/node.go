// Package sgf implements the SGF FF[4] text format: a tolerant parser and a
// round-trip-safe writer over a sgftree.Tree[*SGFNode].
package sgf

import (
	"strconv"

	"github.com/gongoengine/gongo/internal/goboard"
)

// Canonical property tags. The closed set spec.md §3 requires "at least";
// this package supports exactly these, per §4.G's unknown-property check.
const (
	TagFF = "FF"
	TagSZ = "SZ"
	TagGM = "GM"
	TagRU = "RU"
	TagKM = "KM"
	TagRE = "RE"
	TagAB = "AB"
	TagAW = "AW"
	TagAE = "AE"
	TagB  = "B"
	TagW  = "W"
	TagC  = "C"
)

var validTags = map[string]bool{
	TagFF: true, TagSZ: true, TagGM: true, TagRU: true, TagKM: true,
	TagRE: true, TagAB: true, TagAW: true, TagAE: true, TagB: true,
	TagW: true, TagC: true,
}

// minFF records the SGF file-format version each tag first became valid
// in, grounded in SGF's real history (KM arrived in FF[2]; AE and RU were
// formalized in FF[4]). Every other tag has been valid since FF[1].
var minFF = map[string]int{
	TagKM: 2,
	TagAE: 4,
	TagRU: 4,
}

func minFFFor(tag string) int {
	if v, ok := minFF[tag]; ok {
		return v
	}
	return 1
}

// MinFF returns the SGF file-format version tag first became valid in,
// for callers outside this package validating a set_property call
// against the tree's FF version.
func MinFF(tag string) int { return minFFFor(tag) }

// IsValidTag reports whether tag is one of the property tags this package
// recognizes.
func IsValidTag(tag string) bool { return validTags[tag] }

// SGFNode is one tree node: an ordered set of generic properties plus an
// optional embedded move (B or W). Nodes are always handled by pointer —
// *SGFNode is the comparable value stored in sgftree.Tree.
type SGFNode struct {
	order []string
	props map[string][]string
	move  goboard.Move
}

// NewNode returns an empty node with no move and no properties.
func NewNode() *SGFNode {
	return &SGFNode{props: make(map[string][]string), move: goboard.Null}
}

// Move returns the node's embedded move, or goboard.Null if it carries none.
func (n *SGFNode) Move() goboard.Move { return n.move }

// SetMove sets the node's embedded move (Play, Pass, Resign, or Null to
// clear it).
func (n *SGFNode) SetMove(m goboard.Move) { n.move = m }

// Get returns the raw values stored under tag, including the synthesized
// single-element slice for B/W derived from the embedded move.
func (n *SGFNode) Get(tag string) ([]string, bool) {
	switch tag {
	case TagB, TagW:
		if n.move.Kind == goboard.KindNull || goboard.FormatColor(n.move.Color) != tag {
			return nil, false
		}
		if n.move.Kind == goboard.KindPass {
			return []string{""}, true
		}
		if n.move.Kind == goboard.KindPlay {
			return []string{sgfVertex(n.move.Vertex)}, true
		}
		return nil, false
	default:
		v, ok := n.props[tag]
		return v, ok
	}
}

// Set replaces every value stored under tag.
func (n *SGFNode) Set(tag string, values []string) {
	switch tag {
	case TagB, TagW:
		n.setMoveFromValues(tag, values)
		return
	}
	if _, exists := n.props[tag]; !exists {
		n.order = append(n.order, tag)
	}
	n.props[tag] = values
}

func (n *SGFNode) setMoveFromValues(tag string, values []string) {
	color := goboard.Black
	if tag == TagW {
		color = goboard.White
	}
	if len(values) == 0 || values[0] == "" {
		n.move = goboard.Pass(color)
		return
	}
	v, ok := parseSGFVertex(values[0])
	if !ok {
		n.move = goboard.Pass(color)
		return
	}
	n.move = goboard.Play(v, color)
}

// AddStone appends vertex under tag (expected AB/AW/AE) unless it is
// already present. This is the corrected form of the reference
// implementation's addStone, whose guard condition was inverted (it
// appended only when the value was already there); here absence is what
// triggers the append.
func (n *SGFNode) AddStone(tag string, vertex string) {
	for _, v := range n.props[tag] {
		if v == vertex {
			return
		}
	}
	if _, exists := n.props[tag]; !exists {
		n.order = append(n.order, tag)
	}
	n.props[tag] = append(n.props[tag], vertex)
}

// AddStoneVertex is AddStone with the vertex pre-formatted from v, for
// callers (gogame's add/RemoveStone) that hold a goboard.Vertex rather
// than raw SGF coordinate text.
func (n *SGFNode) AddStoneVertex(tag string, v goboard.Vertex) {
	n.AddStone(tag, sgfVertex(v))
}

// appendRaw records a parsed bracket value under tag, used only while
// parsing (order-preserving, no B/W dedup logic).
func (n *SGFNode) appendRaw(tag, value string) {
	switch tag {
	case TagB, TagW:
		n.setMoveFromValues(tag, []string{value})
		return
	}
	if _, exists := n.props[tag]; !exists {
		n.order = append(n.order, tag)
	}
	n.props[tag] = append(n.props[tag], value)
}

// PropertyTags returns every tag carried by this node, generic properties
// first in insertion order, then B or W if the node carries a move.
func (n *SGFNode) PropertyTags() []string {
	tags := append([]string(nil), n.order...)
	if n.move.Kind == goboard.KindPlay || n.move.Kind == goboard.KindPass {
		tags = append(tags, goboard.FormatColor(n.move.Color))
	}
	return tags
}

// Properties returns a fresh map of every tag this node carries, B/W
// included when the node embeds a move.
func (n *SGFNode) Properties() map[string][]string {
	out := make(map[string][]string, len(n.props)+1)
	for k, v := range n.props {
		out[k] = append([]string(nil), v...)
	}
	if vals, ok := n.Get(goboard.FormatColor(n.move.Color)); n.move.Kind != goboard.KindNull && ok {
		out[goboard.FormatColor(n.move.Color)] = vals
	}
	return out
}

// IntValue parses the first value of tag as an integer, returning
// (value, true) on success.
func (n *SGFNode) IntValue(tag string) (int, bool) {
	vals, ok := n.Get(tag)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	i, err := strconv.Atoi(vals[0])
	return i, err == nil
}

// FloatValue parses the first value of tag as a float, returning
// (value, true) on success.
func (n *SGFNode) FloatValue(tag string) (float64, bool) {
	vals, ok := n.Get(tag)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(vals[0], 64)
	return f, err == nil
}

// StringValue returns the first value of tag, or "" if absent.
func (n *SGFNode) StringValue(tag string) string {
	vals, ok := n.Get(tag)
	if !ok || len(vals) == 0 {
		return ""
	}
	return vals[0]
}

const sgfCoordLetters = "abcdefghijklmnopqrstuvwxyz"

// sgfVertex renders v in SGF's two-letter coordinate form ("aa".."ss").
func sgfVertex(v goboard.Vertex) string {
	return string(sgfCoordLetters[v.X]) + string(sgfCoordLetters[v.Y])
}

// parseSGFVertex parses an SGF two-letter coordinate.
func parseSGFVertex(s string) (goboard.Vertex, bool) {
	if len(s) != 2 {
		return goboard.Vertex{}, false
	}
	x := int(s[0]) - 'a'
	y := int(s[1]) - 'a'
	if x < 0 || x > 25 || y < 0 || y > 25 {
		return goboard.Vertex{}, false
	}
	return goboard.Vertex{X: x, Y: y}, true
}
