package sgf

import (
	"github.com/gongoengine/gongo/internal/sgftree"
)

// Parse reads an SGF FF[1..4] document into a Tree, per §4.G's grammar and
// parser contract: a branch-depth stack for '(' / ')', each ';' finalizing
// the accumulated property buffer as a node, every property identifier
// checked against the closed tag set, and the whole document validated
// against the root's FF version (default 1) once the FF tag is known.
func Parse(data []byte) (*sgftree.Tree[*SGFNode], error) {
	if len(data) == 0 {
		return nil, newErr(Empty)
	}

	var tree *sgftree.Tree[*SGFNode]
	var branchDepths []int
	ffVersion := 1
	firstNode := true

	i := 0
	n := len(data)
	for i < n {
		c := data[i]
		switch {
		case c == '(':
			depth := 0
			if tree != nil {
				depth = tree.Depth()
			}
			branchDepths = append(branchDepths, depth)
			i++
		case c == ')':
			if len(branchDepths) == 0 {
				return nil, newErr(ExtraParen)
			}
			target := branchDepths[len(branchDepths)-1]
			branchDepths = branchDepths[:len(branchDepths)-1]
			if tree != nil {
				for tree.Depth() > target {
					_ = tree.StepUp()
				}
			}
			i++
		case c == ';':
			i++
			node, next, err := parseNodeBody(data, i)
			if err != nil {
				return nil, err
			}
			i = next

			if firstNode {
				tree = sgftree.New(node)
				firstNode = false
				if v, ok := node.IntValue(TagFF); ok {
					ffVersion = v
				}
				if vals, ok := node.Get(TagGM); ok && len(vals) > 0 && vals[0] != "1" {
					return nil, newErr(NotAGoGame)
				}
			} else {
				tree.InsertAsChild(node)
			}
			if err := validateFF(node, ffVersion); err != nil {
				return nil, err
			}
		case c == ']':
			return nil, newErr(ExtraBracket)
		default:
			i++ // whitespace or other structural noise between nodes
		}
	}

	if firstNode {
		return nil, newErr(Empty)
	}
	if len(branchDepths) != 0 {
		return nil, newErr(MissingParen)
	}
	tree.AdvanceToRoot()
	return tree, nil
}

// parseNodeBody scans properties starting at i (just past the ';') until
// the next structural character outside any bracket.
func parseNodeBody(data []byte, i int) (*SGFNode, int, error) {
	node := NewNode()
	n := len(data)
	for i < n {
		c := data[i]
		switch {
		case c == ';' || c == '(' || c == ')':
			return node, i, nil
		case c == ']':
			return nil, i, newErr(ExtraBracket)
		case isSpace(c):
			i++
		case c >= 'A' && c <= 'Z':
			start := i
			for i < n && data[i] >= 'A' && data[i] <= 'Z' {
				i++
			}
			tag := string(data[start:i])
			if !validTags[tag] {
				return nil, i, newPropErr(UnknownProperty, tag)
			}
			for i < n && data[i] == '[' {
				i++
				var buf []byte
				for i < n && data[i] != ']' {
					if data[i] == '\\' && i+1 < n {
						buf = append(buf, data[i+1])
						i += 2
						continue
					}
					buf = append(buf, data[i])
					i++
				}
				if i < n {
					i++ // skip ']'
				}
				value := string(buf)
				if err := setTagValue(node, tag, value); err != nil {
					return nil, i, err
				}
			}
		default:
			i++
		}
	}
	return node, i, nil
}

func setTagValue(node *SGFNode, tag, value string) error {
	switch tag {
	case TagB, TagW:
		if value != "" {
			if _, ok := parseSGFVertex(value); !ok {
				return newErr(MalformedCoordinate)
			}
		}
		node.appendRaw(tag, value)
	case TagAB, TagAW, TagAE:
		node.AddStone(tag, value)
	default:
		node.appendRaw(tag, value)
	}
	return nil
}

func validateFF(node *SGFNode, ffVersion int) error {
	for _, tag := range node.PropertyTags() {
		if minFFFor(tag) > ffVersion {
			return newFFErr(tag, ffVersion)
		}
	}
	return nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// ParseSize returns the SZ value of an already-loaded tree's root as an
// int, defaulting to 19 when absent — used by loaders that accept SGF
// text whose SZ property they must also validate against {9,13,19}.
func ParseSize(root *SGFNode) int {
	if v, ok := root.IntValue(TagSZ); ok {
		return v
	}
	return 19
}
