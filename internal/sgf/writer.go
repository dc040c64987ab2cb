package sgf

import (
	"strings"

	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/sgftree"
)

// Write serializes tree to SGF FF[4] text: depth-first, single-child runs
// emitted inline, multi-child branches parenthesized, Resign nodes omitted
// entirely from their parent's output (they terminate the line). The
// writer's own output re-Parses into the same nodes (less the omitted
// Resign nodes) and properties, because every escape this writer
// introduces is exactly what Parse's bracket scanner expects. A property
// with no values is written as TAG[], so it re-Parses with one empty value.
//
// Write never mutates the tree's cursor: it restores the caller's cursor
// position before returning.
func Write(tree *sgftree.Tree[*SGFNode]) string {
	origSeq := tree.SequenceFromRoot()
	tree.AdvanceToRoot()

	var sb strings.Builder
	sb.WriteByte('(')
	writeSubtree(tree, &sb)
	sb.WriteByte(')')

	tree.AdvanceToRoot()
	for _, v := range origSeq[1:] {
		_ = tree.StepTo(v)
	}
	return sb.String()
}

// writeFrame tracks one level of the explicit traversal stack: the
// non-Resign children of the node at this depth, which of them have been
// visited, and whether more than one survives (forcing parenthesization).
type writeFrame struct {
	children []*SGFNode
	idx      int
	multi    bool
}

// writeSubtree walks the tree from its current cursor with an explicit
// stack rather than Go call recursion, per the design note against deep
// recursion on long game records.
func writeSubtree(tree *sgftree.Tree[*SGFNode], sb *strings.Builder) {
	writeNode(tree.Current(), sb)
	kids := survivingChildren(tree.Children())
	stack := []writeFrame{{children: kids, idx: 0, multi: len(kids) > 1}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(top.children) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				if stack[len(stack)-1].multi {
					sb.WriteByte(')')
				}
				_ = tree.StepUp()
			}
			continue
		}
		child := top.children[top.idx]
		top.idx++
		if top.multi {
			sb.WriteByte('(')
		}
		_ = tree.StepTo(child)
		writeNode(tree.Current(), sb)
		grandkids := survivingChildren(tree.Children())
		stack = append(stack, writeFrame{children: grandkids, idx: 0, multi: len(grandkids) > 1})
	}
}

func survivingChildren(children []*SGFNode) []*SGFNode {
	out := make([]*SGFNode, 0, len(children))
	for _, c := range children {
		if c.Move().Kind != goboard.KindResign {
			out = append(out, c)
		}
	}
	return out
}

func writeNode(n *SGFNode, sb *strings.Builder) {
	sb.WriteByte(';')
	for _, tag := range n.order {
		writeProp(sb, tag, n.props[tag])
	}
	if n.move.Kind == goboard.KindPlay || n.move.Kind == goboard.KindPass {
		tag := goboard.FormatColor(n.move.Color)
		vals, _ := n.Get(tag)
		writeProp(sb, tag, vals)
	}
}

func writeProp(sb *strings.Builder, tag string, values []string) {
	sb.WriteString(tag)
	if len(values) == 0 {
		sb.WriteString("[]")
		return
	}
	for _, v := range values {
		sb.WriteByte('[')
		sb.WriteString(escapeValue(v))
		sb.WriteByte(']')
	}
}

func escapeValue(v string) string {
	var sb strings.Builder
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\\', ']':
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	return sb.String()
}
