// Package gogame composes the rules engine (internal/rules) with the SGF
// game tree (internal/sgftree + internal/sgf) into the single object every
// mutation goes through, per component H: the board and the tree are kept
// in lockstep so neither can be observed out of sync with the other.
package gogame

import (
	"fmt"
	"strconv"

	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/rules"
	"github.com/gongoengine/gongo/internal/sgf"
	"github.com/gongoengine/gongo/internal/sgftree"
)

// rootTags are the SGF properties that always live on the tree's root
// node regardless of which node is current, matching the reference
// implementation's "file-wide" property classification.
var rootTags = map[string]bool{
	sgf.TagFF: true,
	sgf.TagSZ: true,
	sgf.TagGM: true,
	sgf.TagRU: true,
	sgf.TagKM: true,
	sgf.TagRE: true,
}

// Game is a rules engine and an SGF tree, mutated together by every
// exported method so that the tree's cursor and the engine's board always
// describe the same position (invariant §3.7).
type Game struct {
	engine *rules.Engine
	tree   *sgftree.Tree[*sgf.SGFNode]
}

// New creates a Game on an empty board of the given side, rules, and komi,
// with a freshly rooted tree carrying FF=4, SZ=side, GM=1, and RU set to
// the rules' SGF name.
func New(side int, rk rules.RulesKind, komi float64) *Game {
	root := sgf.NewNode()
	root.Set(sgf.TagFF, []string{"4"})
	root.Set(sgf.TagGM, []string{"1"})
	root.Set(sgf.TagSZ, []string{strconv.Itoa(side)})
	root.Set(sgf.TagRU, []string{rk.String()})
	root.Set(sgf.TagKM, []string{strconv.FormatFloat(komi, 'g', -1, 64)})

	return &Game{
		engine: rules.NewEngine(side, rk, komi),
		tree:   sgftree.New(root),
	}
}

// FromTree adopts an already-parsed tree (e.g. from sgf.Parse), seeding
// side/rules/komi from its root metadata. The engine starts empty at the
// tree's current cursor; callers that want the board to reflect a
// position other than the root should follow with StepUp or
// PlayDefaultSequence-style navigation.
func FromTree(tree *sgftree.Tree[*sgf.SGFNode]) *Game {
	root := tree.Root()
	side := sgf.ParseSize(root)

	rk := rules.Chinese
	if ru := root.StringValue(sgf.TagRU); ru != "" {
		rk = rules.ParseRulesKind(ru)
	}

	komi, ok := root.FloatValue(sgf.TagKM)
	if !ok {
		komi = defaultKomi(rk)
	}

	return &Game{
		engine: rules.NewEngine(side, rk, komi),
		tree:   tree,
	}
}

func defaultKomi(rk rules.RulesKind) float64 {
	if rk == rules.Chinese {
		return 7.5
	}
	return 6.5
}

// Engine exposes the underlying rules engine for read-only queries
// (board contents, legality, scoring) that don't need to go through Game.
func (g *Game) Engine() *rules.Engine { return g.engine }

// Tree exposes the underlying SGF tree for read-only navigation.
func (g *Game) Tree() *sgftree.Tree[*sgf.SGFNode] { return g.tree }

// ActiveColor implements the correct-color check: walk up from the
// current node through any setup-only nodes (Move().Kind == KindNull)
// to the nearest move-bearing ancestor, and return the opposite color;
// Black is active if the walk reaches the root without finding one. It
// never moves the cursor — sequence_from_root() already hands back the
// whole ancestor chain, so there's no need for the reference
// implementation's step-up-then-step-back-down dance.
func (g *Game) ActiveColor() goboard.Stone {
	seq := g.tree.SequenceFromRoot()
	for i := len(seq) - 1; i >= 0; i-- {
		switch seq[i].Move().Kind {
		case goboard.KindPlay, goboard.KindPass, goboard.KindResign:
			return seq[i].Move().Color.Opponent()
		}
	}
	return goboard.Black
}

// playEngineOnly runs a move through the rules engine alone, without
// touching the tree; used by operations that replay or re-point at nodes
// that already exist.
func (g *Game) playEngineOnly(m goboard.Move) error {
	switch m.Kind {
	case goboard.KindPlay, goboard.KindPass, goboard.KindResign:
		return g.engine.Play(m)
	default:
		return fmt.Errorf("gogame: cannot play a Null move")
	}
}

// Play validates move with the rules engine; if legal, applies it to the
// board and inserts a new child node under the cursor (carrying the B/W
// property, with an empty value for Pass, or none for Resign), stepping
// into it. Resign also sets
// RE on the root; two consecutive passes set RE to an empty value,
// marking the game over by score rather than by forfeit.
func (g *Game) Play(m goboard.Move) error {
	if err := g.playEngineOnly(m); err != nil {
		return err
	}

	node := sgf.NewNode()
	node.SetMove(m)
	g.tree.InsertAsChild(node)

	switch {
	case m.Kind == goboard.KindResign:
		g.tree.Root().Set(sgf.TagRE, []string{g.engine.Result()})
	case m.Kind == goboard.KindPass && g.engine.PassCount() >= 2:
		g.tree.Root().Set(sgf.TagRE, []string{})
	}
	return nil
}

// Add validates move as an add-move (ignoring whose turn it is) and
// records it under AB/AW of the *current* node rather than inserting a
// new child.
func (g *Game) Add(m goboard.Move) error {
	if m.Kind != goboard.KindPlay {
		return fmt.Errorf("gogame: Add requires a placement move")
	}
	if err := g.engine.Add(m); err != nil {
		return err
	}
	tag := sgf.TagAB
	if m.Color == goboard.White {
		tag = sgf.TagAW
	}
	g.tree.Current().AddStoneVertex(tag, m.Vertex)
	return nil
}

// RemoveStone is the AE counterpart to Add: clears a stone from the board
// (splitting its group if removal disconnects it) and records the vertex
// under AE of the current node.
func (g *Game) RemoveStone(v goboard.Vertex) error {
	if err := g.engine.RemoveStone(v); err != nil {
		return err
	}
	g.tree.Current().AddStoneVertex(sgf.TagAE, v)
	return nil
}

// StepUp captures the move sequence from root to the cursor, resets the
// engine, and replays every move up to (but not including) the last n,
// following the tree's own branch back down node by node. n == 0 at the
// root is a no-op.
func (g *Game) StepUp(n int) error {
	if n == 0 {
		return nil
	}
	seq := g.tree.SequenceFromRoot()
	if n > len(seq)-1 {
		return newErr(CannotStepPastRoot)
	}

	g.engine.Reset()
	g.tree.AdvanceToRoot()

	target := len(seq) - 1 - n
	for i := 0; i < target; i++ {
		node := seq[1+i]
		if err := g.playEngineOnly(node.Move()); err != nil {
			return fmt.Errorf("gogame: replay during step_up failed: %w", err)
		}
		if err := g.tree.StepTo(node); err != nil {
			return fmt.Errorf("gogame: replay during step_up failed: %w", err)
		}
	}
	return nil
}

// PlayDefaultSequence plays, from the current cursor, the move recorded
// by child index 0 repeatedly until a leaf is reached. Children already
// exist in the tree, so only the engine side replays; the cursor follows
// the existing nodes rather than inserting duplicates.
func (g *Game) PlayDefaultSequence() error {
	for !g.tree.IsLeaf() {
		child := g.tree.Children()[0]
		if err := g.playEngineOnly(child.Move()); err != nil {
			return err
		}
		if err := g.tree.StepDown(0); err != nil {
			return err
		}
	}
	return nil
}

// PlayDefaultSequenceN is PlayDefaultSequence bounded to at most n steps,
// stopping early at a leaf — the "advance the first N moves" half of
// loadsgf's two-argument form.
func (g *Game) PlayDefaultSequenceN(n int) error {
	for i := 0; i < n && !g.tree.IsLeaf(); i++ {
		child := g.tree.Children()[0]
		if err := g.playEngineOnly(child.Move()); err != nil {
			return err
		}
		if err := g.tree.StepDown(0); err != nil {
			return err
		}
	}
	return nil
}

// PlayMoveSequence attempts each move in order via Play. On the first
// illegal move, the game is rolled back to exactly the position it was in
// before this call, and the original error is returned.
func (g *Game) PlayMoveSequence(moves []goboard.Move) error {
	checkpoint := g.tree.SequenceFromRoot()
	for _, m := range moves {
		if err := g.Play(m); err != nil {
			g.restoreTo(checkpoint)
			return err
		}
	}
	return nil
}

func (g *Game) restoreTo(seq []*sgf.SGFNode) {
	g.engine.Reset()
	g.tree.AdvanceToRoot()
	for _, node := range seq[1:] {
		_ = g.playEngineOnly(node.Move())
		_ = g.tree.StepTo(node)
	}
}

// GetSequences enumerates every root-to-leaf line under the current node,
// as the sequence of moves from the current node down to each leaf. A
// current node that is itself a leaf yields a single empty sequence. The
// walk is iterative (an explicit stack, mirroring sgf.Write's traversal)
// rather than recursive, per the design note against deep tree recursion,
// and restores the cursor to its starting position before returning.
func (g *Game) GetSequences() [][]goboard.Move {
	origSeq := g.tree.SequenceFromRoot()

	var sequences [][]goboard.Move
	var path []goboard.Move

	type frame struct {
		children []*sgf.SGFNode
		idx      int
	}

	kids := g.tree.Children()
	if len(kids) == 0 {
		sequences = append(sequences, append([]goboard.Move(nil), path...))
	} else {
		stack := []frame{{children: kids, idx: 0}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.idx >= len(top.children) {
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					path = path[:len(path)-1]
					_ = g.tree.StepUp()
				}
				continue
			}
			child := top.children[top.idx]
			top.idx++
			_ = g.tree.StepTo(child)
			path = append(path, child.Move())

			grandkids := g.tree.Children()
			if len(grandkids) == 0 {
				sequences = append(sequences, append([]goboard.Move(nil), path...))
				path = path[:len(path)-1]
				_ = g.tree.StepUp()
			} else {
				stack = append(stack, frame{children: grandkids, idx: 0})
			}
		}
	}

	g.tree.AdvanceToRoot()
	for _, n := range origSeq[1:] {
		_ = g.tree.StepTo(n)
	}
	return sequences
}

// GetProperties merges the root node's properties with the current
// node's; on collision the current node wins.
func (g *Game) GetProperties() map[string][]string {
	out := make(map[string][]string)
	for k, v := range g.tree.Root().Properties() {
		out[k] = v
	}
	if !g.tree.IsRoot() {
		for k, v := range g.tree.Current().Properties() {
			out[k] = v
		}
	}
	return out
}

// SetProperty rejects editing SZ (it would change the board size out
// from under the engine), validates name against the tree's own FF
// version, routes FF/SZ/GM/RU/KM/RE to the root regardless of cursor
// position, and routes every other property to the current node.
func (g *Game) SetProperty(name string, values []string) error {
	if !sgf.IsValidTag(name) {
		return newPropErr(UnknownProperty, name)
	}
	if name == sgf.TagSZ {
		return newErr(CannotEditSize)
	}

	ffVersion := 1
	if v, ok := g.tree.Root().IntValue(sgf.TagFF); ok {
		ffVersion = v
	}
	if sgf.MinFF(name) > ffVersion {
		return newFFErr(name, ffVersion)
	}

	if rootTags[name] {
		g.tree.Root().Set(name, values)
	} else {
		g.tree.Current().Set(name, values)
	}
	return nil
}

// DeleteBranch removes the current node's child recording move, and its
// whole subtree, from the tree.
func (g *Game) DeleteBranch(move goboard.Move) error {
	for _, child := range g.tree.Children() {
		if child.Move().Equals(move) {
			return g.tree.DeleteChild(child)
		}
	}
	return newErr(NoSuchBranch)
}

// Reset restores the game to an empty board at the tree's root, keeping
// side/rules/komi and the whole recorded tree.
func (g *Game) Reset() {
	g.engine.Reset()
	g.tree.AdvanceToRoot()
}
