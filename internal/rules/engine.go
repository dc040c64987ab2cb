// Package rules implements the Go rules engine: group/liberty tracking,
// legality (suicide, Ko), capture, and scoring, per the Chinese, Japanese,
// and Korean conventions.
package rules

import (
	"fmt"

	"github.com/gongoengine/gongo/internal/goboard"
)

// RulesKind selects the scoring convention.
type RulesKind int

const (
	Chinese RulesKind = iota
	Japanese
	Korean
	Other
)

func (k RulesKind) String() string {
	switch k {
	case Chinese:
		return "Chinese"
	case Japanese:
		return "Japanese"
	case Korean:
		return "Korean"
	}
	return "Other"
}

// ParseRulesKind maps an SGF RU-style name to a RulesKind, defaulting to
// Other for anything unrecognized (per the design note that Korean is
// treated identically to Japanese absent a finer-grained spec).
func ParseRulesKind(name string) RulesKind {
	switch name {
	case "Chinese":
		return Chinese
	case "Japanese":
		return Japanese
	case "Korean":
		return Korean
	}
	return Other
}

type groupID int

type group struct {
	color  goboard.Stone
	stones map[goboard.Vertex]struct{}
}

type historyEntry struct {
	move  goboard.Move
	setup bool
}

// Engine owns the board and the derived structures (group arena, Ko point,
// pass count, capture ledger) described in the data model's RulesState.
type Engine struct {
	side      int
	rulesKind RulesKind
	komi      float64

	board         *goboard.Board
	groups        map[goboard.Vertex]groupID
	arena         map[groupID]*group
	freeIDs       []groupID
	nextID        groupID
	capturedByPly map[int][]goboard.Move
	koPoint       goboard.Move
	passCount     uint32
	active        goboard.Stone
	plyCount      int
	over          bool
	result        string
	history       []historyEntry
}

// NewEngine constructs an Engine for a board of the given side, scoring
// convention, and komi. side is not validated here and construction does
// not fail for sizes outside {9,13,19}; goboard.ValidSize is the size
// check, which the GTP boardsize command applies before building a game.
func NewEngine(side int, rk RulesKind, komi float64) *Engine {
	e := &Engine{side: side, rulesKind: rk, komi: komi}
	e.reset()
	return e
}

// Reset restores the engine to an empty board with no history, keeping
// side/rules/komi.
func (e *Engine) Reset() { e.reset() }

func (e *Engine) reset() {
	e.board = goboard.NewBoard(e.side)
	e.groups = make(map[goboard.Vertex]groupID)
	e.arena = make(map[groupID]*group)
	e.freeIDs = nil
	e.nextID = 0
	e.capturedByPly = make(map[int][]goboard.Move)
	e.koPoint = goboard.Pass(goboard.Black)
	e.passCount = 0
	e.active = goboard.Black
	e.plyCount = 0
	e.over = false
	e.result = ""
	e.history = nil
}

// Board returns the live board. Callers must not mutate it directly.
func (e *Engine) Board() *goboard.Board { return e.board }

// Side returns the board side.
func (e *Engine) Side() int { return e.side }

// Active returns the color to move.
func (e *Engine) Active() goboard.Stone { return e.active }

// Over reports whether the game has ended (two passes, or a resignation).
func (e *Engine) Over() bool { return e.over }

// Result returns the SGF-style result string ("B+R"/"W+R" after a
// resignation, "" after two passes pending scoring, "" before the game
// ends).
func (e *Engine) Result() string { return e.result }

// KoPoint returns the current Ko sentinel: a Pass move (meaning "no Ko")
// or a Play move whose vertex is forbidden this ply.
func (e *Engine) KoPoint() goboard.Move { return e.koPoint }

// PassCount returns the number of consecutive passes seen so far.
func (e *Engine) PassCount() uint32 { return e.passCount }

// Komi returns the current komi.
func (e *Engine) Komi() float64 { return e.komi }

// SetKomi updates komi (the "komi" GTP command).
func (e *Engine) SetKomi(k float64) { e.komi = k }

// RulesKind returns the scoring convention.
func (e *Engine) RulesKind() RulesKind { return e.rulesKind }

// CapturedAtPly returns the stones captured by the move played at the
// given ply, for Japanese/Korean scoring bookkeeping.
func (e *Engine) CapturedAtPly(ply int) []goboard.Move { return e.capturedByPly[ply] }

// IsLegal reports whether a Play move is legal for the active player:
// on-board, target empty, correct color, not the Ko point, not a
// self-capture.
func (e *Engine) IsLegal(m goboard.Move) bool {
	if m.Kind != goboard.KindPlay {
		return false
	}
	return e.checkLegal(m, true) == nil
}

// IsAddLegal is IsLegal without the active-color check, for setup moves.
func (e *Engine) IsAddLegal(m goboard.Move) bool {
	if m.Kind != goboard.KindPlay {
		return false
	}
	return e.checkLegal(m, false) == nil
}

// checkLegal returns the specific violation in spec priority order:
// OffBoard, OccupiedPoint, WrongColor, SelfCapture, KoPoint.
func (e *Engine) checkLegal(m goboard.Move, requireColor bool) *Error {
	if !m.Vertex.OnBoard(e.side) {
		return newErr(OffBoard)
	}
	if e.board.At(m.Vertex) != goboard.Empty {
		return newErr(OccupiedPoint)
	}
	if requireColor && m.Color != e.active {
		return newErr(WrongColor)
	}
	if e.isSelfCapture(m) {
		return newErr(SelfCapture)
	}
	if e.koPoint.Kind == goboard.KindPlay && e.koPoint.Vertex == m.Vertex {
		return newErr(KoPoint)
	}
	return nil
}

// isSelfCapture implements the non-mutating self-capture check from the
// spec: legal (not suicide) if either an adjacent enemy group would be
// captured, or the hypothetical merged friendly group keeps a liberty.
func (e *Engine) isSelfCapture(m goboard.Move) bool {
	friends, enemies := e.neighborGroups(m.Vertex, m.Color)

	for _, eid := range enemies {
		if e.liberties(eid) == 1 {
			return false
		}
	}

	merged := map[goboard.Vertex]struct{}{m.Vertex: {}}
	for _, fid := range friends {
		for v := range e.arena[fid].stones {
			merged[v] = struct{}{}
		}
	}
	for v := range merged {
		for _, n := range v.Neighbors(e.side) {
			if n == m.Vertex {
				continue
			}
			if _, inMerged := merged[n]; inMerged {
				continue
			}
			if e.board.At(n) == goboard.Empty {
				return false
			}
		}
	}
	return true
}

func (e *Engine) neighborGroups(v goboard.Vertex, color goboard.Stone) (friends, enemies []groupID) {
	friendSet := make(map[groupID]struct{})
	enemySet := make(map[groupID]struct{})
	for _, n := range v.Neighbors(e.side) {
		gid, ok := e.groups[n]
		if !ok {
			continue
		}
		if e.arena[gid].color == color {
			friendSet[gid] = struct{}{}
		} else {
			enemySet[gid] = struct{}{}
		}
	}
	for id := range friendSet {
		friends = append(friends, id)
	}
	for id := range enemySet {
		enemies = append(enemies, id)
	}
	return
}

func (e *Engine) liberties(gid groupID) int {
	g := e.arena[gid]
	libs := make(map[goboard.Vertex]struct{})
	for v := range g.stones {
		for _, n := range v.Neighbors(e.side) {
			if e.board.At(n) == goboard.Empty {
				libs[n] = struct{}{}
			}
		}
	}
	return len(libs)
}

func (e *Engine) allocGroupID() groupID {
	if n := len(e.freeIDs); n > 0 {
		id := e.freeIDs[n-1]
		e.freeIDs = e.freeIDs[:n-1]
		return id
	}
	id := e.nextID
	e.nextID++
	return id
}

func (e *Engine) freeGroupID(id groupID) {
	delete(e.arena, id)
	e.freeIDs = append(e.freeIDs, id)
}

// Play executes a move: Pass increments the pass count (ending the game at
// two), Resign ends the game with the appropriate SGF-style result, and a
// placement runs the full legality check and placement algorithm.
func (e *Engine) Play(m goboard.Move) error {
	switch m.Kind {
	case goboard.KindPass:
		e.plyCount++
		e.passCount++
		e.koPoint = goboard.Pass(m.Color.Opponent())
		if e.passCount >= 2 {
			e.over = true
		}
		e.active = m.Color.Opponent()
		e.history = append(e.history, historyEntry{move: m})
		return nil
	case goboard.KindResign:
		if e.over {
			return newErr(GameAlreadyOver)
		}
		e.plyCount++
		if m.Color == goboard.Black {
			e.result = "W+R"
		} else {
			e.result = "B+R"
		}
		e.over = true
		e.history = append(e.history, historyEntry{move: m})
		return nil
	case goboard.KindPlay:
		if err := e.checkLegal(m, true); err != nil {
			return err
		}
		e.plyCount++
		e.applyPlacement(m, e.plyCount)
		e.passCount = 0
		e.active = m.Color.Opponent()
		e.history = append(e.history, historyEntry{move: m})
		return nil
	default:
		return fmt.Errorf("rules: cannot play a Null move")
	}
}

// Add places a setup stone (AB/AW): legal like Play but the active player
// and pass count are untouched, and the ply does not advance.
func (e *Engine) Add(m goboard.Move) error {
	if m.Kind != goboard.KindPlay {
		return fmt.Errorf("rules: Add requires a placement move")
	}
	if err := e.checkLegal(m, false); err != nil {
		return err
	}
	e.applyPlacement(m, e.plyCount)
	e.history = append(e.history, historyEntry{move: m, setup: true})
	return nil
}

// RemoveStone implements AE: clears a stone (and splits its group if
// removal disconnects it) without touching active color or pass count.
func (e *Engine) RemoveStone(v goboard.Vertex) error {
	if !v.OnBoard(e.side) {
		return newErr(OffBoard)
	}
	gid, ok := e.groups[v]
	if !ok {
		return nil
	}
	g := e.arena[gid]
	color := g.color

	delete(e.groups, v)
	e.board.Set(v, goboard.Empty)
	remaining := make([]goboard.Vertex, 0, len(g.stones)-1)
	for s := range g.stones {
		if s != v {
			remaining = append(remaining, s)
		}
	}
	e.freeGroupID(gid)

	visited := make(map[goboard.Vertex]bool)
	for _, s := range remaining {
		if visited[s] {
			continue
		}
		comp := []goboard.Vertex{}
		queue := []goboard.Vertex{s}
		visited[s] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, n := range cur.Neighbors(e.side) {
				if !visited[n] && e.board.At(n) == color {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		newID := e.allocGroupID()
		stones := make(map[goboard.Vertex]struct{}, len(comp))
		for _, c := range comp {
			stones[c] = struct{}{}
		}
		e.arena[newID] = &group{color: color, stones: stones}
		for _, c := range comp {
			e.groups[c] = newID
		}
	}
	return nil
}

// applyPlacement runs steps (b)-(g) of the placement algorithm. ply is the
// bucket captured stones are recorded under.
func (e *Engine) applyPlacement(m goboard.Move, ply int) {
	v := m.Vertex
	friends, enemies := e.neighborGroups(v, m.Color)

	neighbors := v.Neighbors(e.side)
	allEnemyBefore := len(neighbors) == 4
	if allEnemyBefore {
		for _, n := range neighbors {
			if e.board.At(n) != m.Color.Opponent() {
				allEnemyBefore = false
				break
			}
		}
	}

	e.board.Set(v, m.Color)

	newID := e.allocGroupID()
	stones := map[goboard.Vertex]struct{}{v: {}}
	for _, fid := range friends {
		for s := range e.arena[fid].stones {
			stones[s] = struct{}{}
		}
		e.freeGroupID(fid)
	}
	e.arena[newID] = &group{color: m.Color, stones: stones}
	for s := range stones {
		e.groups[s] = newID
	}

	e.koPoint = goboard.Pass(m.Color.Opponent())

	capturedGroups := 0
	singleStoneCapture := false
	var singleCapturedVertex goboard.Vertex
	var capturedThisPly []goboard.Move
	for _, eid := range enemies {
		g, ok := e.arena[eid]
		if !ok {
			continue
		}
		if e.liberties(eid) != 0 {
			continue
		}
		vs := make([]goboard.Vertex, 0, len(g.stones))
		for s := range g.stones {
			vs = append(vs, s)
		}
		for _, s := range vs {
			capturedThisPly = append(capturedThisPly, goboard.Play(s, g.color))
			e.board.Set(s, goboard.Empty)
			delete(e.groups, s)
		}
		e.freeGroupID(eid)
		capturedGroups++
		if len(vs) == 1 {
			singleStoneCapture = true
			singleCapturedVertex = vs[0]
		}
	}
	if len(capturedThisPly) > 0 {
		e.capturedByPly[ply] = append(e.capturedByPly[ply], capturedThisPly...)
	}

	if len(friends) == 0 && capturedGroups == 1 && singleStoneCapture && allEnemyBefore {
		e.koPoint = goboard.Play(singleCapturedVertex, m.Color.Opponent())
	}
}

// Undo replays the engine's own history (Play and Add calls, in order)
// from scratch, omitting the last n entries.
func (e *Engine) Undo(n int) error {
	if n < 0 || n > len(e.history) {
		return fmt.Errorf("rules: cannot undo %d moves, history has %d entries", n, len(e.history))
	}
	keep := append([]historyEntry(nil), e.history[:len(e.history)-n]...)
	e.reset()
	for _, h := range keep {
		var err error
		if h.setup {
			err = e.Add(h.move)
		} else {
			err = e.Play(h.move)
		}
		if err != nil {
			return fmt.Errorf("rules: replay during undo failed: %w", err)
		}
	}
	return nil
}

// LegalMoves enumerates every legal placement plus Pass and Resign for the
// active player.
func (e *Engine) LegalMoves() []goboard.Move {
	var out []goboard.Move
	for _, v := range e.board.AllVertices() {
		m := goboard.Play(v, e.active)
		if e.checkLegal(m, true) == nil {
			out = append(out, m)
		}
	}
	out = append(out, goboard.Pass(e.active), goboard.Resign(e.active))
	return out
}
