package rules

import "github.com/gongoengine/gongo/internal/goboard"

// Result is the outcome of Score(): territory, stone, and total counts
// for each side, plus the winner (Tie set when the totals are equal).
type Result struct {
	BlackTerritory int
	WhiteTerritory int
	BlackStones    int
	WhiteStones    int
	Dame           int
	Black          float64
	White          float64
	Winner         goboard.Stone
	Tie            bool
}

// Score implements §4.D scoring: enumerate maximal empty regions, assign
// each to the sole bordering color (or dame if mixed/none), add the
// Chinese stone-area bonus or subtract Japanese/Korean prisoners, then add
// komi to White. Requires two passes to have been recorded.
func (e *Engine) Score() (Result, error) {
	if e.passCount < 2 {
		return Result{}, newErr(NotScoreable)
	}

	visited := make(map[goboard.Vertex]bool)
	var blackTerr, whiteTerr, dame int

	for _, v := range e.board.AllVertices() {
		if visited[v] || e.board.At(v) != goboard.Empty {
			continue
		}
		regionSize := 0
		borders := make(map[goboard.Stone]bool)
		queue := []goboard.Vertex{v}
		visited[v] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			regionSize++
			for _, n := range cur.Neighbors(e.side) {
				switch s := e.board.At(n); s {
				case goboard.Empty:
					if !visited[n] {
						visited[n] = true
						queue = append(queue, n)
					}
				default:
					borders[s] = true
				}
			}
		}
		switch {
		case len(borders) == 1 && borders[goboard.Black]:
			blackTerr += regionSize
		case len(borders) == 1 && borders[goboard.White]:
			whiteTerr += regionSize
		default:
			dame += regionSize
		}
	}

	var blackStones, whiteStones int
	for _, v := range e.board.AllVertices() {
		switch e.board.At(v) {
		case goboard.Black:
			blackStones++
		case goboard.White:
			whiteStones++
		}
	}

	blackScore := float64(blackTerr)
	whiteScore := float64(whiteTerr)

	if e.rulesKind == Chinese {
		blackScore += float64(blackStones)
		whiteScore += float64(whiteStones)
	} else {
		var blackCaptured, whiteCaptured int
		for _, ms := range e.capturedByPly {
			for _, m := range ms {
				if m.Color == goboard.Black {
					blackCaptured++
				} else {
					whiteCaptured++
				}
			}
		}
		blackScore -= float64(blackCaptured)
		whiteScore -= float64(whiteCaptured)
	}
	whiteScore += e.komi

	res := Result{
		BlackTerritory: blackTerr,
		WhiteTerritory: whiteTerr,
		BlackStones:    blackStones,
		WhiteStones:    whiteStones,
		Dame:           dame,
		Black:          blackScore,
		White:          whiteScore,
	}
	switch {
	case blackScore > whiteScore:
		res.Winner = goboard.Black
	case whiteScore > blackScore:
		res.Winner = goboard.White
	default:
		res.Tie = true
	}
	return res, nil
}
