package gtp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/gogame"
	"github.com/gongoengine/gongo/internal/rules"
)

func newTestEngine() *Engine {
	return NewEngine("gongo", "0.1.0", 9, rules.Chinese, 0, nil)
}

func TestEngineRegistersEveryBuiltin(t *testing.T) {
	e := newTestEngine()
	for _, name := range []string{
		"boardsize", "clear_board", "komi", "play", "genmove", "showboard",
		"undo", "gg-undo", "loadsgf", "final_score", "final_status_list",
		"savesgf", "time_left", "time_settings",
	} {
		assert.Equal(t, "= true\n\n", e.Dispatch(fmt.Sprintf("known_command %s", name)), name)
	}
}

func TestBoardsizeReplacesGameAtNewSize(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("boardsize 13")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, 13, e.game.Engine().Side())
}

func TestBoardsizeRejectsUnsupportedSize(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("boardsize 21")
	assert.Equal(t, "? unacceptable size\n\n", resp)
	assert.Equal(t, 9, e.game.Engine().Side())
}

func TestPlayAppliesMoveToBoard(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("play black D4")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, goboard.Black, e.game.Engine().Board().At(goboard.Vertex{X: 3, Y: 3}))
}

func TestPlayIllegalMoveFails(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))
	resp := e.Dispatch("play white D4")
	assert.Equal(t, "? illegal move\n\n", resp)
}

// TestPlayWrongColorFallsBackToAdd exercises the play handler's cascade: a
// placement that's illegal as a move only because it's the wrong player's
// turn is still legal as a setup stone, so it succeeds rather than
// reporting the raw rules error.
func TestPlayWrongColorFallsBackToAdd(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("play white D4")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, goboard.White, e.game.Engine().Board().At(goboard.Vertex{X: 3, Y: 3}))
	assert.Equal(t, goboard.Black, e.game.Engine().Active())
}

func TestPlayOnOccupiedPointFailsAsIllegalMove(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))
	resp := e.Dispatch("play black D4")
	assert.Equal(t, "? illegal move\n\n", resp)
}

func TestPlayPassAndResignTokens(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "= \n\n", e.Dispatch("play black pass"))
	assert.Equal(t, "= \n\n", e.Dispatch("play white resign"))
	assert.True(t, e.game.Engine().Over())
}

func TestGenmoveWithoutGeneratorFails(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("genmove black")
	assert.Contains(t, resp, "? ")
}

func TestGenmoveAppliesGeneratedMove(t *testing.T) {
	e := newTestEngine()
	e.Generator = func(color goboard.Stone, g *gogame.Game) (goboard.Move, error) {
		return goboard.Play(goboard.Vertex{X: 0, Y: 0}, color), nil
	}
	resp := e.Dispatch("genmove black")
	assert.Equal(t, "= A1\n\n", resp)
	assert.Equal(t, goboard.Black, e.game.Engine().Board().At(goboard.Vertex{X: 0, Y: 0}))
}

func TestGenmovePassReportsPass(t *testing.T) {
	e := newTestEngine()
	e.Generator = func(color goboard.Stone, g *gogame.Game) (goboard.Move, error) {
		return goboard.Pass(color), nil
	}
	resp := e.Dispatch("genmove black")
	assert.Equal(t, "= pass\n\n", resp)
}

func TestShowboardRendersBoardString(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))
	resp := e.Dispatch("showboard")
	assert.True(t, len(resp) > len("= \n\n"))
}

func TestUndoStepsBackOneMove(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))
	resp := e.Dispatch("undo")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, goboard.Empty, e.game.Engine().Board().At(goboard.Vertex{X: 3, Y: 3}))
}

func TestGgUndoStepsBackNMoves(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))
	require.Equal(t, "= \n\n", e.Dispatch("play white E5"))
	resp := e.Dispatch("gg-undo 2")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, goboard.Empty, e.game.Engine().Board().At(goboard.Vertex{X: 3, Y: 3}))
	assert.Equal(t, goboard.Black, e.game.Engine().Active())
}

func TestLoadSGFWithoutReaderFails(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("loadsgf game.sgf")
	assert.Contains(t, resp, "? ")
}

func TestLoadSGFParsesAndWalksToLeaf(t *testing.T) {
	e := newTestEngine()
	data := "(;FF[4]GM[1]SZ[19];B[dd];W[pp])"
	e.ReadFile = func(name string) ([]byte, error) {
		assert.Equal(t, "game.sgf", name)
		return []byte(data), nil
	}
	resp := e.Dispatch("loadsgf game.sgf")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, goboard.Black, e.game.Engine().Board().At(goboard.Vertex{X: 3, Y: 3}))
	assert.Equal(t, goboard.White, e.game.Engine().Board().At(goboard.Vertex{X: 15, Y: 15}))
}

func TestLoadSGFWithMoveCountStopsEarly(t *testing.T) {
	e := newTestEngine()
	data := "(;FF[4]GM[1]SZ[19];B[dd];W[pp])"
	e.ReadFile = func(name string) ([]byte, error) { return []byte(data), nil }
	resp := e.Dispatch("loadsgf game.sgf 1")
	require.Equal(t, "= \n\n", resp)
	assert.Equal(t, goboard.Black, e.game.Engine().Board().At(goboard.Vertex{X: 3, Y: 3}))
	assert.Equal(t, goboard.Empty, e.game.Engine().Board().At(goboard.Vertex{X: 15, Y: 15}))
}

func TestFinalScoreRequiresTwoPasses(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("final_score")
	assert.Contains(t, resp, "? ")
}

func TestFinalScoreReportsWinner(t *testing.T) {
	e := NewEngine("gongo", "0.1.0", 9, rules.Chinese, 0.5, nil)
	require.Equal(t, "= \n\n", e.Dispatch("play black pass"))
	require.Equal(t, "= \n\n", e.Dispatch("play white pass"))
	resp := e.Dispatch("final_score")
	assert.Equal(t, "= W+0.5\n\n", resp)
}

func TestFinalStatusListDeadAndSekiAreEmpty(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "= \n\n", e.Dispatch("final_status_list dead"))
	assert.Equal(t, "= \n\n", e.Dispatch("final_status_list seki"))
}

func TestFinalStatusListAliveListsEveryStone(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))
	resp := e.Dispatch("final_status_list alive")
	assert.Equal(t, "= D4\n\n", resp)
}

func TestFinalStatusListUnknownStatusFails(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("final_status_list bogus")
	assert.Contains(t, resp, "? ")
}

func TestSaveSGFWithoutWriterFails(t *testing.T) {
	e := newTestEngine()
	resp := e.Dispatch("savesgf game.sgf")
	assert.Contains(t, resp, "? ")
}

func TestSaveSGFWritesSerializedTree(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, "= \n\n", e.Dispatch("play black D4"))

	var written string
	e.WriteFile = func(name string, data []byte) error {
		assert.Equal(t, "out.sgf", name)
		written = string(data)
		return nil
	}
	resp := e.Dispatch("savesgf out.sgf")
	require.Equal(t, "= \n\n", resp)
	assert.Contains(t, written, "B[dd]")
}

func TestTimeLeftAndTimeSettingsAlwaysSucceed(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "= \n\n", e.Dispatch("time_left black 30 0"))
	assert.Equal(t, "= \n\n", e.Dispatch("time_settings 1800 30 1"))
}
