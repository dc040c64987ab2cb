package gtp

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/gogame"
	"github.com/gongoengine/gongo/internal/rules"
	"github.com/gongoengine/gongo/internal/sgf"
)

// Generator proposes a move for the given color to play against game,
// e.g. the GTP genmove command's move source.
type Generator func(color goboard.Stone, game *gogame.Game) (goboard.Move, error)

// FileReader and FileWriter let loadsgf/savesgf reach outside storage
// without this package (or gogame) coupling directly to the OS; cmd/gogtp
// wires these to the real filesystem, tests wire them to an in-memory map.
type FileReader func(name string) ([]byte, error)
type FileWriter func(name string, data []byte) error

// Engine is a Dispatcher pre-loaded with every command spec.md requires
// plus this implementation's additions, wired to a live gogame.Game.
type Engine struct {
	*Dispatcher

	game *gogame.Game
	side int
	rk   rules.RulesKind
	komi float64
	log  *zap.SugaredLogger

	Generator Generator
	ReadFile  FileReader
	WriteFile FileWriter
}

// NewEngine builds an Engine on a fresh board of side/rk/komi and
// registers every built-in command. Generator/ReadFile/WriteFile are left
// nil; callers that want genmove, loadsgf, or savesgf to work must set
// them before dispatching those commands.
func NewEngine(name, version string, side int, rk rules.RulesKind, komi float64, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Engine{
		Dispatcher: NewDispatcher(log, name, version),
		game:       gogame.New(side, rk, komi),
		side:       side,
		rk:         rk,
		komi:       komi,
		log:        log,
	}
	e.registerAll()
	return e
}

// Game exposes the live game for callers that need direct read access
// (e.g. an HTTP handler rendering state alongside GTP).
func (e *Engine) Game() *gogame.Game { return e.game }

func (e *Engine) registerAll() {
	e.registerBuiltin("boardsize", Signature{KindInteger}, e.handleBoardsize)
	e.registerBuiltin("clear_board", nil, e.handleClearBoard)
	e.registerBuiltin("komi", Signature{KindFloat}, e.handleKomi)
	e.registerBuiltin("play", Signature{KindMove}, e.handlePlay)
	e.registerBuiltin("genmove", Signature{KindColor}, e.handleGenmove)
	e.registerBuiltin("showboard", nil, e.handleShowboard)
	e.registerBuiltin("undo", nil, e.handleUndo)
	e.registerBuiltin("gg-undo", Signature{KindInteger}, e.handleGgUndo)
	e.registerBuiltin("loadsgf", Signature{KindString}, e.handleLoadSGF)
	e.registerBuiltin("loadsgf", Signature{KindString, KindInteger}, e.handleLoadSGFN)
	e.registerBuiltin("final_score", nil, e.handleFinalScore)
	e.registerBuiltin("final_status_list", Signature{KindString}, e.handleFinalStatusList)
	e.registerBuiltin("savesgf", Signature{KindString}, e.handleSaveSGF)
	e.registerBuiltin("time_left", Signature{KindColor, KindInteger, KindInteger}, e.handleTimeLeft)
	e.registerBuiltin("time_settings", Signature{KindInteger, KindInteger, KindInteger}, e.handleTimeSettings)
}

func (e *Engine) handleBoardsize(args []Arg) (string, error) {
	if !goboard.ValidSize(args[0].Int) {
		return "", fmt.Errorf("unacceptable size")
	}
	e.side = args[0].Int
	e.game = gogame.New(e.side, e.rk, e.komi)
	return "", nil
}

func (e *Engine) handleClearBoard(args []Arg) (string, error) {
	e.game = gogame.New(e.side, e.rk, e.komi)
	return "", nil
}

func (e *Engine) handleKomi(args []Arg) (string, error) {
	e.komi = args[0].Float
	e.game.Engine().SetKomi(e.komi)
	return "", nil
}

// handlePlay mirrors the reference play handler's cascade: try it as a
// move first, and only if that's illegal try it as a setup stone; a
// failure at both stages is reported as "illegal move" rather than
// whichever rules error happened to come back last.
func (e *Engine) handlePlay(args []Arg) (string, error) {
	m, err := moveFromArg(args[0])
	if err != nil {
		return "", err
	}
	if err := e.game.Play(m); err == nil {
		return "", nil
	}
	if m.Kind == goboard.KindPlay {
		if err := e.game.Add(m); err == nil {
			return "", nil
		}
	}
	return "", fmt.Errorf("illegal move")
}

func moveFromArg(a Arg) (goboard.Move, error) {
	switch {
	case a.Resign:
		return goboard.Resign(a.Color), nil
	case a.Pass:
		return goboard.Pass(a.Color), nil
	default:
		return goboard.Play(a.Vertex, a.Color), nil
	}
}

func (e *Engine) handleGenmove(args []Arg) (string, error) {
	if e.Generator == nil {
		return "", fmt.Errorf("gtp: no move generator configured")
	}
	color := args[0].Color
	m, err := e.Generator(color, e.game)
	if err != nil {
		return "", err
	}
	if err := e.game.Play(m); err != nil {
		return "", err
	}
	switch m.Kind {
	case goboard.KindPass:
		return "pass", nil
	case goboard.KindResign:
		return "resign", nil
	default:
		return goboard.FormatVertex(m.Vertex), nil
	}
}

func (e *Engine) handleShowboard(args []Arg) (string, error) {
	return e.game.Engine().Board().String(), nil
}

func (e *Engine) handleUndo(args []Arg) (string, error) {
	return "", e.game.StepUp(1)
}

func (e *Engine) handleGgUndo(args []Arg) (string, error) {
	return "", e.game.StepUp(args[0].Int)
}

func (e *Engine) handleLoadSGF(args []Arg) (string, error) {
	return e.loadSGF(args[0].Text, -1)
}

func (e *Engine) handleLoadSGFN(args []Arg) (string, error) {
	return e.loadSGF(args[0].Text, args[1].Int)
}

func (e *Engine) loadSGF(name string, moveNumber int) (string, error) {
	if e.ReadFile == nil {
		return "", fmt.Errorf("gtp: no file reader configured")
	}
	data, err := e.ReadFile(name)
	if err != nil {
		return "", err
	}
	tree, err := sgf.Parse(data)
	if err != nil {
		return "", err
	}
	game := gogame.FromTree(tree)
	e.side = sgf.ParseSize(tree.Root())
	e.rk = game.Engine().RulesKind()
	e.komi = game.Engine().Komi()

	if moveNumber >= 0 {
		if err := game.PlayDefaultSequenceN(moveNumber); err != nil {
			return "", err
		}
	} else {
		if err := game.PlayDefaultSequence(); err != nil {
			return "", err
		}
	}
	e.game = game
	return "", nil
}

func (e *Engine) handleFinalScore(args []Arg) (string, error) {
	res, err := e.game.Engine().Score()
	if err != nil {
		return "", err
	}
	switch {
	case res.Black > res.White:
		return fmt.Sprintf("B+%s", trimScore(res.Black-res.White)), nil
	case res.White > res.Black:
		return fmt.Sprintf("W+%s", trimScore(res.White-res.Black)), nil
	default:
		return "0", nil
	}
}

func trimScore(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}

// handleFinalStatusList implements the final_status_list built-in. This
// engine never tries to determine life and death on its own, so dead and
// seki are always empty and alive always lists every stone on the board.
func (e *Engine) handleFinalStatusList(args []Arg) (string, error) {
	switch args[0].Text {
	case "dead", "seki":
		return "", nil
	case "alive":
		board := e.game.Engine().Board()
		var vertices []string
		for _, v := range board.AllVertices() {
			if board.At(v) != goboard.Empty {
				vertices = append(vertices, goboard.FormatVertex(v))
			}
		}
		sort.Strings(vertices)
		return strings.Join(vertices, " "), nil
	default:
		return "", fmt.Errorf("gtp: unknown status %q", args[0].Text)
	}
}

func (e *Engine) handleSaveSGF(args []Arg) (string, error) {
	if e.WriteFile == nil {
		return "", fmt.Errorf("gtp: no file writer configured")
	}
	data := sgf.Write(e.game.Tree())
	return "", e.WriteFile(args[0].Text, []byte(data))
}

// handleTimeLeft and handleTimeSettings accept and ignore time controls;
// this engine has no clock.
func (e *Engine) handleTimeLeft(args []Arg) (string, error)     { return "", nil }
func (e *Engine) handleTimeSettings(args []Arg) (string, error) { return "", nil }
