// Command goserve is an HTTP inspection/demo server: it exposes a map of
// independent gongo games behind a plain REST surface, for debugging and
// scripted play without a GTP client. Each session owns its own
// *gogame.Game, so concurrent sessions never share engine state.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gongoengine/gongo/internal/engineconfig"
	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/gogame"
	"github.com/gongoengine/gongo/internal/rules"
	"github.com/gongoengine/gongo/internal/sgf"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := engineconfig.Defaults()
	var configPath string

	root := &cobra.Command{
		Use:   "goserve",
		Short: "HTTP inspection/demo server for gongo games",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := engineconfig.Resolve(cfg, configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return run(resolved)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	engineconfig.RegisterFlags(root.Flags(), &cfg)
	return root
}

func run(cfg engineconfig.Config) error {
	zlog, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	srv := newServer(log)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/games", srv.createGame)
	e.GET("/games/:id", srv.getGame)
	e.POST("/games/:id/moves", srv.postMove)
	e.POST("/games/:id/undo", srv.postUndo)
	e.GET("/games/:id/sgf", srv.getSGF)
	e.POST("/games/:id/sgf", srv.postSGF)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	log.Infow("goserve starting", "addr", cfg.Addr)
	return e.Start(cfg.Addr)
}

// session pairs one game with the mutex protecting it. A handler takes the
// lock for its engine call and releases it only when the handler returns,
// so the lock is still held while the response is written.
type session struct {
	mu   sync.Mutex
	game *gogame.Game
}

type server struct {
	log *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*session

	requests *prometheus.CounterVec
}

func newServer(log *zap.SugaredLogger) *server {
	requests := promauto.With(nil).NewCounterVec(prometheus.CounterOpts{
		Name: "gongo_http_requests_total",
		Help: "Count of HTTP demo server requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	if err := prometheus.Register(requests); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		requests = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return &server{
		log:      log,
		sessions: make(map[string]*session),
		requests: requests,
	}
}

func (s *server) count(endpoint, outcome string) {
	s.requests.WithLabelValues(endpoint, outcome).Inc()
}

func (s *server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorBody(err error) errorResponse { return errorResponse{Error: err.Error()} }

type createGameRequest struct {
	Size  int     `json:"size"`
	Rules string  `json:"rules"`
	Komi  float64 `json:"komi"`
}

type createGameResponse struct {
	ID string `json:"id"`
}

func (s *server) createGame(c echo.Context) error {
	var req createGameRequest
	if err := c.Bind(&req); err != nil {
		s.count("create_game", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	size := req.Size
	if size == 0 {
		size = 19
	}
	rk := rules.Chinese
	if req.Rules != "" {
		rk = rules.ParseRulesKind(req.Rules)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{game: gogame.New(size, rk, req.Komi)}
	s.mu.Unlock()

	s.count("create_game", "ok")
	return c.JSON(http.StatusOK, createGameResponse{ID: id})
}

type gameStateResponse struct {
	Board       string              `json:"board"`
	ActiveColor string              `json:"active_color"`
	Properties  map[string][]string `json:"properties"`
}

func (s *server) getGame(c echo.Context) error {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		s.count("get_game", "not_found")
		return c.JSON(http.StatusNotFound, errorBody(fmt.Errorf("no such game %q", c.Param("id"))))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	resp := gameStateResponse{
		Board:       sess.game.Engine().Board().String(),
		ActiveColor: goboard.FormatColor(sess.game.ActiveColor()),
		Properties:  sess.game.GetProperties(),
	}
	s.count("get_game", "ok")
	return c.JSON(http.StatusOK, resp)
}

type moveRequest struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Color  string `json:"color"`
	Pass   bool   `json:"pass"`
	Resign bool   `json:"resign"`
}

func (s *server) postMove(c echo.Context) error {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		s.count("post_move", "not_found")
		return c.JSON(http.StatusNotFound, errorBody(fmt.Errorf("no such game %q", c.Param("id"))))
	}

	var req moveRequest
	if err := c.Bind(&req); err != nil {
		s.count("post_move", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	color, ok := goboard.ParseColor(req.Color)
	if !ok {
		s.count("post_move", "error")
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Errorf("invalid color %q", req.Color)))
	}

	var m goboard.Move
	switch {
	case req.Resign:
		m = goboard.Resign(color)
	case req.Pass:
		m = goboard.Pass(color)
	default:
		m = goboard.Play(goboard.Vertex{X: req.X, Y: req.Y}, color)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.game.Play(m); err != nil {
		s.count("post_move", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	s.count("post_move", "ok")
	return c.NoContent(http.StatusNoContent)
}

func (s *server) postUndo(c echo.Context) error {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		s.count("post_undo", "not_found")
		return c.JSON(http.StatusNotFound, errorBody(fmt.Errorf("no such game %q", c.Param("id"))))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.game.StepUp(1); err != nil {
		s.count("post_undo", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	s.count("post_undo", "ok")
	return c.NoContent(http.StatusNoContent)
}

func (s *server) getSGF(c echo.Context) error {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		s.count("get_sgf", "not_found")
		return c.JSON(http.StatusNotFound, errorBody(fmt.Errorf("no such game %q", c.Param("id"))))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.count("get_sgf", "ok")
	return c.String(http.StatusOK, sgf.Write(sess.game.Tree()))
}

func (s *server) postSGF(c echo.Context) error {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		s.count("post_sgf", "not_found")
		return c.JSON(http.StatusNotFound, errorBody(fmt.Errorf("no such game %q", c.Param("id"))))
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		s.count("post_sgf", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	tree, err := sgf.Parse(body)
	if err != nil {
		s.count("post_sgf", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	game := gogame.FromTree(tree)
	if err := game.PlayDefaultSequence(); err != nil {
		s.count("post_sgf", "error")
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.game = game
	s.count("post_sgf", "ok")
	return c.NoContent(http.StatusNoContent)
}
