// Command gogtp is a GTP-over-stdio driver for the gongo engine: it reads
// one command per line from stdin and writes the framed response to
// stdout, the interface any GTP-speaking client (gogui, a tournament
// manager, a test harness) expects to connect to.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gongoengine/gongo/internal/engineconfig"
	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/gogame"
	"github.com/gongoengine/gongo/internal/gtp"
	"github.com/gongoengine/gongo/internal/rules"
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
		Use:   "gogtp",
		Short: "Go Text Protocol engine for gongo",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	engineconfig.RegisterFlags(root.PersistentFlags(), &cfg)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "read GTP commands from stdin, write responses to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := engineconfig.Resolve(cfg, configPath, root.PersistentFlags())
			if err != nil {
				return err
			}
			return runServe(resolved)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the engine name and version",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := engineconfig.Resolve(cfg, configPath, root.PersistentFlags())
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", resolved.EngineName, resolved.EngineVersion)
			return nil
		},
	})
	return root
}

func runServe(cfg engineconfig.Config) error {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	sugar := log.Sugar()

	rk := rules.ParseRulesKind(cfg.Rules)
	engine := gtp.NewEngine(cfg.EngineName, cfg.EngineVersion, cfg.BoardSize, rk, cfg.Komi, sugar)
	engine.Generator = randomMoveGenerator
	engine.ReadFile = os.ReadFile
	engine.WriteFile = func(name string, data []byte) error { return os.WriteFile(name, data, 0o644) }

	sugar.Infow("gogtp starting", "board_size", cfg.BoardSize, "rules", cfg.Rules, "komi", cfg.Komi)

	scanner := bufio.NewScanner(os.Stdin)
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	for engine.Active() && scanner.Scan() {
		resp := engine.Dispatch(scanner.Text())
		if resp == "" {
			continue
		}
		if _, err := writer.WriteString(resp); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// randomMoveGenerator picks uniformly among the active player's legal
// moves (placements, pass, resign) — a deliberately simple stand-in move
// source; a real search is out of scope (spec.md Non-goal: no engine
// strength/AI).
func randomMoveGenerator(color goboard.Stone, game *gogame.Game) (goboard.Move, error) {
	moves := game.Engine().LegalMoves()
	return moves[rand.Intn(len(moves))], nil
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
