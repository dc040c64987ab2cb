// Package engineconfig carries the values an operator can vary without
// recompiling: default board size, rules convention, komi, the GTP
// engine's name/version strings, the HTTP demo server's bind address,
// and the log level. Values are layered in ascending priority —
// compiled-in defaults, an optional TOML file, then CLI flags — the
// same flags-over-file-over-defaults idiom used across the retrieved
// corpus's own config loaders.
package engineconfig

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Config is the fully-resolved set of operator-tunable values.
type Config struct {
	BoardSize     int
	Rules         string
	Komi          float64
	EngineName    string
	EngineVersion string
	Addr          string
	LogLevel      string
}

// Defaults returns the compiled-in baseline, the lowest-priority layer.
func Defaults() Config {
	return Config{
		BoardSize:     19,
		Rules:         "Chinese",
		Komi:          7.5,
		EngineName:    "gongo",
		EngineVersion: "0.1.0",
		Addr:          ":8080",
		LogLevel:      "info",
	}
}

// fileConfig mirrors Config with pointer fields so LoadFile can tell
// which keys a TOML document actually set, as opposed to a key that's
// merely absent and would otherwise look like an explicit zero value.
type fileConfig struct {
	BoardSize     *int     `toml:"board_size"`
	Rules         *string  `toml:"rules"`
	Komi          *float64 `toml:"komi"`
	EngineName    *string  `toml:"engine_name"`
	EngineVersion *string  `toml:"engine_version"`
	Addr          *string  `toml:"addr"`
	LogLevel      *string  `toml:"log_level"`
}

// LoadFile decodes a TOML config file at path.
func LoadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("engineconfig: loading %s: %w", path, err)
	}
	return fc, nil
}

// Apply layers fc onto cfg, field by field, skipping any field whose
// flag name appears in changed — those were set explicitly on the
// command line and outrank the file.
func Apply(cfg Config, fc fileConfig, changed map[string]bool) Config {
	if fc.BoardSize != nil && !changed["board-size"] {
		cfg.BoardSize = *fc.BoardSize
	}
	if fc.Rules != nil && !changed["rules"] {
		cfg.Rules = *fc.Rules
	}
	if fc.Komi != nil && !changed["komi"] {
		cfg.Komi = *fc.Komi
	}
	if fc.EngineName != nil && !changed["engine-name"] {
		cfg.EngineName = *fc.EngineName
	}
	if fc.EngineVersion != nil && !changed["engine-version"] {
		cfg.EngineVersion = *fc.EngineVersion
	}
	if fc.Addr != nil && !changed["addr"] {
		cfg.Addr = *fc.Addr
	}
	if fc.LogLevel != nil && !changed["log-level"] {
		cfg.LogLevel = *fc.LogLevel
	}
	return cfg
}

// RegisterFlags binds every Config field to a CLI flag on fs, seeded
// with cfg's current values as the flags' own defaults. Call this after
// Defaults (and before parsing) so an unset flag falls back to the
// compiled-in value.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.BoardSize, "board-size", cfg.BoardSize, "default board size")
	fs.StringVar(&cfg.Rules, "rules", cfg.Rules, "default rules convention (Chinese, Japanese, Korean)")
	fs.Float64Var(&cfg.Komi, "komi", cfg.Komi, "default komi")
	fs.StringVar(&cfg.EngineName, "engine-name", cfg.EngineName, "GTP engine name")
	fs.StringVar(&cfg.EngineVersion, "engine-version", cfg.EngineVersion, "GTP engine version")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP demo server bind address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "zap log level (debug, info, warn, error)")
}

// ChangedFlags reports which flags on fs were actually passed, for use
// with Apply.
func ChangedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// Resolve is the one-call version of the load sequence both
// executables run after flag parsing: if configPath is set, it loads
// that file and layers it onto cfg, leaving any already-flag-set field
// untouched. configPath == "" is a no-op, returning cfg unchanged.
func Resolve(cfg Config, configPath string, fs *pflag.FlagSet) (Config, error) {
	if configPath == "" {
		return cfg, nil
	}
	fc, err := LoadFile(configPath)
	if err != nil {
		return cfg, err
	}
	return Apply(cfg, fc, ChangedFlags(fs)), nil
}
