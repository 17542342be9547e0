package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/score"
)

// Globals are flags shared by every command.
type Globals struct {
	Debug      bool   `help:"Enable debug logging" env:"TILEMATCH_DEBUG"`
	LogFormat  string `enum:"text,json,logfmt" default:"text" help:"Log output format" env:"TILEMATCH_LOG_FORMAT"`
	LevelsFile string `name:"levels" type:"path" help:"Level catalog file (HCL or YAML); the built-in catalog when empty" env:"TILEMATCH_LEVELS"`
	ScoreKind  string `name:"scores-kind" enum:"memory,file,sqlite" default:"file" help:"Best score store" env:"TILEMATCH_SCORES_KIND"`
	ScorePath  string `name:"scores-path" type:"path" help:"Best score store location (default ~/.tilematch/scores.json, or scores.db for sqlite)" env:"TILEMATCH_SCORES_PATH"`
}

// Logger builds the command logger writing to w.
func (g *Globals) Logger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	if g.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	switch g.LogFormat {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger
}

// Catalog loads the level catalog.
func (g *Globals) Catalog() (*level.Catalog, error) {
	if g.LevelsFile == "" {
		return level.Default(), nil
	}
	return level.Load(g.LevelsFile)
}

// Store opens the best score store.
func (g *Globals) Store() (score.Store, error) {
	path, err := g.ScoreLocation()
	if err != nil {
		return nil, err
	}
	return openStore(g.ScoreKind, path)
}

// ScoreLocation returns --scores-path, or a default under ~/.tilematch
// whose extension matches the store kind.
func (g *Globals) ScoreLocation() (string, error) {
	if g.ScorePath != "" || g.ScoreKind == "memory" {
		return g.ScorePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	name := "scores.json"
	if g.ScoreKind == "sqlite" {
		name = "scores.db"
	}
	return filepath.Join(home, ".tilematch", name), nil
}

func openStore(kind, path string) (score.Store, error) {
	s, err := score.Open(kind, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s score store: %w", kind, err)
	}
	return s, nil
}

// stderrLogger is used by commands that print results to stdout.
func (g *Globals) stderrLogger() *log.Logger {
	return g.Logger(os.Stderr)
}
