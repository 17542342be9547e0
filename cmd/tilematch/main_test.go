package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Bind(&cli.Globals))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestDefaultsToPlay(t *testing.T) {
	cli, ctx := parse(t)
	assert.Equal(t, "play", ctx.Command())
	assert.Equal(t, "file", cli.ScoreKind)
	assert.Equal(t, "text", cli.LogFormat)
}

func TestSimulateFlags(t *testing.T) {
	cli, ctx := parse(t, "simulate", "-n", "5", "--bot", "random", "-l", "1,3", "--seed", "9")
	assert.Equal(t, "simulate", ctx.Command())
	assert.Equal(t, 5, cli.Simulate.Games)
	assert.Equal(t, []int{1, 3}, cli.Simulate.Level)
	require.NotNil(t, cli.Simulate.Seed)
	assert.Equal(t, int64(9), *cli.Simulate.Seed)
}

func TestLevelsCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.hcl")
	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(good, []byte("level \"1\" {\n  shape = [[1, 1]]\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("level \"1\" {\n  shape = [[1]]\n}\n"), 0o644))

	assert.NoError(t, (&LevelsCheckCmd{Files: []string{good}}).Run())
	assert.ErrorContains(t, (&LevelsCheckCmd{Files: []string{good, bad}}).Run(), "1 of 2 catalogs invalid")
}

func TestScoresResetNeedsConfirmation(t *testing.T) {
	g := &Globals{ScoreKind: "memory"}
	assert.Error(t, (&ScoresResetCmd{}).Run(context.Background(), g))
	assert.NoError(t, (&ScoresResetCmd{Yes: true}).Run(context.Background(), g))
}

func TestScoreLocationMatchesKind(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cli, _ := parse(t, "--scores-kind", "sqlite")
	path, err := cli.ScoreLocation()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tilematch", "scores.db"), path)

	cli, _ = parse(t)
	path, err = cli.ScoreLocation()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tilematch", "scores.json"), path)

	explicit := filepath.Join(home, "mine.db")
	cli, _ = parse(t, "--scores-kind", "sqlite", "--scores-path", explicit)
	path, err = cli.ScoreLocation()
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	store, err := (&Globals{ScoreKind: "sqlite"}).Store()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	_, err = os.Stat(filepath.Join(home, ".tilematch", "scores.db"))
	assert.NoError(t, err, "sqlite store opened at its own default")
}

func TestLimit(t *testing.T) {
	assert.Equal(t, "-", limit(0, "s"))
	assert.Equal(t, "30s", limit(30, "s"))
}
