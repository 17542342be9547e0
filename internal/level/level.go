// Package level loads level definitions: the board shape, optional time and
// move limits, and optional card labels for every level of the game.
//
// Catalogs are written in HCL:
//
//	level "1" {
//	  name  = "Warm up"
//	  shape = [[1, 1], [1, 1]]
//	  time  = 30
//	}
//
// YAML files (.yaml, .yml) with a top-level "levels" list are accepted too.
package level

import (
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/tilematch/internal/layout"
	"gopkg.in/yaml.v3"
)

//go:embed levels.hcl
var defaultCatalog []byte

// ErrLevelNotFound is returned when a catalog has no level with an id.
var ErrLevelNotFound = errors.New("level not found")

// Level is one playable board.
type Level struct {
	ID       int
	Name     string
	Shape    layout.Mask
	Time     int // seconds, 0 for untimed
	MaxMoves int // 0 for no limit
	Labels   []string
}

// Pairs returns the number of pairs on the board.
func (l Level) Pairs() int {
	return l.Shape.Count() / 2
}

// Timed reports whether the level has a countdown.
func (l Level) Timed() bool {
	return l.Time > 0
}

// Validate checks that the level can be built into a board.
func (l Level) Validate() error {
	cells := l.Shape.Count()
	switch {
	case cells == 0:
		return fmt.Errorf("level %d: shape has no active cells", l.ID)
	case cells%2 != 0:
		return fmt.Errorf("level %d: shape has %d active cells, need an even number", l.ID, cells)
	case l.Time < 0:
		return fmt.Errorf("level %d: negative time %d", l.ID, l.Time)
	case l.MaxMoves < 0:
		return fmt.Errorf("level %d: negative max_moves %d", l.ID, l.MaxMoves)
	}

	if len(l.Labels) == 0 {
		return nil
	}
	if len(l.Labels) < l.Pairs() {
		return fmt.Errorf("level %d: %d labels for %d pairs", l.ID, len(l.Labels), l.Pairs())
	}
	// Only the first Pairs() labels reach the board; the rest are unused.
	used := l.Labels[:l.Pairs()]
	seen := make(map[string]bool, len(used))
	for _, label := range used {
		if seen[label] {
			return fmt.Errorf("level %d: duplicate label %q", l.ID, label)
		}
		seen[label] = true
	}
	return nil
}

// Catalog is an ordered set of levels.
type Catalog struct {
	levels []Level
}

// NewCatalog creates a catalog, sorted by level id. Every level is validated
// and ids must be unique.
func NewCatalog(levels []Level) (*Catalog, error) {
	sorted := slices.Clone(levels)
	slices.SortFunc(sorted, func(a, b Level) int { return cmp.Compare(a.ID, b.ID) })

	for i, l := range sorted {
		if i > 0 && sorted[i-1].ID == l.ID {
			return nil, fmt.Errorf("duplicate level id %d", l.ID)
		}
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	return &Catalog{levels: sorted}, nil
}

// Get returns the level with id.
func (c *Catalog) Get(id int) (Level, error) {
	i, ok := slices.BinarySearchFunc(c.levels, id, func(l Level, id int) int { return cmp.Compare(l.ID, id) })
	if !ok {
		return Level{}, fmt.Errorf("%w: %d", ErrLevelNotFound, id)
	}
	return c.levels[i], nil
}

// Next returns the level after id.
func (c *Catalog) Next(id int) (Level, bool) {
	for _, l := range c.levels {
		if l.ID > id {
			return l, true
		}
	}
	return Level{}, false
}

// First returns the lowest level.
func (c *Catalog) First() (Level, bool) {
	if len(c.levels) == 0 {
		return Level{}, false
	}
	return c.levels[0], true
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}

// Levels returns every level in id order.
func (c *Catalog) Levels() []Level {
	return slices.Clone(c.levels)
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog, "levels.hcl")
	if err != nil {
		panic("embedded level catalog is invalid: " + err.Error())
	}
	return c
}

// Load reads a catalog file. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level catalog: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes a catalog. The format is chosen by the filename extension;
// anything other than .yaml or .yml is read as HCL.
func Parse(src []byte, filename string) (*Catalog, error) {
	var (
		levels []Level
		err    error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		levels, err = parseYAML(src)
	default:
		levels, err = parseHCL(src, filename)
	}
	if err != nil {
		return nil, err
	}
	return NewCatalog(levels)
}

type hclCatalog struct {
	Levels []hclLevel `hcl:"level,block"`
}

type hclLevel struct {
	ID       string   `hcl:"id,label"`
	Name     string   `hcl:"name,optional"`
	Shape    [][]int  `hcl:"shape"`
	Time     int      `hcl:"time,optional"`
	MaxMoves int      `hcl:"max_moves,optional"`
	Labels   []string `hcl:"labels,optional"`
}

func parseHCL(src []byte, filename string) ([]Level, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw hclCatalog
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	levels := make([]Level, 0, len(raw.Levels))
	for _, rl := range raw.Levels {
		id, err := strconv.Atoi(rl.ID)
		if err != nil {
			return nil, fmt.Errorf("level %q: id must be an integer", rl.ID)
		}
		levels = append(levels, Level{
			ID:       id,
			Name:     rl.Name,
			Shape:    layout.Mask(rl.Shape),
			Time:     rl.Time,
			MaxMoves: rl.MaxMoves,
			Labels:   rl.Labels,
		})
	}
	return levels, nil
}

type yamlCatalog struct {
	Levels []yamlLevel `yaml:"levels"`
}

type yamlLevel struct {
	ID       int      `yaml:"id"`
	Name     string   `yaml:"name"`
	Shape    [][]int  `yaml:"shape"`
	Time     int      `yaml:"time"`
	MaxMoves int      `yaml:"max_moves"`
	Labels   []string `yaml:"labels"`
}

func parseYAML(src []byte) ([]Level, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	levels := make([]Level, 0, len(raw.Levels))
	for _, rl := range raw.Levels {
		levels = append(levels, Level{
			ID:       rl.ID,
			Name:     rl.Name,
			Shape:    layout.Mask(rl.Shape),
			Time:     rl.Time,
			MaxMoves: rl.MaxMoves,
			Labels:   rl.Labels,
		})
	}
	return levels, nil
}
