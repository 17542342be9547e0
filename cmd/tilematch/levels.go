package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/tilematch/internal/level"
)

// LevelsCmd inspects level catalogs.
type LevelsCmd struct {
	List  LevelsListCmd  `cmd:"" default:"1" help:"List levels in the catalog"`
	Check LevelsCheckCmd `cmd:"" help:"Validate level catalog files"`
}

type LevelsListCmd struct{}

func (c *LevelsListCmd) Run(g *Globals) error {
	catalog, err := g.Catalog()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, catalog.Len())
	for _, l := range catalog.Levels() {
		rows = append(rows, []string{
			fmt.Sprint(l.ID),
			l.Name,
			fmt.Sprintf("%dx%d", l.Shape.Rows(), l.Shape.Cols()),
			fmt.Sprint(l.Pairs()),
			limit(l.Time, "s"),
			limit(l.MaxMoves, ""),
		})
	}
	fmt.Println(renderTable([]string{"ID", "Name", "Grid", "Pairs", "Time", "Moves"}, rows))
	return nil
}

type LevelsCheckCmd struct {
	Files []string `arg:"" type:"existingfile" help:"Catalog files to validate"`
}

func (c *LevelsCheckCmd) Run() error {
	failed := 0
	for _, path := range c.Files {
		catalog, err := level.Load(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: ok (%d levels)\n", path, catalog.Len())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d catalogs invalid", failed, len(c.Files))
	}
	return nil
}

func limit(n int, unit string) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%s", n, unit)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Faint(true)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
