package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// cellsCommand creates the cells command that prints the detected cells.
func (c *CLI) cellsCommand() *cobra.Command {
	var (
		blocks bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "cells [topology.json]",
		Short: "Print the cells detected in each voltage level",
		Long: `Print the cells detected in each voltage level.

The topology is laid out without caching, then every cell is listed with its
kind, shape or direction, order and nodes. Use --blocks to add the block tree
of each cell.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.params(cmd)
			if err != nil {
				return err
			}
			return c.runCells(cmd.Context(), args[0], p, blocks)
		},
	}

	cmd.Flags().BoolVarP(&blocks, "blocks", "b", false, "show the block tree of each cell")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runCells(ctx context.Context, input string, p params.Parameters, blocks bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	d, err := runner.Decode(ctx, data)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	if err := runner.Layout(ctx, d, p); err != nil {
		return err
	}
	prog.done("laid out", "panels", len(d.Panels()))

	for i, g := range d.Panels() {
		if i > 0 {
			printNewline()
		}
		fmt.Fprintln(uiOut, StyleTitle.Render(g.ID) + " " + StyleDim.Render(fmt.Sprintf("%d rows · hspan %d", g.MaxRow, g.HSpan)))
		fmt.Fprintln(uiOut, cellTable(g, blocks))
	}
	return nil
}

// cellTable renders the cells of g as a table, one row per cell.
func cellTable(g *sld.Graph, blocks bool) string {
	cells := append([]*sld.Cell(nil), g.Cells()...)
	sld.SortCells(cells)

	headers := []string{"Cell", "Kind", "Layout", "Order", "Nodes"}
	if blocks {
		headers = append(headers, "Blocks")
	}

	unhandled := make(map[int]bool)
	rows := make([][]string, 0, len(cells))
	for i, cell := range cells {
		row := []string{cell.ID(), cell.Kind.String(), cellLayout(cell), cellOrder(cell), nodeIDs(cell.Nodes())}
		if blocks {
			row = append(row, blockString(cell.Root))
		}
		if cell.Kind == sld.InternCell && cell.Shape == sld.ShapeUnhandled {
			unhandled[i] = true
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case unhandled[row]:
				return styleWarn
			case col == 1:
				return cellKindStyles[cells[row].Kind]
			default:
				return styleCell
			}
		})
	return t.String()
}

func cellLayout(c *sld.Cell) string {
	switch c.Kind {
	case sld.ExternCell:
		return c.Direction.String()
	case sld.InternCell:
		if c.Level > 0 {
			return c.Shape.String() + " L" + strconv.Itoa(c.Level)
		}
		return c.Shape.String()
	}
	return ""
}

func cellOrder(c *sld.Cell) string {
	if c.Order < 0 {
		return "-"
	}
	return strconv.Itoa(c.Order)
}

func nodeIDs(nodes []*sld.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return strings.Join(ids, " ")
}

func blockString(b *sld.Block) string {
	if b == nil {
		return "-"
	}
	return b.String()
}
