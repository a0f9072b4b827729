package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"whlsl/internal/ast"
	"whlsl/internal/semantics"
	"whlsl/internal/types"
)

var semanticsCmd = &cobra.Command{
	Use:   "semantics",
	Short: "List built-in semantics with their types and allowed stages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		plain, err := cmd.Flags().GetBool("plain")
		if err != nil {
			return err
		}
		rows, err := semanticsRows(types.NewIntrinsics())
		if err != nil {
			return err
		}
		if plain {
			writePlainRows(cmd.OutOrStdout(), rows)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), semanticsTable(rows))
		return nil
	},
}

func init() {
	semanticsCmd.Flags().Bool("plain", false, "print tab separated rows without a table border")
}

var semanticsHeaders = []string{"SEMANTIC", "TYPE", "VERTEX", "FRAGMENT", "COMPUTE"}

var dirLabels = map[semantics.Direction]string{semantics.Input: "in", semantics.Output: "out"}

var tableStages = []ast.ShaderStage{ast.StageVertex, ast.StageFragment, ast.StageCompute}

// semanticsRows renders the built-in semantic matrix, one row per semantic.
// Stage cells read "in", "out", "in/out" or "-".
func semanticsRows(in *types.Intrinsics) ([][]string, error) {
	names := semantics.BuiltInNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		t, err := semantics.RequiredType(name, in)
		if err != nil {
			return nil, err
		}
		row := []string{name, t.String()}
		for _, stage := range tableStages {
			var dirs []string
			for _, dir := range []semantics.Direction{semantics.Input, semantics.Output} {
				ok, err := semantics.BuiltInAllowed(name, stage, dir)
				if err != nil {
					return nil, err
				}
				if ok {
					dirs = append(dirs, dirLabels[dir])
				}
			}
			if len(dirs) == 0 {
				dirs = []string{"-"}
			}
			row = append(row, strings.Join(dirs, "/"))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func semanticsTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(semanticsHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func writePlainRows(w io.Writer, rows [][]string) {
	fmt.Fprintln(w, strings.Join(semanticsHeaders, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}
