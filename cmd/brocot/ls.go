package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"brocot/internal/storage"
)

var lsCmd = &cobra.Command{
	Use:   "ls [node]",
	Short: "List nodes in the scope, or the children of a node",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		ctx := cmd.Context()
		var nodes []*storage.Node
		if len(args) == 1 {
			nodes, err = engine.Children(ctx, args[0])
		} else {
			nodes, err = engine.All(ctx)
		}
		if err != nil {
			return err
		}

		w := table.NewWriter()
		w.SetOutputMirror(os.Stdout)
		w.SetStyle(table.StyleLight)
		w.AppendHeader(table.Row{"Label", "Coordinate", "Depth", "Hint", "ID"})
		for _, n := range nodes {
			coord, err := n.Coordinate()
			if err != nil {
				return err
			}
			depth, err := engine.Algebra().Depth(coord)
			if err != nil {
				return err
			}
			w.AppendRow(table.Row{n.Label, fmt.Sprintf("%s/%s", n.P, n.Q), depth, fmt.Sprintf("%.9f", n.Hint), n.ID})
		}
		w.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
