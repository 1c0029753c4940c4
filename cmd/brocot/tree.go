package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"

	"brocot/internal/storage"
)

var treeCmd = &cobra.Command{
	Use:   "tree [node]",
	Short: "Render a subtree (default: the whole forest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		ctx := cmd.Context()
		var tops []*storage.Node
		if len(args) == 1 {
			node, err := engine.Get(ctx, args[0])
			if err != nil {
				return err
			}
			tops = []*storage.Node{node}
		} else {
			tops, err = engine.Roots(ctx)
			if err != nil {
				return err
			}
		}

		nodes, err := engine.All(ctx)
		if err != nil {
			return err
		}
		byParent := groupByParent(nodes)

		w := list.NewWriter()
		w.SetStyle(list.StyleConnectedLight)
		for _, top := range tops {
			renderSubtree(w, byParent, top)
		}
		fmt.Println(w.Render())
		return nil
	},
}

// groupByParent indexes nodes by parent id, oldest slot first so siblings
// print in creation order.
func groupByParent(nodes []*storage.Node) map[string][]*storage.Node {
	byParent := make(map[string][]*storage.Node)
	for _, n := range nodes {
		byParent[n.ParentID] = append(byParent[n.ParentID], n)
	}
	for _, group := range byParent {
		for i, j := 0, len(group)-1; i < j; i, j = i+1, j-1 {
			group[i], group[j] = group[j], group[i]
		}
	}
	return byParent
}

func renderSubtree(w list.Writer, byParent map[string][]*storage.Node, n *storage.Node) {
	w.AppendItem(fmt.Sprintf("%s  (%s/%s)", n.Label, n.P, n.Q))
	children := byParent[n.ID]
	if len(children) == 0 {
		return
	}
	w.Indent()
	for _, child := range children {
		renderSubtree(w, byParent, child)
	}
	w.UnIndent()
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
