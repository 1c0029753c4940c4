package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <node> <new-parent>",
	Short: "Reparent a node, relocating its whole subtree",
	Long: `Move a node under a new parent. Every descendant's coordinate is rewritten
through one exact linear transform inside a single transaction, so readers
never observe a half-moved subtree. Moving a node under itself or one of
its own descendants is rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		node, err := engine.Move(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s/%s\n", node.Label, node.P, node.Q)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
