package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <parent> <label>",
	Short: "Create a child node under a parent",
	Long: `Create a node in the next free slot under the parent. The slot is the
mediant of the parent's left endpoint and the newest existing child, so
siblings never collide and nothing is renumbered.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		node, err := engine.CreateChild(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s/%s  id=%s\n", node.Label, node.P, node.Q, node.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
