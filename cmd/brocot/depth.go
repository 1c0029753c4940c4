package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depthCmd = &cobra.Command{
	Use:   "depth <node>",
	Short: "Print how many ancestors a node has",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		depth, err := engine.Depth(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(depth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depthCmd)
}
