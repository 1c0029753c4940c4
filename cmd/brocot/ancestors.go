package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <node>",
	Short: "Print the ancestor chain of a node, nearest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		chain, err := engine.Ancestors(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, n := range chain {
			fmt.Printf("%s  (%s/%s)\n", n.Label, n.P, n.Q)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ancestorsCmd)
}
