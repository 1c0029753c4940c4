package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brocot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [root-label]",
	Short: "Initialize a brocot workspace and create the root node",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := "root"
		if len(args) == 1 {
			label = args[0]
		}

		cfg := config.DefaultConfig()
		cfg.Scope = scopeFlag
		if err := cfg.Save(dirFlag); err != nil {
			return err
		}

		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		root, err := engine.CreateRoot(cmd.Context(), label)
		if err != nil {
			return err
		}

		fmt.Printf("Initialized workspace; root %q at %s/%s\n", root.Label, root.P, root.Q)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
