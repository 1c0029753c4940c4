package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit the stored coordinates against the interval invariants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, db, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		ctx := cmd.Context()
		nodes, err := engine.All(ctx)
		if err != nil {
			return err
		}
		issues, err := engine.Validate(ctx)
		if err != nil {
			return err
		}

		version, err := db.SchemaVersion()
		if err != nil {
			return err
		}
		size, err := db.SizeBytes()
		if err != nil {
			return err
		}

		fmt.Printf("database:  %s (%s, schema v%d)\n", db.Path(), humanize.Bytes(uint64(size)), version)
		fmt.Printf("scope:     %q\n", engine.Scope())
		fmt.Printf("nodes:     %d\n", len(nodes))

		if len(issues) == 0 {
			color.Green("ok: all coordinates consistent")
			return nil
		}
		for _, issue := range issues {
			color.Red("bad: %s (%s): %s", issue.Label, issue.NodeID, issue.Problem)
		}
		return fmt.Errorf("%d invariant issue(s) found", len(issues))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
