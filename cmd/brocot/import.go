package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brocot/internal/export"
)

var (
	importInput string
	importGzip  bool
)

var importCmd = &cobra.Command{
	Use:   "import [parent]",
	Short: "Recreate a snapshot under a parent node (or as the scope root)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		in := os.Stdin
		if importInput != "" {
			f, err := os.Open(importInput)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", importInput, err)
			}
			defer func() { _ = f.Close() }()
			in = f
		}

		parent := ""
		if len(args) == 1 {
			parent = args[0]
		}
		compressed := importGzip || strings.HasSuffix(importInput, ".gz")
		created, err := export.NewImporter(engine).Import(cmd.Context(), parent, in, compressed)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d node(s)\n", created)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "read the snapshot from a file instead of stdin")
	importCmd.Flags().BoolVar(&importGzip, "gzip", false, "snapshot is gzip compressed")
	rootCmd.AddCommand(importCmd)
}
