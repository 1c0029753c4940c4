package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brocot/internal/export"
)

var (
	exportOutput string
	exportGzip   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <node>",
	Short: "Write a YAML snapshot of a subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOutput, err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		compress := exportGzip || strings.HasSuffix(exportOutput, ".gz")
		return export.NewExporter(engine).Export(cmd.Context(), args[0], out, compress)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write the snapshot to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "gzip the snapshot")
	rootCmd.AddCommand(exportCmd)
}
