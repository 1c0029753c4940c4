package main

import (
	"os"

	"github.com/spf13/cobra"

	"brocot/internal/version"
)

var (
	// dirFlag is the workspace directory holding .brocot/
	dirFlag string
	// scopeFlag selects the forest partition; overrides the config value
	scopeFlag string
	// verboseFlag raises log verbosity to debug
	verboseFlag bool
	// quietFlag suppresses all logs
	quietFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "brocot",
	Short: "brocot - rational-coordinate tree store",
	Long: `brocot stores arbitrarily deep trees in SQLite using exact rational
coordinates (Stern-Brocot mediants). Ancestor and descendant lookups are
single range queries, depth falls out of the coordinate itself, and moving
a whole subtree is one bounded update - no renumbering, ever.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("brocot version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", ".",
		"Workspace directory containing .brocot/")
	rootCmd.PersistentFlags().StringVar(&scopeFlag, "scope", "",
		"Forest partition to operate on (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Suppress all logging")
}

// resolveScope determines the effective scope from CLI flag, env var, and
// config. Precedence: flag > BROCOT_SCOPE > config.
func resolveScope(configScope string) string {
	if scopeFlag != "" {
		return scopeFlag
	}
	if env := os.Getenv("BROCOT_SCOPE"); env != "" {
		return env
	}
	return configScope
}
