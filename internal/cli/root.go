// Package cli provides the command-line interface for sqltyper.
package cli

import (
	"fmt"
	"os"

	"github.com/lenguyenthanh/sqltyper/internal/cli/commands"
	"github.com/lenguyenthanh/sqltyper/internal/cli/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqltyper",
		Short: "sqltyper - typed descriptions for PostgreSQL queries",
		Long: `sqltyper statically analyzes SQL files containing a single SELECT, INSERT,
UPDATE or DELETE statement with ${name} placeholders, against a live
PostgreSQL database, and reports each statement's input parameters and
output shape with sound nullability.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqltyper.yaml)")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text|json)")
	rootCmd.PersistentFlags().Int("jobs", 0, "Number of files analyzed concurrently")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewAnalyzeCommand(loadConfig))
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))

	return rootCmd
}

// loadConfig resolves the configuration for a command invocation.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cfgFile, cmd.Root().PersistentFlags())
}

// Execute runs the root command. Errors are printed here because the root
// command silences cobra's own reporting.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
