// Package cmd implements the weiser CLI: run, compile, and sample,
// each a package-level cobra.Command wired up from its own init().
package cmd

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "weiser",
	Short: "Declarative data-quality checks over SQL sources",
	Long:  "weiser runs declarative data-quality checks over SQL sources and records every outcome in a metric store.",
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(sampleCmd)
}

// Execute runs the root command. Called from main().
func Execute() error {
	return rootCmd.Execute()
}

// configFlags are the document-loading flags shared by every subcommand.
type configFlags struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool
}

func addConfigFlags(cmd *cobra.Command, f *configFlags) {
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "weiser.yml", "Path to the check configuration document (a positional config argument takes precedence)")
	cmd.Flags().StringVarP(&f.EnvFile, "env-file", "e", "", "Path to an .env file for template expansion")
	cmd.Flags().BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging")
}
