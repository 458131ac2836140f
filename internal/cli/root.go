// Package cli implements the fraktile command-line surface: two
// subcommands, server and worker, with flags bound to viper so
// environment variables under the FRAKTILE_ prefix override them.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraktile/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "fraktile",
	Short: "A distributed fractal render grid coordinator and worker",
}

// ExitKind classifies a returned error for main's exit code mapping.
type ExitKind int

const (
	ExitClean ExitKind = iota
	ExitBindFailure
	ExitConfigError
)

// ClassifyExit inspects err and reports which exit code main should use.
func ClassifyExit(err error) ExitKind {
	if err == nil {
		return ExitClean
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitBindFailure
}

func init() {
	viper.SetEnvPrefix("FRAKTILE")
	viper.AutomaticEnv()
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(workerCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
