package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	settingsPath string
	storePath    string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "logmon [command]",
	Short: "logmon: filtered live log monitoring",
	Long: `logmon keeps a list of text filters per log file and opens a terminal
running tail -F through those filters. Filters are saved to a JSON config file
shared with the interactive UI (logmon tui).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to the settings file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the monitor config file (overrides settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
