package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logmon/internal/tui"
)

var tuiSkipHelp bool

func init() {
	rootCmd.AddCommand(cmdTUI)
	cmdTUI.Flags().BoolVar(&tuiSkipHelp, "skip-help", false, "Do not show the key overview on first run")
}

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := tui.Launch(tui.LaunchOptions{
			SettingsPath: settingsPath,
			StorePath:    storePath,
			SkipHelp:     tuiSkipHelp,
			Verbose:      verbose,
		})
		if err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}
