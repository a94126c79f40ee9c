package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"logmon/internal/app"
	"logmon/internal/filter"
	"logmon/internal/runstate"
	"logmon/internal/session"
)

func init() {
	rootCmd.AddCommand(cmdSessions)
	rootCmd.AddCommand(cmdSession)
	cmdSession.AddCommand(cmdSessionAdd, cmdSessionRm)
}

var cmdSessions = &cobra.Command{
	Use:   "sessions",
	Short: "List configured log files with their filters and monitor status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		out := cmd.OutOrStdout()
		sessions := ctrl.Sessions()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No log files configured")
			return nil
		}

		monitors, err := ctrl.Monitors()
		if err != nil {
			return err
		}
		byPath := make(map[string]runstate.Entry, len(monitors))
		for _, m := range monitors {
			byPath[m.LogPath] = m
		}

		for _, s := range sessions {
			status := "idle"
			if m, ok := byPath[s.LogPath()]; ok && m.Alive {
				status = fmt.Sprintf("monitoring pid=%d", m.PID)
			}
			fmt.Fprintf(out, "%s (%s)\n", s.LogPath(), status)
			printFilters(out, s.Filters(), "  ")
		}
		return nil
	},
}

func printFilters(out io.Writer, fs []filter.Filter, indent string) {
	if len(fs) == 0 {
		fmt.Fprintf(out, "%sno filters\n", indent)
		return
	}
	for i, f := range fs {
		mark := " "
		if f.Enabled {
			mark = "x"
		}
		fmt.Fprintf(out, "%s%d. [%s] %s\n", indent, i+1, mark, f.Text)
	}
}

var cmdSession = &cobra.Command{
	Use:   "session",
	Short: "Add or remove configured log files",
}

var cmdSessionAdd = &cobra.Command{
	Use:   "add <log-file> [filter...]",
	Short: "Add a log file, optionally with enabled filters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		if strings.TrimSpace(args[0]) == "" {
			return session.ErrEmptyLogPath
		}
		s, err := ctrl.AddSession(args[0], args[1:]...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s with %d filter(s)\n", s.LogPath(), len(s.Filters()))
		return nil
	},
}

var cmdSessionRm = &cobra.Command{
	Use:     "rm <log-file>",
	Aliases: []string{"remove"},
	Short:   "Stop monitoring a log file and delete its saved filters",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		s, err := configured(ctrl, args[0])
		if err != nil {
			return err
		}
		if err := ctrl.DeleteSession(s.ID()); err != nil {
			return err
		}
		// A monitor started by another logmon process is only reachable
		// through its run-state record.
		if _, err := ctrl.StopMonitors(app.StopParams{LogPaths: []string{s.LogPath()}, Force: true}); err != nil && !errors.Is(err, runstate.ErrNotTracked) {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", s.LogPath())
		return nil
	},
}
