package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"logmon/internal/follow"
	"logmon/internal/session"
)

var (
	followFromStart bool
	followGrep      []string
	followPoll      bool
)

func init() {
	rootCmd.AddCommand(cmdFollow)
	cmdFollow.Flags().BoolVar(&followFromStart, "from-start", false, "Print the existing content before following")
	cmdFollow.Flags().StringArrayVarP(&followGrep, "grep", "g", nil, "Extra filter for this run only (repeatable)")
	cmdFollow.Flags().BoolVar(&followPoll, "poll", false, "Poll the file instead of using inotify")
}

var cmdFollow = &cobra.Command{
	Use:   "follow <log-file>",
	Short: "Follow the log file in this terminal through its enabled filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		s := ctrl.Transient(args[0])
		if s.LogPath() == "" {
			return session.ErrEmptyLogPath
		}
		filters := append(s.SelectedFilters(), followGrep...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return follow.Follow(ctx, s.LogPath(), filters, cmd.OutOrStdout(), follow.Options{
			FromStart: followFromStart,
			Poll:      followPoll,
		})
	},
}
