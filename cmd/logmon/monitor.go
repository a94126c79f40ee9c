package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"logmon/internal/app"
	"logmon/internal/session"
)

var (
	monitorWait     bool
	monitorForce    bool
	monitorStopAll  bool
	spinnerInterval = 120 * time.Millisecond
)

func init() {
	rootCmd.AddCommand(cmdMonitor)
	cmdMonitor.AddCommand(cmdMonitorStart, cmdMonitorStop, cmdMonitorStatus)
	cmdMonitorStart.Flags().BoolVarP(&monitorWait, "wait", "w", false, "Stay in the foreground until the terminal closes; Ctrl+C stops the monitor")
	cmdMonitorStop.Flags().BoolVarP(&monitorForce, "force", "f", false, "Send SIGKILL if the terminal ignores SIGTERM")
	cmdMonitorStop.Flags().BoolVar(&monitorStopAll, "all", false, "Stop every recorded monitor")
}

var cmdMonitor = &cobra.Command{
	Use:   "monitor",
	Short: "Start, stop and inspect monitor terminals",
}

var cmdMonitorStart = &cobra.Command{
	Use:   "start <log-file>",
	Short: "Open a terminal following the log file through its enabled filters",
	Long: `Opens a terminal running tail -F on the log file piped through one
grep stage per enabled filter. Log files without a saved config are followed
unfiltered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		s, ok := ctrl.FindByPath(args[0])
		if !ok {
			s = ctrl.Transient(args[0])
		}
		if err := s.StartMonitoring(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Monitoring %s in a new terminal (pid %d)\n", s.LogPath(), s.PID())
		if !monitorWait {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		spin := spinner.New(spinner.CharSets[21], spinnerInterval, spinner.WithWriter(cmd.ErrOrStderr()))
		spin.Suffix = " Monitoring… (Ctrl+C to stop)"
		spin.Start()
		st, err := ctrl.WaitStopped(ctx, s)
		spin.Stop()

		if errors.Is(err, context.Canceled) {
			s.StopMonitoring()
			fmt.Fprintln(out, "Monitoring stopped")
			return nil
		}
		if err != nil {
			return err
		}
		if st == session.StoppedExternally {
			fmt.Fprintln(out, "Monitor terminal was closed")
		}
		return nil
	},
}

var cmdMonitorStop = &cobra.Command{
	Use:   "stop [log-file...]",
	Short: "Stop monitor terminals by log file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		res, err := ctrl.StopMonitors(app.StopParams{LogPaths: args, AllowAll: monitorStopAll, Force: monitorForce})
		out := cmd.OutOrStdout()
		if res.Message != "" {
			fmt.Fprintln(out, res.Message)
		}
		for _, ev := range res.Events {
			switch ev.Kind {
			case "success":
				fmt.Fprintf(out, "Stopped %s (pid %d)\n", ev.Entry.LogPath, ev.Entry.PID)
			case "stale":
				fmt.Fprintf(out, "Monitor for %s had already exited (pid %d)\n", ev.Entry.LogPath, ev.Entry.PID)
			case "failure":
				fmt.Fprintf(out, "Failed to stop %s (pid %d): %v\n", ev.Entry.LogPath, ev.Entry.PID, ev.Err)
			}
		}
		return err
	},
}

var cmdMonitorStatus = &cobra.Command{
	Use:   "status",
	Short: "List recorded monitor terminals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		list, err := ctrl.Monitors()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No monitors recorded")
			return nil
		}
		for _, e := range list {
			state := "exited"
			if e.Alive {
				state = "running"
			}
			fmt.Fprintf(out, "%s pid=%d %s since %s\n", e.LogPath, e.PID, state, e.StartedAt.Local().Format(time.DateTime))
			if e.Cmdline != "" {
				fmt.Fprintf(out, "  %s\n", e.Cmdline)
			}
		}
		return nil
	},
}
