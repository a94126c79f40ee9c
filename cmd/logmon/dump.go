package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dumpTo string

func init() {
	rootCmd.AddCommand(cmdDump, cmdExport)
	cmdDump.Flags().StringVarP(&dumpTo, "to", "o", "", "Copy the log into this file instead of opening a terminal")
}

var cmdDump = &cobra.Command{
	Use:   "dump <log-file>",
	Short: "Show the whole log file in a new terminal, or copy it to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		s := ctrl.Transient(args[0])
		if dumpTo == "" {
			if err := s.DumpToTerminal(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s in a new terminal\n", s.LogPath())
			return nil
		}
		n, err := s.DumpToFile(dumpTo)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %d bytes to %s\n", n, dumpTo)
		return nil
	},
}

var cmdExport = &cobra.Command{
	Use:   "export <log-file> <dest.csv>",
	Short: "Export bracketed log lines as CSV",
	Long: `Writes one CSV row per line of the form "[a] [b] [c] message":
a,b,c,"message". Other lines are skipped. No header is written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController()
		if err != nil {
			return err
		}
		defer ctrl.Shutdown()

		rows, err := ctrl.Transient(args[0]).ExportCSV(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", rows, args[1])
		return nil
	},
}
