package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdFilter)
	cmdFilter.AddCommand(cmdFilterList, cmdFilterAdd, cmdFilterEdit, cmdFilterRm, cmdFilterEnable, cmdFilterDisable)
}

var cmdFilter = &cobra.Command{
	Use:   "filter",
	Short: "Manage the filters of a configured log file",
	Long: `Filters are plain substrings. A line is shown by the monitor only if it
contains every enabled filter. Filters are addressed by the 1-based number
printed by "filter list".`,
}

var cmdFilterList = &cobra.Command{
	Use:   "list <log-file>",
	Short: "Show the filters of a log file",
	Args:  cobra.ExactArgs(1),
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
		printFilters(cmd.OutOrStdout(), s.Filters(), "")
		return nil
	},
}

var cmdFilterAdd = &cobra.Command{
	Use:   "add <log-file> <text>...",
	Short: "Append enabled filters (duplicates are ignored)",
	Args:  cobra.MinimumNArgs(2),
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
		added := 0
		for _, text := range args[1:] {
			if s.AddFilter(text) {
				added++
			}
		}
		if err := saved(ctrl); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d filter(s)\n", added)
		return nil
	},
}

var cmdFilterEdit = &cobra.Command{
	Use:   "edit <log-file> <n> <text>",
	Short: "Replace the text of filter n",
	Args:  cobra.ExactArgs(3),
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
		i, err := parseIndex(args[1], len(s.Filters()))
		if err != nil {
			return err
		}
		changed, err := s.EditFilter(i, args[2])
		if err != nil {
			return err
		}
		if err := saved(ctrl); err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Filter %d updated\n", i+1)
		return nil
	},
}

var cmdFilterRm = &cobra.Command{
	Use:   "rm <log-file> <n>",
	Short: "Remove filter n",
	Args:  cobra.ExactArgs(2),
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
		i, err := parseIndex(args[1], len(s.Filters()))
		if err != nil {
			return err
		}
		if err := s.RemoveFilter(i); err != nil {
			return err
		}
		if err := saved(ctrl); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Filter %d removed\n", i+1)
		return nil
	},
}

var (
	cmdFilterEnable  = toggleCommand("enable", "Enable filters by number", true)
	cmdFilterDisable = toggleCommand("disable", "Disable filters by number (they stay saved)", false)
)

func toggleCommand(name, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <log-file> <n>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
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
			n := len(s.Filters())
			indexes := make([]int, 0, len(args)-1)
			for _, arg := range args[1:] {
				i, err := parseIndex(arg, n)
				if err != nil {
					return err
				}
				indexes = append(indexes, i)
			}
			for _, i := range indexes {
				if err := s.ToggleFilter(i, enabled); err != nil {
					return err
				}
			}
			if err := saved(ctrl); err != nil {
				return err
			}
			printFilters(cmd.OutOrStdout(), s.Filters(), "")
			return nil
		},
	}
}
