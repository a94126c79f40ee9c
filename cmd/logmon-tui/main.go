package main

import (
	"flag"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"logmon/internal/tui"
)

func main() {
	settingsPath := flag.String("settings", "", "Path to the settings file (YAML or JSON)")
	storePath := flag.String("store", "", "Path to the monitor config file")
	skipHelp := flag.Bool("skip-help", false, "Do not show the key overview on first run")
	verbose := flag.Bool("verbose", false, "Write debug details to the log file")
	flag.Parse()

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		log.Fatal("logmon-tui needs an interactive terminal; use the logmon command for scripts")
	}

	err := tui.Launch(tui.LaunchOptions{
		SettingsPath: *settingsPath,
		StorePath:    *storePath,
		SkipHelp:     *skipHelp,
		Verbose:      *verbose,
	})
	if err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
