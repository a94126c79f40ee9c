package tui

import (
	"fmt"

	"logmon/internal/app"
	"logmon/internal/config"
	"logmon/internal/logging"
)

// LaunchOptions configures Launch.
type LaunchOptions struct {
	SettingsPath string
	StorePath    string
	SkipHelp     bool
	Verbose      bool
}

// Launch loads the settings, builds the controller and runs the TUI until
// the user quits. Logs go to the configured log file since the UI owns the
// terminal.
func Launch(opts LaunchOptions) error {
	cfg, err := config.Load(opts.SettingsPath, logging.NewStderr(false))
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.NewFile(cfg.LogFile, opts.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := app.New(app.Options{Settings: &cfg, StorePath: opts.StorePath, Logger: logger})
	if err != nil {
		return err
	}
	defer ctrl.Shutdown()

	var notice string
	if err := ctrl.Open(); err != nil {
		notice = fmt.Sprintf("Could not read %s: %v", ctrl.Store().Path(), err)
	} else if backup := ctrl.Store().Recovered(); backup != "" {
		notice = "Config file was not valid JSON and was moved to " + backup
	}

	return Run(ctrl, Options{
		ShowHelp: ctrl.Store().Created() && !opts.SkipHelp,
		Notice:   notice,
	})
}
