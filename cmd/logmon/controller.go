package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"logmon/internal/app"
	"logmon/internal/logging"
	"logmon/internal/runstate"
	"logmon/internal/session"
)

// controllerAPI is the part of app.App the commands use.
type controllerAPI interface {
	Open() error
	Sessions() []*session.Session
	FindByPath(logPath string) (*session.Session, bool)
	AddSession(logPath string, filters ...string) (*session.Session, error)
	DeleteSession(id string) error
	Transient(logPath string) *session.Session
	LastSaveError() error
	Monitors() ([]runstate.Entry, error)
	StopMonitors(params app.StopParams) (app.StopResult, error)
	WaitStopped(ctx context.Context, s *session.Session) (session.State, error)
	Shutdown()
}

var controllerFactory = func(opts app.Options) (controllerAPI, error) {
	return app.New(opts)
}

// openController builds the controller from the global flags and loads the
// monitor config.
func openController() (controllerAPI, error) {
	ctrl, err := controllerFactory(app.Options{
		SettingsPath: settingsPath,
		StorePath:    storePath,
		Logger:       logging.NewStderr(verbose),
	})
	if err != nil {
		return nil, err
	}
	if err := ctrl.Open(); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// configured returns the saved session for logPath.
func configured(ctrl controllerAPI, logPath string) (*session.Session, error) {
	if strings.TrimSpace(logPath) == "" {
		return nil, session.ErrEmptyLogPath
	}
	s, ok := ctrl.FindByPath(logPath)
	if !ok {
		return nil, fmt.Errorf("no config for %s (add it with `logmon session add %s`)", logPath, logPath)
	}
	return s, nil
}

// saved reports a failed save of the monitor config.
func saved(ctrl controllerAPI) error {
	if err := ctrl.LastSaveError(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}
	return nil
}

// parseIndex converts a 1-based filter position into a list index.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 {
		return 0, fmt.Errorf("invalid filter index %q (use the number shown by `filter list`)", arg)
	}
	if i > n {
		return 0, fmt.Errorf("filter index %d out of range (%d filters)", i, n)
	}
	return i - 1, nil
}
