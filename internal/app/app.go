package app

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"logmon/internal/config"
	"logmon/internal/launcher"
	"logmon/internal/runstate"
	"logmon/internal/session"
	"logmon/internal/store"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists is returned when another open session already uses a log path.
	ErrSessionExists = errors.New("a session for this log file is already open")
	// ErrNotParked is returned by ReopenSession for paths without a parked config.
	ErrNotParked = errors.New("no closed config for this log file")
)

var loadSettings = config.Load

// Options configures the top-level controller.
type Options struct {
	// SettingsPath points to the optional settings file.
	SettingsPath string
	// Settings, when set, is used instead of loading SettingsPath.
	Settings *config.Config
	// StorePath overrides the configured monitor config file.
	StorePath string
	Logger    *zap.Logger
	// Launcher overrides the terminal launcher built from the settings.
	Launcher session.Launcher
}

// App owns the open sessions, the closed-but-kept configs and the store
// they are saved to. The CLI and the TUI both drive it.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *store.Store
	tracker  *runstate.Tracker
	launcher session.Launcher

	mu       sync.Mutex
	opened   bool
	sessions []*session.Session
	parked   store.Document
	saveErr  error

	runMu    sync.Mutex
	recorded map[string]runRecord
}

type runRecord struct {
	logPath string
	pid     int
}

// New constructs the shared controller facade.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var cfg config.Config
	if opts.Settings != nil {
		cfg = *opts.Settings
	} else {
		loaded, err := loadSettings(opts.SettingsPath, logger)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.StorePath != "" {
		cfg.StorePath = opts.StorePath
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	l := opts.Launcher
	if l == nil {
		l = launcher.NewTerminal(cfg.Terminal.Command, cfg.Terminal.Args, cfg.Terminal.Hold, logger)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store.New(cfg.StorePath, logger),
		tracker:  runstate.NewTracker(runstate.Dir(cfg.RuntimeDir)),
		launcher: l,
		recorded: make(map[string]runRecord),
	}, nil
}

// Settings returns the effective settings.
func (a *App) Settings() config.Config {
	return a.cfg
}

// Logger returns the controller logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store returns the monitor config store.
func (a *App) Store() *store.Store {
	return a.store
}

// Tracker returns the monitor run-state tracker.
func (a *App) Tracker() *runstate.Tracker {
	return a.tracker
}

// Shutdown stops polling every session. Running terminals are left open and
// stay recorded so a later `monitor stop` can reach them.
func (a *App) Shutdown() {
	for _, s := range a.Sessions() {
		if pid := s.Detach(); pid > 0 {
			a.logger.Debug("detached monitor", zap.String("log_path", s.LogPath()), zap.Int("pid", pid))
		}
	}
}
