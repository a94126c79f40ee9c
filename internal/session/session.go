package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"logmon/internal/filter"
	"logmon/internal/launcher"
)

var (
	// ErrEmptyLogPath is returned by operations that need a log file.
	ErrEmptyLogPath = errors.New("please provide a log file")
	// ErrFilterIndex is returned for filter indexes outside the list.
	ErrFilterIndex = errors.New("filter index out of range")
	// ErrAlreadyRunning is returned when a monitor is already live.
	ErrAlreadyRunning = errors.New("monitoring is already running")
)

const defaultPollInterval = time.Second

// Launcher opens a shell script in an external terminal.
type Launcher interface {
	Open(script string) (launcher.Process, error)
}

// Options configures a Session.
type Options struct {
	ID      string
	Title   string
	LogPath string
	Filters []filter.Filter

	Launcher     Launcher
	PollInterval time.Duration
	Logger       *zap.Logger

	// OnChange runs after every mutation of a persisted field.
	OnChange func(*Session)
	// OnStateChange runs after every monitor state transition.
	OnStateChange func(*Session, State)
}

// Session tracks one log source: its filters and at most one live monitor.
type Session struct {
	mu sync.Mutex

	id      string
	title   string
	logPath string
	filters []filter.Filter

	state    State
	proc     launcher.Process
	gen      uint64
	stopPoll chan struct{}
	pollDone chan struct{}
	polls    int

	launcher      Launcher
	interval      time.Duration
	logger        *zap.Logger
	onChange      func(*Session)
	onStateChange func(*Session, State)
}

// New builds an idle session. Filters are trimmed and empty ones dropped.
func New(opts Options) *Session {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:            opts.ID,
		title:         strings.TrimSpace(opts.Title),
		logPath:       strings.TrimSpace(opts.LogPath),
		filters:       filter.Trim(opts.Filters),
		launcher:      opts.Launcher,
		interval:      interval,
		logger:        logger.With(zap.String("session", opts.ID)),
		onChange:      opts.OnChange,
		onStateChange: opts.OnStateChange,
	}
}

// ID returns the session handle.
func (s *Session) ID() string {
	return s.id
}

// Title returns the display label: the custom title if set, otherwise the
// base name of the log path, or "New Log".
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.title != "" {
		return s.title
	}
	if s.logPath != "" {
		return filepath.Base(s.logPath)
	}
	return "New Log"
}

// SetTitle changes the display label. Titles are not persisted.
func (s *Session) SetTitle(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
}

// LogPath returns the configured log file.
func (s *Session) LogPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logPath
}

// SetLogPath replaces the log file path.
func (s *Session) SetLogPath(path string) {
	path = strings.TrimSpace(path)
	s.mu.Lock()
	if path == s.logPath {
		s.mu.Unlock()
		return
	}
	s.logPath = path
	s.mu.Unlock()
	s.changed()
}

// Filters returns a copy of the filter list.
func (s *Session) Filters() []filter.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Clone(s.filters)
}

// SelectedFilters returns the enabled filter texts in list order.
func (s *Session) SelectedFilters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Enabled(s.filters)
}

// AddFilter appends an enabled filter. Empty and duplicate texts are ignored;
// the return value reports whether the list changed.
func (s *Session) AddFilter(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	s.mu.Lock()
	if filter.Contains(s.filters, text) {
		s.mu.Unlock()
		return false
	}
	s.filters = append(s.filters, filter.Filter{Text: text, Enabled: true})
	s.mu.Unlock()
	s.changed()
	return true
}

// EditFilter replaces the text at index keeping its enabled flag. An empty
// text is ignored. Duplicates are not checked.
func (s *Session) EditFilter(index int, text string) (bool, error) {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	if index < 0 || index >= len(s.filters) {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %d", ErrFilterIndex, index)
	}
	if text == "" || s.filters[index].Text == text {
		s.mu.Unlock()
		return false, nil
	}
	s.filters[index].Text = text
	s.mu.Unlock()
	s.changed()
	return true, nil
}

// RemoveFilter deletes the filter at index.
func (s *Session) RemoveFilter(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.filters) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrFilterIndex, index)
	}
	s.filters = append(s.filters[:index], s.filters[index+1:]...)
	s.mu.Unlock()
	s.changed()
	return nil
}

// ToggleFilter sets the enabled flag at index.
func (s *Session) ToggleFilter(index int, enabled bool) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.filters) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrFilterIndex, index)
	}
	if s.filters[index].Enabled == enabled {
		s.mu.Unlock()
		return nil
	}
	s.filters[index].Enabled = enabled
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s)
	}
}
