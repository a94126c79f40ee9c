package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logmon/internal/filter"
	"logmon/internal/session"
	"logmon/internal/store"
)

// Open loads the config store once and opens one session per saved log file.
// Later calls are no-ops.
func (a *App) Open() error {
	a.mu.Lock()
	if a.opened {
		a.mu.Unlock()
		return nil
	}
	a.opened = true
	a.mu.Unlock()

	doc, err := a.store.Load()
	if backup := a.store.Recovered(); backup != "" {
		a.logger.Warn("monitor config was unreadable and has been reset", zap.String("backup", backup))
	}
	if err != nil {
		return err
	}

	opened := make([]*session.Session, 0, doc.Len())
	for _, e := range doc.Entries() {
		opened = append(opened, a.newSession(e.LogPath, e.Filters))
	}
	a.mu.Lock()
	a.sessions = append(opened, a.sessions...)
	a.mu.Unlock()
	return nil
}

func (a *App) newSession(logPath string, filters []filter.Filter) *session.Session {
	return session.New(session.Options{
		ID:            uuid.NewString(),
		LogPath:       logPath,
		Filters:       filters,
		Launcher:      a.launcher,
		PollInterval:  a.cfg.PollInterval,
		Logger:        a.logger,
		OnChange:      a.sessionChanged,
		OnStateChange: a.stateChanged,
	})
}

// Sessions returns the open sessions in tab order.
func (a *App) Sessions() []*session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*session.Session(nil), a.sessions...)
}

// Session returns the open session with the given id.
func (a *App) Session(id string) (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.indexLocked(id); i >= 0 {
		return a.sessions[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// FindByPath returns the open session following logPath.
func (a *App) FindByPath(logPath string) (*session.Session, bool) {
	logPath = strings.TrimSpace(logPath)
	if logPath == "" {
		return nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.sessions {
		if s.LogPath() == logPath {
			return s, true
		}
	}
	return nil, false
}

func (a *App) indexLocked(id string) int {
	for i, s := range a.sessions {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

// AddSession opens a new session. A path with a closed-but-kept config is
// reopened with that config. The store is saved when the path is not empty.
func (a *App) AddSession(logPath string, filters ...string) (*session.Session, error) {
	logPath = strings.TrimSpace(logPath)
	if _, ok := a.FindByPath(logPath); ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, logPath)
	}

	var initial []filter.Filter
	a.mu.Lock()
	if logPath != "" {
		if parked, ok := a.parked.Get(logPath); ok {
			initial = parked
			a.parked.Delete(logPath)
		}
	}
	added := make([]filter.Filter, 0, len(filters))
	for _, f := range filters {
		added = append(added, filter.Filter{Text: f, Enabled: true})
	}
	for _, f := range filter.Normalize(added) {
		if !filter.Contains(initial, f.Text) {
			initial = append(initial, f)
		}
	}
	s := a.newSession(logPath, initial)
	a.sessions = append(a.sessions, s)
	a.mu.Unlock()

	if logPath == "" {
		return s, nil
	}
	return s, a.SaveAll()
}

// SetLogPath points an open session at another log file, refusing paths
// already used by a different open session.
func (a *App) SetLogPath(id, logPath string) error {
	s, err := a.Session(id)
	if err != nil {
		return err
	}
	if other, ok := a.FindByPath(logPath); ok && other.ID() != id {
		return fmt.Errorf("%w: %s", ErrSessionExists, strings.TrimSpace(logPath))
	}
	a.mu.Lock()
	a.parked.Delete(strings.TrimSpace(logPath))
	a.mu.Unlock()
	s.SetLogPath(logPath)
	return nil
}

// CloseSession closes a tab but keeps its config: polling stops, the
// terminal keeps running and the filters stay in every later save.
func (a *App) CloseSession(id string) error {
	a.mu.Lock()
	i := a.indexLocked(id)
	if i < 0 {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s := a.sessions[i]
	a.sessions = append(a.sessions[:i], a.sessions[i+1:]...)
	a.mu.Unlock()

	s.Detach()
	if path := s.LogPath(); path != "" {
		a.mu.Lock()
		a.parked.Set(path, s.Filters())
		a.mu.Unlock()
	}
	a.logger.Info("session closed", zap.String("log_path", s.LogPath()))
	return nil
}

// ParkedPaths lists closed configs that can be reopened.
func (a *App) ParkedPaths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.parked.Paths()
}

// ReopenSession opens a session for a closed config.
func (a *App) ReopenSession(logPath string) (*session.Session, error) {
	logPath = strings.TrimSpace(logPath)
	a.mu.Lock()
	filters, ok := a.parked.Get(logPath)
	if !ok {
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotParked, logPath)
	}
	a.parked.Delete(logPath)
	s := a.newSession(logPath, filters)
	a.sessions = append(a.sessions, s)
	a.mu.Unlock()
	return s, nil
}

// DeleteSession stops the session's monitor, closes it and removes its
// config from the store.
func (a *App) DeleteSession(id string) error {
	a.mu.Lock()
	i := a.indexLocked(id)
	if i < 0 {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s := a.sessions[i]
	a.sessions = append(a.sessions[:i], a.sessions[i+1:]...)
	a.mu.Unlock()

	s.StopMonitoring()
	path := s.LogPath()
	a.mu.Lock()
	a.parked.Delete(path)
	a.mu.Unlock()
	a.logger.Info("session deleted", zap.String("log_path", path))
	return a.SaveAll()
}

// SaveAll rebuilds the document from the open sessions, in tab order,
// followed by the closed configs, and writes it.
func (a *App) SaveAll() error {
	a.mu.Lock()
	var doc store.Document
	for _, s := range a.sessions {
		if path := s.LogPath(); path != "" {
			doc.Set(path, s.Filters())
		}
	}
	for _, e := range a.parked.Entries() {
		if _, open := doc.Get(e.LogPath); !open {
			doc.Set(e.LogPath, e.Filters)
		}
	}
	a.mu.Unlock()

	err := a.store.Save(doc)
	a.mu.Lock()
	a.saveErr = err
	a.mu.Unlock()
	return err
}

// LastSaveError returns the error of the most recent save, if any.
func (a *App) LastSaveError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveErr
}

func (a *App) sessionChanged(s *session.Session) {
	if err := a.SaveAll(); err != nil {
		a.logger.Error("save monitor config", zap.String("log_path", s.LogPath()), zap.Error(err))
	}
}

// Transient returns a session for logPath that is not part of the open set
// and is never saved. A saved config for the path provides its filters.
func (a *App) Transient(logPath string) *session.Session {
	logPath = strings.TrimSpace(logPath)
	var filters []filter.Filter
	if s, ok := a.FindByPath(logPath); ok {
		filters = s.Filters()
	}
	return session.New(session.Options{
		ID:            uuid.NewString(),
		LogPath:       logPath,
		Filters:       filters,
		Launcher:      a.launcher,
		PollInterval:  a.cfg.PollInterval,
		Logger:        a.logger,
		OnStateChange: a.stateChanged,
	})
}
