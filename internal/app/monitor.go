package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"logmon/internal/runstate"
	"logmon/internal/session"
)

func (a *App) stateChanged(s *session.Session, st session.State) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if st == session.Running {
		rec := runRecord{logPath: s.LogPath(), pid: s.PID()}
		if rec.pid <= 0 {
			return
		}
		if err := a.tracker.Record(rec.logPath, rec.pid); err != nil {
			a.logger.Warn("record monitor", zap.String("log_path", rec.logPath), zap.Error(err))
			return
		}
		a.recorded[s.ID()] = rec
		return
	}

	rec, ok := a.recorded[s.ID()]
	if !ok {
		return
	}
	delete(a.recorded, s.ID())
	if err := a.tracker.ForgetPID(rec.logPath, rec.pid); err != nil {
		a.logger.Warn("forget monitor", zap.String("log_path", rec.logPath), zap.Error(err))
	}
}

// Monitors lists every recorded monitor terminal, including ones started by
// other logmon processes.
func (a *App) Monitors() ([]runstate.Entry, error) {
	return a.tracker.List()
}

// WaitStopped blocks until the session leaves Running or ctx ends.
func (a *App) WaitStopped(ctx context.Context, s *session.Session) (session.State, error) {
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if st := s.State(); st != session.Running {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return s.State(), ctx.Err()
		case <-ticker.C:
		}
	}
}

// StopParams selects the monitors to stop.
type StopParams struct {
	LogPaths []string
	AllowAll bool
	Force    bool
}

// StopEvent describes the outcome for one monitor.
type StopEvent struct {
	Kind  string
	Entry runstate.Entry
	Err   error
}

// StopResult aggregates StopMonitors.
type StopResult struct {
	Events     []StopEvent
	Message    string
	TotalAlive int
	Successes  int
}

// StopMonitors stops recorded monitors by log path, or all of them with
// AllowAll. Monitors owned by an open session of this process are stopped
// through the session so its state follows.
func (a *App) StopMonitors(params StopParams) (StopResult, error) {
	var result StopResult
	if len(params.LogPaths) == 0 && !params.AllowAll {
		return result, errors.New("provide at least one log file or pass --all")
	}

	entries, err := a.selectMonitors(params)
	if err != nil {
		return result, err
	}

	for _, e := range entries {
		if !e.Alive {
			_ = a.tracker.Forget(e.LogPath)
			result.Events = append(result.Events, StopEvent{Kind: "stale", Entry: e})
			continue
		}
		result.TotalAlive++
		if s, ok := a.FindByPath(e.LogPath); ok && s.PID() == e.PID {
			s.StopMonitoring()
			result.Events = append(result.Events, StopEvent{Kind: "success", Entry: e})
			result.Successes++
			continue
		}
		if err := a.tracker.Stop(e.LogPath, params.Force); err != nil {
			result.Events = append(result.Events, StopEvent{Kind: "failure", Entry: e, Err: err})
			continue
		}
		result.Events = append(result.Events, StopEvent{Kind: "success", Entry: e})
		result.Successes++
	}

	switch {
	case result.TotalAlive == 0:
		if result.Message == "" {
			result.Message = "No running monitors match"
		}
		return result, nil
	case result.Successes == result.TotalAlive:
		return result, nil
	case result.Successes == 0:
		return result, errors.New("no monitors were stopped (see output above)")
	default:
		return result, fmt.Errorf("partially successful: stopped %d/%d monitors", result.Successes, result.TotalAlive)
	}
}

func (a *App) selectMonitors(params StopParams) ([]runstate.Entry, error) {
	if params.AllowAll {
		return a.tracker.List()
	}
	out := make([]runstate.Entry, 0, len(params.LogPaths))
	for _, p := range params.LogPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.New("log file must not be empty")
		}
		e, err := a.tracker.Lookup(p)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
