package session

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"logmon/internal/filter"
	"logmon/internal/launcher"
)

// State is the monitor lifecycle state of a session.
type State int

const (
	// Idle means no monitor process is tracked.
	Idle State = iota
	// Running means a spawned monitor is believed alive and is being polled.
	Running
	// StoppedExternally means the monitor ended on its own, typically because
	// the terminal window was closed. It allows the same actions as Idle.
	StoppedExternally
)

func (st State) String() string {
	switch st {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case StoppedExternally:
		return "stopped externally"
	default:
		return "unknown"
	}
}

// State returns the current monitor state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PID returns the monitor process id, or 0 when none is tracked.
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return 0
	}
	return s.proc.PID()
}

// Polls returns how many liveness checks have run against monitors of this session.
func (s *Session) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// StartMonitoring opens a terminal following the log file through every
// enabled filter and starts the liveness poller.
func (s *Session) StartMonitoring() error {
	s.mu.Lock()
	if s.logPath == "" {
		s.mu.Unlock()
		return ErrEmptyLogPath
	}
	if s.state == Running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.launcher == nil {
		s.mu.Unlock()
		return errors.New("no terminal launcher configured")
	}
	script, err := launcher.FollowScript(s.logPath, filter.Enabled(s.filters))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	proc, err := s.launcher.Open(script)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.gen++
	gen := s.gen
	stop := make(chan struct{})
	done := make(chan struct{})
	s.proc = proc
	s.state = Running
	s.stopPoll = stop
	s.pollDone = done
	logPath := s.logPath
	s.mu.Unlock()

	go s.pollLoop(gen, proc.Done(), stop, done)

	s.logger.Info("monitoring started", zap.String("log_path", logPath), zap.Int("pid", proc.PID()))
	s.notify(Running)
	return nil
}

// StopMonitoring terminates the monitor if it is alive and returns to Idle.
// It always succeeds; signal failures are only logged.
func (s *Session) StopMonitoring() {
	s.mu.Lock()
	proc := s.proc
	prev := s.state
	stop, done := s.releaseLocked()
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	if proc != nil {
		if err := proc.Terminate(); err != nil {
			s.logger.Debug("terminate monitor", zap.Int("pid", proc.PID()), zap.Error(err))
		}
		s.logger.Info("monitoring stopped", zap.Int("pid", proc.PID()))
	}
	if prev != Idle {
		s.notify(Idle)
	}
}

// Detach stops polling and forgets the monitor without signalling it. The
// terminal keeps running. It returns the pid that was tracked, or 0.
func (s *Session) Detach() int {
	s.mu.Lock()
	pid := 0
	if s.proc != nil {
		pid = s.proc.PID()
	}
	stop, done := s.releaseLocked()
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return pid
}

// Poll runs one liveness check now. It reports whether the monitor was found
// to have exited.
func (s *Session) Poll() bool {
	s.mu.Lock()
	gen := s.gen
	running := s.state == Running
	s.mu.Unlock()
	if !running {
		return false
	}
	s.poll(gen)
	return s.State() == StoppedExternally
}

func (s *Session) releaseLocked() (chan struct{}, chan struct{}) {
	stop, done := s.stopPoll, s.pollDone
	s.gen++
	s.proc = nil
	s.stopPoll = nil
	s.pollDone = nil
	s.state = Idle
	return stop, done
}

// pollLoop checks liveness every interval and as soon as exited closes.
func (s *Session) pollLoop(gen uint64, exited <-chan struct{}, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-exited:
			if s.poll(gen) {
				return
			}
			exited = nil
		case <-ticker.C:
			if s.poll(gen) {
				return
			}
		}
	}
}

// poll checks the monitor of generation gen and reports whether polling
// should end.
func (s *Session) poll(gen uint64) bool {
	s.mu.Lock()
	if s.gen != gen || s.proc == nil {
		s.mu.Unlock()
		return true
	}
	s.polls++
	if !s.proc.Exited() {
		s.mu.Unlock()
		return false
	}
	pid := s.proc.PID()
	s.proc = nil
	s.state = StoppedExternally
	if s.stopPoll != nil {
		close(s.stopPoll)
	}
	s.stopPoll = nil
	s.pollDone = nil
	s.mu.Unlock()

	s.logger.Info("monitor exited on its own", zap.Int("pid", pid))
	s.notify(StoppedExternally)
	return true
}

func (s *Session) notify(st State) {
	if s.onStateChange != nil {
		s.onStateChange(s, st)
	}
}
