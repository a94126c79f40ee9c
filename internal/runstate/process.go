package runstate

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	psprocess "github.com/shirou/gopsutil/v3/process"
)

var (
	aliveFunc   = alive
	cmdlineFunc = cmdline
	killFunc    = syscall.Kill
)

// alive reports whether pid exists and is not a zombie.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	ok, err := psprocess.PidExists(int32(pid))
	if err != nil || !ok {
		return false
	}
	p, err := psprocess.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		return true
	}
	for _, s := range status {
		if s == psprocess.Zombie {
			return false
		}
	}
	return true
}

func cmdline(pid int) string {
	p, err := psprocess.NewProcess(int32(pid))
	if err != nil {
		return fmt.Sprintf("pid:%d", pid)
	}
	cmd, err := p.Cmdline()
	if err != nil || cmd == "" {
		return fmt.Sprintf("pid:%d", pid)
	}
	return cmd
}

func probe(e Entry) Entry {
	e.Alive = aliveFunc(e.PID)
	if e.Alive {
		e.Cmdline = cmdlineFunc(e.PID)
	}
	return e
}

// Stop sends SIGTERM to the process group of the monitor recorded for
// logPath and waits for it to go away. With force it falls back to SIGKILL.
// The record is removed once the process is gone.
func (t *Tracker) Stop(logPath string, force bool) error {
	e, err := t.Lookup(logPath)
	if err != nil {
		return err
	}
	if !e.Alive {
		return t.Forget(logPath)
	}
	if err := signalGroup(e.PID, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForExit(e.PID, termGrace) {
		return t.Forget(logPath)
	}
	if !force {
		return fmt.Errorf("monitor process %d did not exit after SIGTERM", e.PID)
	}
	if err := signalGroup(e.PID, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForExit(e.PID, killGrace) {
		return t.Forget(logPath)
	}
	return fmt.Errorf("monitor process %d did not exit after SIGKILL", e.PID)
}

// signalGroup signals the process group led by pid, falling back to the
// process itself when it does not lead a group.
func signalGroup(pid int, sig syscall.Signal) error {
	err := killFunc(-pid, sig)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.ESRCH) {
		return err
	}
	if err := killFunc(pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}

var (
	pollStep  = 100 * time.Millisecond
	termGrace = 3 * time.Second
	killGrace = 2 * time.Second
)

func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !aliveFunc(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollStep)
	}
}
