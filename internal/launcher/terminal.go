package launcher

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"go.uber.org/zap"
)

// ErrTerminalUnavailable is returned when the terminal emulator cannot be found.
var ErrTerminalUnavailable = errors.New("terminal launcher not found")

// Process is a handle to a spawned terminal.
type Process interface {
	PID() int
	// Exited reports whether the process has ended. It never blocks.
	Exited() bool
	// Done is closed once the process has ended.
	Done() <-chan struct{}
	// Terminate asks the process group to stop.
	Terminate() error
}

// Terminal spawns scripts inside an external terminal emulator. The script is
// appended as the last argument after Args, followed by Hold when set so the
// window stays open after the pipeline ends.
type Terminal struct {
	Command string
	Args    []string
	Hold    string

	logger *zap.Logger
}

// NewTerminal returns a Terminal using logger for spawn diagnostics.
func NewTerminal(command string, args []string, hold string, logger *zap.Logger) *Terminal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminal{
		Command: command,
		Args:    append([]string(nil), args...),
		Hold:    hold,
		logger:  logger,
	}
}

var lookPath = exec.LookPath

// Argv returns the full argument vector used to run script.
func (t *Terminal) Argv(script string) []string {
	if t.Hold != "" {
		script = script + "; " + t.Hold
	}
	argv := make([]string, 0, len(t.Args)+2)
	argv = append(argv, t.Command)
	argv = append(argv, t.Args...)
	return append(argv, script)
}

// Open starts the terminal without waiting for it.
func (t *Terminal) Open(script string) (Process, error) {
	bin, err := lookPath(t.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTerminalUnavailable, t.Command, err)
	}
	argv := t.Argv(script)
	cmd := exec.Command(bin, argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTerminalUnavailable, t.Command)
		}
		return nil, fmt.Errorf("start %s: %w", t.Command, err)
	}
	t.logger.Debug("terminal started", zap.Int("pid", cmd.Process.Pid), zap.Strings("argv", argv))
	return watch(cmd), nil
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// watch reaps cmd in the background so Exited can be answered without
// blocking and the child never lingers as a zombie.
func watch(cmd *exec.Cmd) *process {
	p := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p
}

func (p *process) PID() int {
	return p.cmd.Process.Pid
}

func (p *process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

func (p *process) Terminate() error {
	if p.Exited() {
		return nil
	}
	pid := p.cmd.Process.Pid
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return p.cmd.Process.Signal(syscall.SIGTERM)
	}
	return nil
}
