package app

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"logmon/internal/config"
	"logmon/internal/launcher"
)

type fakeProc struct {
	pid        int
	exited     atomic.Bool
	terminated atomic.Int64
	done       chan struct{}
	once       sync.Once
}

func (p *fakeProc) PID() int              { return p.pid }
func (p *fakeProc) Exited() bool          { return p.exited.Load() }
func (p *fakeProc) Done() <-chan struct{} { return p.done }

func (p *fakeProc) Terminate() error {
	p.terminated.Add(1)
	p.exit()
	return nil
}

func (p *fakeProc) exit() {
	p.once.Do(func() {
		p.exited.Store(true)
		close(p.done)
	})
}

type fakeLauncher struct {
	mu      sync.Mutex
	scripts []string
	procs   []*fakeProc
}

func (l *fakeLauncher) Open(script string) (launcher.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scripts = append(l.scripts, script)
	// Real pids would make the tracker probe unrelated processes.
	p := &fakeProc{pid: 1<<22 + len(l.procs), done: make(chan struct{})}
	l.procs = append(l.procs, p)
	return p, nil
}

func (l *fakeLauncher) last() *fakeProc {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.procs) == 0 {
		return nil
	}
	return l.procs[len(l.procs)-1]
}

func newTestApp(t *testing.T, storeContent string) (*App, *fakeLauncher, string) {
	t.Helper()
	dir := t.TempDir()
	storePath := filepath.Join(dir, "monitor_config.json")
	if storeContent != "" {
		if err := os.WriteFile(storePath, []byte(storeContent), 0o644); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	t.Setenv("LOGMON_RUNTIME_DIR", filepath.Join(dir, "run"))

	cfg := config.Default()
	cfg.StorePath = storePath
	cfg.PollInterval = 5 * time.Millisecond
	l := &fakeLauncher{}
	a, err := New(Options{Settings: &cfg, Launcher: l})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Shutdown)
	if err := a.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return a, l, storePath
}

func readStore(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	return string(data)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
