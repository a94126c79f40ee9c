// Package runstate remembers which monitor terminals were started for which
// log files, so that they can be inspected and stopped from another logmon
// process.
package runstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnvDir overrides the runtime directory.
const EnvDir = "LOGMON_RUNTIME_DIR"

// ErrNotTracked is returned when no monitor is recorded for a log path.
var ErrNotTracked = errors.New("no monitor recorded for log path")

// Dir returns the runtime directory. Order of precedence:
// 1) LOGMON_RUNTIME_DIR
// 2) configured (if non-empty)
// 3) linux: $XDG_RUNTIME_DIR/logmon or /run/user/<uid>/logmon
// 4) elsewhere: /tmp/logmon-<uid>
func Dir(configured string) string {
	if v := os.Getenv(EnvDir); v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	uid := currentUID()
	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
			return filepath.Join(v, "logmon")
		}
		return filepath.Join("/run/user", uid, "logmon")
	}
	return filepath.Join(os.TempDir(), "logmon-"+uid)
}

// Entry is one recorded monitor.
type Entry struct {
	LogPath   string    `json:"log_path"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`

	Alive   bool   `json:"-"`
	Cmdline string `json:"-"`
}

// Tracker stores one record file per log path inside a directory.
type Tracker struct {
	dir string
}

// NewTracker returns a tracker rooted at dir.
func NewTracker(dir string) *Tracker {
	return &Tracker{dir: dir}
}

// Dir returns the directory holding the records.
func (t *Tracker) Dir() string {
	return t.dir
}

var recordNamespace = uuid.MustParse("6f1d3c0e-5b7a-4e8e-9a43-2f0b1d8c7e55")

func (t *Tracker) recordPath(logPath string) string {
	name := uuid.NewSHA1(recordNamespace, []byte(logPath)).String() + ".json"
	return filepath.Join(t.dir, name)
}

// Record remembers pid as the monitor for logPath, replacing any previous record.
func (t *Tracker) Record(logPath string, pid int) error {
	if logPath == "" || pid <= 0 {
		return fmt.Errorf("invalid monitor record %q pid=%d", logPath, pid)
	}
	if err := os.MkdirAll(t.dir, 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(Entry{LogPath: logPath, PID: pid, StartedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	path := t.recordPath(logPath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Forget removes the record for logPath if it exists.
func (t *Tracker) Forget(logPath string) error {
	if err := os.Remove(t.recordPath(logPath)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ForgetPID removes the record for logPath only if it still points at pid.
func (t *Tracker) ForgetPID(logPath string, pid int) error {
	e, err := t.read(t.recordPath(logPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if e.PID != pid {
		return nil
	}
	return t.Forget(logPath)
}

// Lookup returns the record for logPath with its liveness filled in.
func (t *Tracker) Lookup(logPath string) (Entry, error) {
	e, err := t.read(t.recordPath(logPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotTracked, logPath)
		}
		return Entry{}, err
	}
	return probe(e), nil
}

// List returns every record sorted by log path.
func (t *Tracker) List() ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(t.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(files))
	for _, f := range files {
		e, err := t.read(f)
		if err != nil {
			continue
		}
		out = append(out, probe(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogPath < out[j].LogPath })
	return out, nil
}

func (t *Tracker) read(path string) (Entry, error) {
	var e Entry
	b, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return e, fmt.Errorf("parse %s: %w", path, err)
	}
	return e, nil
}

func currentUID() string {
	u, err := user.Current()
	if err == nil && u != nil && strings.TrimSpace(u.Uid) != "" {
		return u.Uid
	}
	return "0"
}
