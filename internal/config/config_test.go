package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{envStore, envPollInterval, envTerminal, envLogFile, envRuntimeDir} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	orig := dotEnvFiles
	dotEnvFiles = nil
	t.Cleanup(func() { dotEnvFiles = orig })
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "monitor_config.json", cfg.StorePath)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, "gnome-terminal", cfg.Terminal.Command)
	assert.Equal(t, []string{"--wait", "--", "bash", "-c"}, cfg.Terminal.Args)
	assert.Equal(t, "exec bash", cfg.Terminal.Hold)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoadYAMLFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "settings.yaml", `
store_path: /data/monitor.json
poll_interval: 250ms
terminal:
  command: xterm
  args: ["-e", "sh", "-c"]
  hold: ""
runtime_dir: /run/logmon
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/data/monitor.json", cfg.StorePath)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "xterm", cfg.Terminal.Command)
	assert.Equal(t, []string{"-e", "sh", "-c"}, cfg.Terminal.Args)
	assert.Equal(t, "", cfg.Terminal.Hold)
	assert.Equal(t, "/run/logmon", cfg.RuntimeDir)
}

func TestLoadJSONFileStillWorks(t *testing.T) {
	isolate(t)
	path := writeFile(t, "settings.json", `{"poll_interval": "2s", "log_file": "/tmp/x.log"}`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "/tmp/x.log", cfg.LogFile)
	assert.Equal(t, "gnome-terminal", cfg.Terminal.Command)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	isolate(t)
	_, err := Load(writeFile(t, "s.yaml", "poll_interval: soon\n"), nil)
	require.Error(t, err)

	_, err = Load(writeFile(t, "s.yaml", "poll_interval: -1s\n"), nil)
	require.Error(t, err)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(envStore, "/env/store.json")
	t.Setenv(envPollInterval, "3s")
	t.Setenv(envTerminal, "konsole --hold -e sh -c")
	t.Setenv(envLogFile, "/env/logmon.log")
	t.Setenv(envRuntimeDir, "/env/run")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/env/store.json", cfg.StorePath)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, "konsole", cfg.Terminal.Command)
	assert.Equal(t, []string{"--hold", "-e", "sh", "-c"}, cfg.Terminal.Args)
	assert.Equal(t, "/env/logmon.log", cfg.LogFile)
	assert.Equal(t, "/env/run", cfg.RuntimeDir)
}

func TestBlankEnvTerminalIgnored(t *testing.T) {
	isolate(t)
	path := writeFile(t, "s.json", "{}")
	t.Setenv(envTerminal, "   ")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "gnome-terminal", cfg.Terminal.Command)
	assert.Equal(t, []string{"--wait", "--", "bash", "-c"}, cfg.Terminal.Args)
}

func TestInvalidEnvDurationIgnored(t *testing.T) {
	isolate(t)
	t.Setenv(envPollInterval, "nope")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestDotEnvFile(t *testing.T) {
	isolate(t)
	// godotenv never overrides variables that are already set, even empty ones.
	require.NoError(t, os.Unsetenv(envStore))
	dotEnvFiles = []string{writeFile(t, ".env", "LOGMON_STORE=/dotenv/store.json\n")}

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/dotenv/store.json", cfg.StorePath)
}

func TestValidationFailsOnEmptyTerminal(t *testing.T) {
	isolate(t)
	path := writeFile(t, "s.yaml", "terminal:\n  args: [\"\"]\n")
	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestValidationFailsOnCommandWithoutArgs(t *testing.T) {
	isolate(t)
	path := writeFile(t, "s.yaml", "terminal:\n  command: xterm\n")
	_, err := Load(path, nil)
	require.Error(t, err)

	isolate(t)
	t.Setenv(envTerminal, "xterm")
	_, err = Load("", nil)
	require.Error(t, err)
}
