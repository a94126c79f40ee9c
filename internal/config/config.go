package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultStorePath    = "monitor_config.json"
	defaultPollInterval = time.Second
	defaultTerminal     = "gnome-terminal"
	defaultHold         = "exec bash"

	envStore        = "LOGMON_STORE"
	envPollInterval = "LOGMON_POLL_INTERVAL"
	envTerminal     = "LOGMON_TERMINAL"
	envLogFile      = "LOGMON_LOG_FILE"
	envRuntimeDir   = "LOGMON_RUNTIME_DIR"
)

var defaultTerminalArgs = []string{"--wait", "--", "bash", "-c"}

// Terminal describes how a shell script is run in a new terminal window:
// Command Args... "<script>; Hold". Args must end with whatever makes the
// terminal run the next argument as a shell command (e.g. "-e sh -c"), so an
// empty Args is rejected. Setting Command in a file without Args drops the
// default Args too, since they belong to the default terminal.
type Terminal struct {
	Command string   `validate:"required"`
	Args    []string `validate:"min=1,dive,required"`
	Hold    string
}

// Config aggregates the tunables of logmon.
type Config struct {
	StorePath    string        `validate:"required"`
	PollInterval time.Duration `validate:"gt=0"`
	Terminal     Terminal
	LogFile      string `validate:"required"`
	RuntimeDir   string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StorePath:    defaultStorePath,
		PollInterval: defaultPollInterval,
		Terminal: Terminal{
			Command: defaultTerminal,
			Args:    append([]string(nil), defaultTerminalArgs...),
			Hold:    defaultHold,
		},
		LogFile: filepath.Join(os.TempDir(), "logmon.log"),
	}
}

// DefaultPath is the settings file used when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "logmon", "settings.yaml")
}

var (
	dotEnvFiles = []string{".env"}
	validate    = validator.New()
)

// Load builds a Config from defaults, an optional YAML (or JSON) file, a .env
// file and environment overrides, in that order. An empty path falls back to
// DefaultPath, which may be absent.
func Load(path string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		err := loadFromFile(path, &cfg)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	loadDotEnv(logger)
	applyEnvOverrides(&cfg, logger)

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(logger *zap.Logger) {
	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring env file", zap.String("path", f), zap.Error(err))
		}
	}
}

func applyEnvOverrides(cfg *Config, logger *zap.Logger) {
	if v := os.Getenv(envStore); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv(envPollInterval); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.PollInterval = dur
		} else {
			logger.Warn("ignoring invalid env value", zap.String("var", envPollInterval), zap.String("value", v))
		}
	}
	if v := os.Getenv(envTerminal); v != "" {
		if fields := strings.Fields(v); len(fields) > 0 {
			cfg.Terminal.Command = fields[0]
			cfg.Terminal.Args = fields[1:]
		} else {
			logger.Warn("ignoring blank env value", zap.String("var", envTerminal))
		}
	}
	if v := os.Getenv(envLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(envRuntimeDir); v != "" {
		cfg.RuntimeDir = v
	}
}

type fileTerminal struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Hold    *string  `yaml:"hold"`
}

type fileConfig struct {
	StorePath    string        `yaml:"store_path"`
	PollInterval string        `yaml:"poll_interval"`
	Terminal     *fileTerminal `yaml:"terminal"`
	LogFile      string        `yaml:"log_file"`
	RuntimeDir   string        `yaml:"runtime_dir"`
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.StorePath != "" {
		cfg.StorePath = raw.StorePath
	}
	if raw.PollInterval != "" {
		dur, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return fmt.Errorf("parse poll_interval: %w", err)
		}
		if dur <= 0 {
			return errors.New("poll_interval must be > 0")
		}
		cfg.PollInterval = dur
	}
	if t := raw.Terminal; t != nil {
		if t.Command != "" {
			cfg.Terminal.Command = t.Command
			cfg.Terminal.Args = t.Args
		} else if t.Args != nil {
			cfg.Terminal.Args = t.Args
		}
		if t.Hold != nil {
			cfg.Terminal.Hold = *t.Hold
		}
	}
	if raw.LogFile != "" {
		cfg.LogFile = raw.LogFile
	}
	if raw.RuntimeDir != "" {
		cfg.RuntimeDir = raw.RuntimeDir
	}
	return nil
}
