// Package config resolves CLI settings from defaults, an optional YAML file,
// an optional .env file and FORMFLOW_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submission/sqlstore"
)

// Environment variable names.
const (
	EnvLogLevel     = "FORMFLOW_LOG_LEVEL"
	EnvLogFormat    = "FORMFLOW_LOG_FORMAT"
	EnvStateDir     = "FORMFLOW_STATE_DIR"
	EnvStoreDriver  = "FORMFLOW_STORE_DRIVER"
	EnvStoreDSN     = "FORMFLOW_STORE_DSN"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvFadeOut      = "FORMFLOW_FADE_OUT"
	EnvFadeIn       = "FORMFLOW_FADE_IN"
	EnvAutoAdvance  = "FORMFLOW_AUTO_ADVANCE"
	EnvAutoNavigate = "FORMFLOW_AUTO_NAVIGATE"
	EnvSubmitDelay  = "FORMFLOW_SUBMIT_DELAY"
)

// DefaultStateDir holds the sqlite database when no DSN is configured.
const DefaultStateDir = ".formflow"

// DefaultDBFileName is the sqlite file created inside the state directory.
const DefaultDBFileName = "submissions.db"

// ErrInvalid wraps every validation failure reported by Load.
var ErrInvalid = errors.New("config: invalid")

// Log configures the CLI logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Store configures the submission store.
type Store struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	StateDir string `yaml:"state_dir"`
}

// Config is the resolved CLI configuration.
type Config struct {
	Log    Log            `yaml:"log"`
	Store  Store          `yaml:"store"`
	Timing session.Timing `yaml:"timing"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    Log{Level: "info", Format: logging.FormatText},
		Store:  Store{StateDir: DefaultStateDir},
		Timing: session.DefaultTiming(),
	}
}

// Sources names the optional inputs Load reads. Getenv defaults to
// os.LookupEnv.
type Sources struct {
	File    string
	EnvFile string
	Getenv  func(string) (string, bool)
}

// Load resolves the configuration. A missing File is an error; a missing
// EnvFile is ignored.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if src.File != "" {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", src.File, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", src.File, err)
		}
	}

	dotenv := map[string]string{}
	if src.EnvFile != "" {
		values, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			dotenv = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", src.EnvFile, err)
		}
	}

	getenv := src.Getenv
	if getenv == nil {
		getenv = os.LookupEnv
	}
	lookup := func(key string) (string, bool) {
		if v, ok := getenv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvLogLevel, &c.Log.Level},
		{EnvLogFormat, &c.Log.Format},
		{EnvStateDir, &c.Store.StateDir},
		{EnvStoreDriver, &c.Store.Driver},
		{EnvDatabaseURL, &c.Store.DSN},
		{EnvStoreDSN, &c.Store.DSN},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvFadeOut, &c.Timing.FadeOut},
		{EnvFadeIn, &c.Timing.FadeIn},
		{EnvAutoAdvance, &c.Timing.AutoAdvance},
		{EnvAutoNavigate, &c.Timing.AutoNavigate},
		{EnvSubmitDelay, &c.Timing.Submit},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate reports settings no component can use.
func (c Config) Validate() error {
	var problems []string
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log format %q", c.Log.Format))
	}
	switch c.Store.Driver {
	case "", sqlstore.DriverSQLite, sqlstore.DriverPostgres:
	default:
		problems = append(problems, fmt.Sprintf("store driver %q", c.Store.Driver))
	}
	t := c.Timing
	timings := []struct {
		name string
		d    time.Duration
	}{
		{"fade_out", t.FadeOut},
		{"fade_in", t.FadeIn},
		{"auto_advance", t.AutoAdvance},
		{"auto_navigate", t.AutoNavigate},
		{"submit", t.Submit},
	}
	for _, timing := range timings {
		if timing.d < 0 {
			problems = append(problems, fmt.Sprintf("timing %s is negative", timing.name))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, ", "))
}

// StoreDSN returns the configured DSN, or a sqlite file in the state
// directory.
func (c Config) StoreDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	dir := c.Store.StateDir
	if dir == "" {
		dir = DefaultStateDir
	}
	return filepath.Join(dir, DefaultDBFileName)
}

// StoreOptions builds the sqlstore options for the configuration.
func (c Config) StoreOptions() []sqlstore.Option {
	opts := []sqlstore.Option{sqlstore.WithDSN(c.StoreDSN())}
	if c.Store.Driver != "" {
		opts = append(opts, sqlstore.WithDriver(c.Store.Driver))
	}
	return opts
}
