package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"goapforge/internal/logging"
)

// Config is the parsed goapforge.yml.
type Config struct {
	Planner  PlannerConfig  `yaml:"planner"`
	Executor ExecutorConfig `yaml:"executor"`
	Log      LogConfig      `yaml:"log"`
	Trace    TraceConfig    `yaml:"trace"`
}

type PlannerConfig struct {
	MaxIterations int `yaml:"max_iterations"`
	CacheCapacity int `yaml:"cache_capacity"`
}

type ExecutorConfig struct {
	MaxReplans int `yaml:"max_replans"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TraceConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when goapforge.yml is absent.
func DefaultConfig() Config {
	return Config{
		Planner: PlannerConfig{
			MaxIterations: 1000,
			CacheCapacity: 1000,
		},
		Executor: ExecutorConfig{MaxReplans: 3},
		Log:      LogConfig{Level: "info", Format: "text"},
		Trace:    TraceConfig{Enabled: true},
	}
}

// LoadConfig reads path on top of DefaultConfig. A missing file yields the
// defaults. Unknown keys and negative limits are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.Planner.MaxIterations < 0 {
		problems = append(problems, "planner.max_iterations must be >= 0")
	}
	if c.Planner.CacheCapacity < 0 {
		problems = append(problems, "planner.cache_capacity must be >= 0")
	}
	if c.Executor.MaxReplans < 0 {
		problems = append(problems, "executor.max_replans must be >= 0")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level: "+err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// LoadConfig reads the workspace's goapforge.yml.
func (w *Workspace) LoadConfig() (Config, error) {
	return LoadConfig(w.ConfigPath)
}
