package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig selects the real engine and its fallback.
type EngineConfig struct {
	Provider       string        `yaml:"provider"        env:"FLIEY_ENGINE"          env-default:"ollama"`
	Fallback       bool          `yaml:"fallback"        env:"FLIEY_FALLBACK"        env-default:"true"`
	OllamaHost     string        `yaml:"ollama_host"     env:"OLLAMA_HOST"           env-default:"http://localhost:11434"`
	OllamaModel    string        `yaml:"ollama_model"    env:"OLLAMA_MODEL"          env-default:"ministral-3:latest"`
	OpenAIBaseURL  string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"       env-default:"https://api.openai.com/v1"`
	OpenAIModel    string        `yaml:"openai_model"    env:"OPENAI_MODEL"          env-default:"gpt-4o-mini"`
	OpenAIKey      string        `yaml:"-"               env:"OPENAI_API_KEY"`
	Timeout        time.Duration `yaml:"timeout"         env:"FLIEY_ENGINE_TIMEOUT"  env-default:"120s"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"   env:"FLIEY_PROBE_TIMEOUT"   env-default:"2s"`
	SimulatedDelay time.Duration `yaml:"simulated_delay" env:"FLIEY_SIMULATED_DELAY" env-default:"500ms"`
	MaxInputChars  int           `yaml:"max_input_chars" env:"FLIEY_MAX_INPUT_CHARS" env-default:"12000"`
}

// BridgeConfig selects where shared results are handed over.
type BridgeConfig struct {
	Backend   string `yaml:"backend"   env:"FLIEY_BRIDGE_BACKEND"   env-default:"file"`
	Namespace string `yaml:"namespace" env:"FLIEY_BRIDGE_NAMESPACE" env-default:"group.fliey.shared"`
	Dir       string `yaml:"dir"       env:"FLIEY_BRIDGE_DIR"`
	DBPath    string `yaml:"db_path"   env:"FLIEY_BRIDGE_DB"`
	RedisAddr string `yaml:"redis_addr" env:"FLIEY_REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB   int    `yaml:"redis_db"   env:"FLIEY_REDIS_DB"   env-default:"0"`
}

// HistoryConfig holds history persistence and retention settings.
type HistoryConfig struct {
	Backend       string        `yaml:"backend"        env:"FLIEY_HISTORY_BACKEND" env-default:"sqlite"`
	Path          string        `yaml:"path"           env:"FLIEY_HISTORY_PATH"`
	RetentionDays int           `yaml:"retention_days" env:"FLIEY_RETENTION_DAYS"  env-default:"7"`
	DedupWindow   time.Duration `yaml:"dedup_window"   env:"FLIEY_DEDUP_WINDOW"    env-default:"30m"`
	PreviewLength int           `yaml:"preview_length" env:"FLIEY_PREVIEW_LENGTH"  env-default:"100"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"FLIEY_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"FLIEY_LOG_FORMAT" env-default:"text"`
}

const defaultConfigFile = "./fliey.yaml"

// LoadConfig reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file path is the argument, then
// FLIEY_CONFIG, then ./fliey.yaml; only the last may be missing.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("FLIEY_CONFIG")
	}
	explicitPath := path != ""
	if !explicitPath {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.applyDataPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns the configuration built from defaults and the
// environment only.
func DefaultConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.applyDataPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDataPaths() error {
	if c.Bridge.Dir != "" && c.Bridge.DBPath != "" && c.History.Path != "" {
		return nil
	}
	paths, err := DetectDataPaths()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Bridge.Dir == "" {
		c.Bridge.Dir = paths.SharedDir
	}
	if c.Bridge.DBPath == "" {
		c.Bridge.DBPath = filepath.Join(paths.SharedDir, "bridge.db")
	}
	if c.History.Path == "" {
		if c.History.Backend == "yaml" {
			c.History.Path = paths.HistoryYAMLPath()
		} else {
			c.History.Path = paths.HistoryDBPath()
		}
	}
	return nil
}

var (
	engineProviders = []string{"ollama", "openai", "simulated"}
	bridgeBackends  = []string{"file", "sqlite", "redis"}
	historyBackends = []string{"sqlite", "yaml"}
	logFormats      = []string{"text", "json"}
)

// Validate checks enums and ranges and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(engineProviders, strings.ToLower(c.Engine.Provider)) {
		errs = append(errs, fmt.Errorf("engine.provider must be one of %s, got %q", strings.Join(engineProviders, ", "), c.Engine.Provider))
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, errors.New("engine.timeout must be positive"))
	}
	if c.Engine.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("engine.probe_timeout must be positive"))
	}
	if c.Engine.SimulatedDelay < 0 {
		errs = append(errs, errors.New("engine.simulated_delay must not be negative"))
	}
	if c.Engine.MaxInputChars <= 0 {
		errs = append(errs, errors.New("engine.max_input_chars must be positive"))
	}

	if !slices.Contains(bridgeBackends, strings.ToLower(c.Bridge.Backend)) {
		errs = append(errs, fmt.Errorf("bridge.backend must be one of %s, got %q", strings.Join(bridgeBackends, ", "), c.Bridge.Backend))
	}
	if strings.TrimSpace(c.Bridge.Namespace) == "" {
		errs = append(errs, errors.New("bridge.namespace is required"))
	}

	if !slices.Contains(historyBackends, strings.ToLower(c.History.Backend)) {
		errs = append(errs, fmt.Errorf("history.backend must be one of %s, got %q", strings.Join(historyBackends, ", "), c.History.Backend))
	}
	if c.History.RetentionDays < 0 {
		errs = append(errs, errors.New("history.retention_days must not be negative"))
	}
	if c.History.DedupWindow < 0 {
		errs = append(errs, errors.New("history.dedup_window must not be negative"))
	}
	if c.History.PreviewLength <= 0 {
		errs = append(errs, errors.New("history.preview_length must be positive"))
	}

	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format must be one of %s, got %q", strings.Join(logFormats, ", "), c.Log.Format))
	}

	return errors.Join(errs...)
}
