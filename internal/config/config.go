package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// StorageConfig configures where rendered document bytes are kept.
type StorageConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// AnthropicConfig holds Anthropic API settings for the inference tier.
type AnthropicConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	Model        string `yaml:"model" mapstructure:"model"`
	MaxBatchSize int    `yaml:"max_batch_size" mapstructure:"max_batch_size"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ResolverConfig tunes the placeholder resolution chain.
type ResolverConfig struct {
	FuzzyFloor             int   `yaml:"fuzzy_floor" mapstructure:"fuzzy_floor"`
	ContainmentScore       int   `yaml:"containment_score" mapstructure:"containment_score"`
	ReverseContainScore    int   `yaml:"reverse_containment_score" mapstructure:"reverse_containment_score"`
	AutoApplyThreshold     int   `yaml:"auto_apply_threshold" mapstructure:"auto_apply_threshold"`
	SyntheticSeed          int64 `yaml:"synthetic_seed" mapstructure:"synthetic_seed"`
	InferenceEnabledByTier bool  `yaml:"inference_enabled_by_tier" mapstructure:"inference_enabled_by_tier"`
}

// RenderConfig configures document output.
type RenderConfig struct {
	DefaultEncodings []string `yaml:"default_encodings" mapstructure:"default_encodings"`
	MaxTemplateBytes int64    `yaml:"max_template_bytes" mapstructure:"max_template_bytes"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DOCGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("storage.root", "./data/documents")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_batch_size", 50)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("resolver.fuzzy_floor", 60)
	v.SetDefault("resolver.containment_score", 70)
	v.SetDefault("resolver.reverse_containment_score", 60)
	v.SetDefault("resolver.auto_apply_threshold", 70)
	v.SetDefault("resolver.inference_enabled_by_tier", true)
	v.SetDefault("render.default_encodings", []string{"docx", "pdf", "html"})
	v.SetDefault("render.max_template_bytes", int64(20<<20))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required for the given run mode. Modes map to
// top-level commands: generate and validate need the store, review also needs
// an inference key, serve needs a listenable port.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireStore := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}

	switch mode {
	case "analyze", "generate", "validate", "templates", "migrate":
		requireStore()
	case "review":
		requireStore()
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	case "serve":
		requireStore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Resolver.FuzzyFloor < 0 || c.Resolver.FuzzyFloor > 100 {
		problems = append(problems, "resolver.fuzzy_floor must be between 0 and 100")
	}
	if c.Resolver.AutoApplyThreshold < 0 || c.Resolver.AutoApplyThreshold > 100 {
		problems = append(problems, "resolver.auto_apply_threshold must be between 0 and 100")
	}
	if c.Anthropic.TimeoutSecs < 0 {
		problems = append(problems, "anthropic.timeout_secs must be >= 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
