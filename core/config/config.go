package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/leofalp/pagelens/core/retry"
	"github.com/leofalp/pagelens/core/server"
	"github.com/leofalp/pagelens/providers/extract"
	"github.com/leofalp/pagelens/providers/fetch"
	"github.com/leofalp/pagelens/providers/observability/slogobs"
	"github.com/leofalp/pagelens/providers/ollama"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. PAGELENS_INFERENCE_MODEL
// for inference.model.
const EnvPrefix = "PAGELENS"

// Config holds the pagelens settings.
type Config struct {
	Inference InferenceConfig `mapstructure:"inference"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
}

// InferenceConfig configures the Ollama client.
type InferenceConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	Model      string        `mapstructure:"model"`
	MaxRetries int           `mapstructure:"max_retries"` // total attempts
	Timeout    time.Duration `mapstructure:"timeout"`     // per attempt
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"` // total attempts
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	VerifyTLS      bool          `mapstructure:"verify_tls"`
	UserAgent      string        `mapstructure:"user_agent"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// ExtractConfig selects the extraction mode.
type ExtractConfig struct {
	Mode string `mapstructure:"mode"`
}

// PromptConfig holds the prompt templates; see pipeline.PromptTemplate.
type PromptConfig struct {
	Focused string `mapstructure:"focused"`
	General string `mapstructure:"general"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	Addr      string `mapstructure:"addr"`
}

// Options controls where Load reads from.
type Options struct {
	// ConfigFile is an optional YAML, TOML or JSON file.
	ConfigFile string
	// EnvFile is a dotenv file. When empty, ".env" is loaded if present.
	EnvFile string
	// Flags maps config keys to command-line flags. A flag only overrides
	// the other sources when it was set explicitly.
	Flags map[string]*pflag.Flag
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("inference.endpoint", ollama.DefaultEndpoint)
	v.SetDefault("inference.model", ollama.DefaultModel)
	v.SetDefault("inference.max_retries", ollama.DefaultMaxAttempts)
	v.SetDefault("inference.timeout", ollama.DefaultTimeout)

	v.SetDefault("fetch.timeout", fetch.DefaultTimeout)
	v.SetDefault("fetch.max_retries", retry.DefaultMaxAttempts)
	v.SetDefault("fetch.initial_backoff", retry.DefaultInitialBackoff)
	v.SetDefault("fetch.max_backoff", retry.DefaultMaxBackoff)
	v.SetDefault("fetch.verify_tls", false)
	v.SetDefault("fetch.user_agent", fetch.DefaultUserAgent)
	v.SetDefault("fetch.max_body_bytes", fetch.MaxBodySize)

	v.SetDefault("extract.mode", string(extract.ModeTags))

	v.SetDefault("prompt.focused", pipeline.DefaultFocusedTemplate)
	v.SetDefault("prompt.general", pipeline.DefaultGeneralTemplate)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(slogobs.FormatText))

	v.SetDefault("server.transport", string(server.TransportStdio))
	v.SetDefault("server.addr", server.DefaultAddr)
}

// Default returns the built-in configuration, ignoring every external source.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

// Load resolves the configuration. Sources, lowest precedence first:
// defaults, ConfigFile, the dotenv file, the environment, explicitly set
// flags. Variables already present in the environment win over the dotenv
// file. EnvFile "-" skips dotenv loading.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	for key, flag := range opts.Flags {
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	switch path {
	case "-":
		return nil
	case "":
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	default:
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if err := validateEndpoint(c.Inference.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("inference.endpoint: %w", err))
	}
	if c.Inference.Model == "" {
		errs = append(errs, errors.New("inference.model: must not be empty"))
	}
	if c.Inference.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("inference.max_retries: must be positive, got %d", c.Inference.MaxRetries))
	}
	if c.Inference.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("inference.timeout: must be positive, got %s", c.Inference.Timeout))
	}

	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout: must be positive, got %s", c.Fetch.Timeout))
	}
	if c.Fetch.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries: must be positive, got %d", c.Fetch.MaxRetries))
	}
	if c.Fetch.InitialBackoff <= 0 {
		errs = append(errs, fmt.Errorf("fetch.initial_backoff: must be positive, got %s", c.Fetch.InitialBackoff))
	}
	if c.Fetch.MaxBackoff < c.Fetch.InitialBackoff {
		errs = append(errs, fmt.Errorf("fetch.max_backoff: must be at least fetch.initial_backoff, got %s", c.Fetch.MaxBackoff))
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_body_bytes: must be positive, got %d", c.Fetch.MaxBodyBytes))
	}

	if _, err := extract.ParseMode(c.Extract.Mode); err != nil {
		errs = append(errs, fmt.Errorf("extract.mode: %w", err))
	}
	if _, err := slogobs.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := slogobs.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	if _, err := server.ParseTransport(c.Server.Transport); err != nil {
		errs = append(errs, fmt.Errorf("server.transport: %w", err))
	}

	return errors.Join(errs...)
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", endpoint)
	}
	return nil
}

// ToFetch returns the fetcher configuration.
func (c *Config) ToFetch() fetch.Config {
	return fetch.Config{
		Timeout:     c.Fetch.Timeout,
		VerifyTLS:   c.Fetch.VerifyTLS,
		UserAgent:   c.Fetch.UserAgent,
		MaxBodySize: c.Fetch.MaxBodyBytes,
		Retry: retry.Policy{
			MaxAttempts:    c.Fetch.MaxRetries,
			InitialBackoff: c.Fetch.InitialBackoff,
			MaxBackoff:     c.Fetch.MaxBackoff,
		}.Normalize(),
	}
}

// ToOllama returns the inference client configuration.
func (c *Config) ToOllama() ollama.Config {
	return ollama.Config{
		Endpoint:    c.Inference.Endpoint,
		Model:       c.Inference.Model,
		MaxAttempts: c.Inference.MaxRetries,
		Timeout:     c.Inference.Timeout,
	}
}

// Prompts returns the prompt templates.
func (c *Config) Prompts() pipeline.PromptTemplate {
	return pipeline.PromptTemplate{Focused: c.Prompt.Focused, General: c.Prompt.General}
}

// ExtractMode returns the validated extraction mode.
func (c *Config) ExtractMode() extract.Mode {
	mode, _ := extract.ParseMode(c.Extract.Mode)
	return mode
}

// ToServer returns the MCP server configuration.
func (c *Config) ToServer(version string) server.Config {
	transport, _ := server.ParseTransport(c.Server.Transport)
	return server.Config{
		Name:      server.DefaultName,
		Version:   version,
		Transport: transport,
		Addr:      c.Server.Addr,
	}
}
