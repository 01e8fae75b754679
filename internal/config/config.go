// Package config provides configuration loading and validation for the letter service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Legacy .doc handling policies.
const (
	LegacyDocReject = "reject"
	LegacyDocSniff  = "sniff"
)

// LLMConfig configures the outbound completion client.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`  // extra attempts after the first
	BackoffBase time.Duration `yaml:"backoff_base"` // doubled per attempt
	Probe       bool          `yaml:"probe"`        // send a connectivity probe at startup
}

// LimitsConfig holds size ceilings applied before any downstream work.
type LimitsConfig struct {
	MaxTextLength    int    `yaml:"max_text_length"`
	MaxContextLength int    `yaml:"max_context_length"`
	MaxUploadBytes   int64  `yaml:"max_upload_bytes"`
	MaxBodyBytes     int64  `yaml:"max_body_bytes"`
	LegacyDocPolicy  string `yaml:"legacy_doc_policy"`
}

// RateLimitConfig configures the inbound request limiter.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Limit           int           `yaml:"limit"`
	Window          time.Duration `yaml:"window"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	Whitelist       []string      `yaml:"whitelist"`
	Blacklist       []string      `yaml:"blacklist"`
}

// Config is the process-wide configuration. It is built once at startup
// and treated as read-only afterwards.
type Config struct {
	Port           int             `yaml:"port"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	PromptsFile    string          `yaml:"prompts_file"`
	Diagnostics    bool            `yaml:"diagnostics"`
	LogLevel       string          `yaml:"log_level"`
	LogFormat      string          `yaml:"log_format"`
	LLM            LLMConfig       `yaml:"llm"`
	Limits         LimitsConfig    `yaml:"limits"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:      3000,
		LogLevel:  "info",
		LogFormat: "json",
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Temperature: 0.5,
			MaxTokens:   3000,
			Timeout:     30 * time.Second,
			MaxRetries:  2,
			BackoffBase: time.Second,
			Probe:       true,
		},
		Limits: LimitsConfig{
			MaxTextLength:    7000,
			MaxContextLength: 2000,
			MaxUploadBytes:   5 * 1024 * 1024,
			MaxBodyBytes:     1024 * 1024,
			LegacyDocPolicy:  LegacyDocReject,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			Limit:           100,
			Window:          15 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	cfg.fillModelDefault()
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. Unset or unparsable
// variables leave the current value untouched.
func (c *Config) ApplyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	if origins := getEnvString("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	c.PromptsFile = getEnvString("PROMPTS_FILE", c.PromptsFile)
	c.Diagnostics = getEnvBool("DIAGNOSTICS", c.Diagnostics)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvString("LOG_FORMAT", c.LogFormat)

	c.LLM.Provider = strings.ToLower(getEnvString("LLM_PROVIDER", c.LLM.Provider))
	switch c.LLM.Provider {
	case ProviderGemini:
		c.LLM.APIKey = getEnvString("GEMINI_API_KEY", c.LLM.APIKey)
	default:
		c.LLM.APIKey = getEnvString("OPENAI_API_KEY", c.LLM.APIKey)
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = getEnvString("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnvString("LLM_MODEL", c.LLM.Model)
	c.LLM.Temperature = getEnvFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxRetries = getEnvInt("LLM_MAX_RETRIES", c.LLM.MaxRetries)
	c.LLM.BackoffBase = getEnvDuration("LLM_BACKOFF_BASE", c.LLM.BackoffBase)
	c.LLM.Probe = getEnvBool("LLM_STARTUP_PROBE", c.LLM.Probe)

	c.Limits.MaxTextLength = getEnvInt("MAX_TEXT_LENGTH", c.Limits.MaxTextLength)
	c.Limits.MaxContextLength = getEnvInt("MAX_CONTEXT_LENGTH", c.Limits.MaxContextLength)
	c.Limits.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", c.Limits.MaxUploadBytes)
	c.Limits.MaxBodyBytes = getEnvInt64("MAX_BODY_BYTES", c.Limits.MaxBodyBytes)
	c.Limits.LegacyDocPolicy = strings.ToLower(getEnvString("LEGACY_DOC_POLICY", c.Limits.LegacyDocPolicy))

	c.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.Limit = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", c.RateLimit.Limit)
	c.RateLimit.Window = getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", c.RateLimit.Window)
	c.RateLimit.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", c.RateLimit.CleanupInterval)
	if list := getEnvString("RATE_LIMIT_WHITELIST", ""); list != "" {
		c.RateLimit.Whitelist = splitList(list)
	}
	if list := getEnvString("RATE_LIMIT_BLACKLIST", ""); list != "" {
		c.RateLimit.Blacklist = splitList(list)
	}
}

func (c *Config) fillModelDefault() {
	if c.LLM.Model != "" {
		return
	}
	switch c.LLM.Provider {
	case ProviderGemini:
		c.LLM.Model = "gemini-2.5-flash"
	default:
		c.LLM.Model = "gpt-4"
	}
}

// Validate checks that the configuration is usable. A missing provider
// credential is an error: the service refuses to start without one.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("config error: unsupported llm provider %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config error: %s is required but not set", c.APIKeyEnv())
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("config error: 'llm.max_retries' must be non-negative")
	}
	if c.LLM.BackoffBase < 0 {
		return fmt.Errorf("config error: 'llm.backoff_base' must be non-negative")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config error: 'llm.max_tokens' must be positive")
	}
	if c.Limits.MaxTextLength <= 0 {
		return fmt.Errorf("config error: 'limits.max_text_length' must be positive")
	}
	if c.Limits.MaxContextLength <= 0 {
		return fmt.Errorf("config error: 'limits.max_context_length' must be positive")
	}
	if c.Limits.MaxUploadBytes <= 0 || c.Limits.MaxBodyBytes <= 0 {
		return fmt.Errorf("config error: byte limits must be positive")
	}
	switch c.Limits.LegacyDocPolicy {
	case LegacyDocReject, LegacyDocSniff:
	default:
		return fmt.Errorf("config error: 'limits.legacy_doc_policy' must be %q or %q", LegacyDocReject, LegacyDocSniff)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("config error: rate limit needs a positive limit and window")
	}
	if c.PromptsFile != "" {
		if _, err := os.Stat(c.PromptsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: prompts file not found: %s", c.PromptsFile)
		}
	}
	return nil
}

// APIKeyEnv names the environment variable that carries the credential
// for the configured provider.
func (c *Config) APIKeyEnv() string {
	if c.LLM.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
