package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

type Config struct {
	APIPort   string `yaml:"api_port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// LLMProvider selects the analysis backend: "gemini" or "ollama".
	LLMProvider string `yaml:"llm_provider"`

	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
	GeminiBaseURL string        `yaml:"gemini_base_url"`
	LLMTimeout    time.Duration `yaml:"llm_timeout"`

	OllamaURL           string `yaml:"ollama_url"`
	OllamaModel         string `yaml:"ollama_model"`
	OllamaContextTokens int    `yaml:"ollama_context_tokens"`

	MaxUploadBytes     int64  `yaml:"max_upload_bytes"`
	MaxTranscriptChars int    `yaml:"max_transcript_chars"`
	FaviconPath        string `yaml:"favicon_path"`

	APIRateLimitRPS   float64       `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst int           `yaml:"api_rate_limit_burst"`
	APIMaxInFlight    int           `yaml:"api_max_in_flight"`
	APIQueueWait      time.Duration `yaml:"api_queue_wait"`
	APIMaxConnections int           `yaml:"api_max_connections"`

	BreakerEnabled          bool          `yaml:"breaker_enabled"`
	BreakerMinRequests      uint32        `yaml:"breaker_min_requests"`
	BreakerFailureRatio     float64       `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeout      time.Duration `yaml:"breaker_open_timeout"`
	BreakerHalfOpenMaxCalls uint32        `yaml:"breaker_half_open_max_calls"`

	// ConfigFile is the YAML file the values were read from, if any.
	ConfigFile string `yaml:"-"`
}

func Default() Config {
	return Config{
		APIPort:   "8080",
		LogLevel:  "info",
		LogFormat: "json",

		LLMProvider: ProviderGemini,
		GeminiModel: "gemini-2.5-flash",

		OllamaURL:           "http://localhost:11434",
		OllamaModel:         "llama3.1",
		OllamaContextTokens: 131072,

		MaxUploadBytes:     32 << 20,
		MaxTranscriptChars: 1_500_000,
		FaviconPath:        "favicon.png",

		APIRateLimitRPS:   1,
		APIRateLimitBurst: 5,
		APIMaxInFlight:    4,
		APIQueueWait:      2 * time.Second,
		APIMaxConnections: 256,

		BreakerEnabled:          true,
		BreakerMinRequests:      5,
		BreakerFailureRatio:     0.6,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

// Load starts from defaults, applies CONFIG_FILE when set and lets
// environment variables override both.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.APIPort = mustEnv("API_PORT", cfg.APIPort)
	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = mustEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(mustEnv("LLM_PROVIDER", cfg.LLMProvider)))
	cfg.GeminiAPIKey = mustEnv("GEMINI_API_KEY", mustEnv("GOOGLE_API_KEY", cfg.GeminiAPIKey))
	cfg.GeminiModel = mustEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiBaseURL = mustEnv("GEMINI_BASE_URL", cfg.GeminiBaseURL)
	cfg.LLMTimeout = mustEnvDuration("LLM_TIMEOUT", cfg.LLMTimeout)
	cfg.OllamaURL = mustEnv("OLLAMA_URL", cfg.OllamaURL)
	cfg.OllamaModel = mustEnv("OLLAMA_MODEL", cfg.OllamaModel)
	cfg.OllamaContextTokens = mustEnvInt("OLLAMA_CONTEXT_TOKENS", cfg.OllamaContextTokens)

	cfg.MaxUploadBytes = int64(mustEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.MaxTranscriptChars = mustEnvInt("MAX_TRANSCRIPT_CHARS", cfg.MaxTranscriptChars)
	cfg.FaviconPath = mustEnv("FAVICON_PATH", cfg.FaviconPath)

	cfg.APIRateLimitRPS = mustEnvFloat("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS)
	cfg.APIRateLimitBurst = mustEnvInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst)
	cfg.APIMaxInFlight = mustEnvInt("API_MAX_IN_FLIGHT", cfg.APIMaxInFlight)
	cfg.APIQueueWait = mustEnvDuration("API_QUEUE_WAIT", cfg.APIQueueWait)
	cfg.APIMaxConnections = mustEnvInt("API_MAX_CONNECTIONS", cfg.APIMaxConnections)

	cfg.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerMinRequests = uint32(mustEnvInt("BREAKER_MIN_REQUESTS", int(cfg.BreakerMinRequests)))
	cfg.BreakerFailureRatio = mustEnvFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerOpenTimeout = mustEnvDuration("BREAKER_OPEN_TIMEOUT", cfg.BreakerOpenTimeout)
	cfg.BreakerHalfOpenMaxCalls = uint32(mustEnvInt("BREAKER_HALF_OPEN_MAX_CALLS", int(cfg.BreakerHalfOpenMaxCalls)))

	return cfg, nil
}

// Validate reports every setting the analysis pipeline cannot run with.
func (c Config) Validate() error {
	return errors.Join(c.ValidateCredential(), c.ValidateLimits())
}

// ValidateCredential reports a missing Gemini API key as ErrCredential. The
// HTTP server still starts without one; analyses then fail. Ollama needs no
// credential.
func (c Config) ValidateCredential() error {
	if c.LLMProvider == ProviderOllama {
		return nil
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return domain.WrapError(domain.ErrCredential, "validate config", errors.New("GEMINI_API_KEY is not set"))
	}
	return nil
}

func (c Config) ValidateLimits() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderGemini, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("validate config: unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("validate config: MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.MaxTranscriptChars < 0 {
		errs = append(errs, fmt.Errorf("validate config: MAX_TRANSCRIPT_CHARS must not be negative, got %d", c.MaxTranscriptChars))
	}
	if c.BreakerFailureRatio < 0 || c.BreakerFailureRatio > 1 {
		errs = append(errs, fmt.Errorf("validate config: BREAKER_FAILURE_RATIO must be within [0,1], got %v", c.BreakerFailureRatio))
	}
	return errors.Join(errs...)
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
