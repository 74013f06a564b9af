package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects and configures one model vendor.
type Config struct {
	// Provider is one of "gemini", "openai", "anthropic", "openrouter"
	// or "mock".
	Provider string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call. Zero leaves it to the caller.
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // for OpenAI-compatible servers
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig shapes RetryProvider. MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// vendor describes one selectable provider: where its key and model
// live in Config and which variable the vendor's own tooling uses.
type vendor struct {
	name     string
	stdKey   string
	apiKey   func(*Config) *string
	model    func(*Config) *string
	defModel string
}

// vendors in discovery order.
var vendors = []vendor{
	{
		name: "gemini", stdKey: "GEMINI_API_KEY", defModel: "gemini-flash",
		apiKey: func(c *Config) *string { return &c.Gemini.APIKey },
		model:  func(c *Config) *string { return &c.Gemini.Model },
	},
	{
		name: "openai", stdKey: "OPENAI_API_KEY", defModel: "gpt-4o-mini",
		apiKey: func(c *Config) *string { return &c.OpenAI.APIKey },
		model:  func(c *Config) *string { return &c.OpenAI.Model },
	},
	{
		name: "anthropic", stdKey: "ANTHROPIC_API_KEY", defModel: "claude-haiku",
		apiKey: func(c *Config) *string { return &c.Anthropic.APIKey },
		model:  func(c *Config) *string { return &c.Anthropic.Model },
	},
	{
		name: "openrouter", stdKey: "OPENROUTER_API_KEY", defModel: "google/gemini-2.0-flash-001",
		apiKey: func(c *Config) *string { return &c.OpenRouter.APIKey },
		model:  func(c *Config) *string { return &c.OpenRouter.Model },
	},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// envName returns the QUIZGEN_<VENDOR>_<FIELD> variable name.
func (v vendor) envName(field string) string {
	return "QUIZGEN_" + strings.ToUpper(v.name) + "_" + field
}

// DefaultConfig uses Gemini with no retries. A request is a single model
// call, so retrying is opt-in through QUIZGEN_LLM_MAX_ATTEMPTS.
func DefaultConfig() Config {
	cfg := Config{
		Provider: "gemini",
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
	for _, v := range vendors {
		*v.model(&cfg) = v.defModel
	}
	return cfg
}

// ConfigFromEnv reads QUIZGEN_* variables over DefaultConfig. Without
// QUIZGEN_LLM_PROVIDER the vendors' own key variables are probed, see
// DiscoverConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("QUIZGEN_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	} else if found, ok := DiscoverConfig(); ok {
		cfg = found
	}

	for _, v := range vendors {
		setFromEnv(v.apiKey(&cfg), v.envName("API_KEY"))
		setFromEnv(v.model(&cfg), v.envName("MODEL"))
	}
	setFromEnv(&cfg.OpenAI.BaseURL, "QUIZGEN_OPENAI_BASE_URL")

	if n, err := strconv.Atoi(os.Getenv("QUIZGEN_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	if d, err := time.ParseDuration(os.Getenv("QUIZGEN_LLM_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}
	return cfg
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// DiscoverConfig picks the first vendor (Gemini, OpenAI, Anthropic,
// OpenRouter) whose standard key variable is set.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		if k := os.Getenv(v.stdKey); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = v.name
			*v.apiKey(&cfg) = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected vendor exists and has a key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *v.apiKey(&c) == "" {
		return fmt.Errorf("%s (or %s) is required for the %s provider", v.envName("API_KEY"), v.stdKey, v.name)
	}
	return nil
}
