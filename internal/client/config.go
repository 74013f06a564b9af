package client

import (
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/quizgen/internal/export"
)

// Config tunes the controller.
type Config struct {
	BaseURL  string
	StateDir string

	PollInterval  time.Duration
	AutosaveDelay time.Duration
	ErrorTTL      time.Duration
	Backoff       Backoff

	// ExportLimit is the number of stored questions an export asks for.
	ExportLimit int
}

// DefaultConfig returns the controller defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8000",
		StateDir:      defaultStateDir(),
		PollInterval:  30 * time.Second,
		AutosaveDelay: 2 * time.Second,
		ErrorTTL:      5 * time.Second,
		Backoff:       DefaultBackoff,
		ExportLimit:   export.DefaultLimit,
	}
}

// ConfigFromEnv applies QUIZGEN_API_URL and QUIZGEN_STATE_DIR over the
// defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("QUIZGEN_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("QUIZGEN_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	return cfg
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "quizgen")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "quizgen")
	}
	return filepath.Join(os.TempDir(), "quizgen")
}
