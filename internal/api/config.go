package api

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds HTTP server settings.
type Config struct {
	Addr string

	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string

	// GenerateLimit caps generate calls per client IP per minute.
	// Zero disables the limit.
	GenerateLimit int

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int

	// StoreTimeout bounds the store write after a generation.
	StoreTimeout time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8000",
		CORSOrigins:   []string{"http://localhost:3000"},
		GenerateLimit: 30,
		BodyLimit:     4 * 1024 * 1024,
		StoreTimeout:  5 * time.Second,
	}
}

// ConfigFromEnv applies QUIZGEN_ADDR, QUIZGEN_CORS_ORIGINS and
// QUIZGEN_GENERATE_LIMIT over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("QUIZGEN_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("QUIZGEN_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v := os.Getenv("QUIZGEN_GENERATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.GenerateLimit = n
		}
	}
	return cfg
}
