package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response. Zero leaves
	// the provider default in place.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxSourceRunes caps how much of the source text is sent to the
	// model. Zero means no cap.
	MaxSourceRunes int
}

// DefaultConfig returns a Config with recommended defaults. Twenty
// questions with explanations fit comfortably in 8192 tokens.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      8192,
		Temperature:    0.7,
		MaxSourceRunes: 30000,
	}
}
