package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("model rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("model rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model answered with content that does
// not conform to the requested schema. Content holds the raw answer, if
// any, so callers can attempt a repair.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated: max tokens exceeded"
}

// Kind groups provider failures by what the caller can do about them.
type Kind int

const (
	KindNone Kind = iota
	// KindUnavailable: the model did not answer (outage, rate limit,
	// transport error, deadline).
	KindUnavailable
	// KindMalformed: the model answered but the answer is unusable.
	KindMalformed
	// KindCanceled: the caller gave up.
	KindCanceled
)

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var inv *ErrInvalidResponse
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &inv) || errors.As(err, &maxTok) {
		return KindMalformed
	}
	return KindUnavailable
}

// fromStatus maps a vendor API failure with the given HTTP status onto
// the package error types. header may be nil.
func fromStatus(status int, header http.Header, err error) error {
	if status != http.StatusTooManyRequests {
		return &ErrProviderUnavailable{Err: err}
	}
	rl := &ErrRateLimit{Err: err}
	if secs, perr := strconv.Atoi(header.Get("Retry-After")); perr == nil && secs > 0 {
		rl.RetryAfter = time.Duration(secs) * time.Second
	}
	return rl
}
