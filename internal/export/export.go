// Package export serializes question lists into the downloadable quiz
// formats: JSON, CSV, Moodle XML and GIFT.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/store"
)

// Target is an export format.
type Target string

const (
	TargetJSON   Target = "json"
	TargetCSV    Target = "csv"
	TargetMoodle Target = "moodle"
	TargetGIFT   Target = "gift"
)

// Targets lists the supported formats in display order.
var Targets = []Target{TargetJSON, TargetCSV, TargetMoodle, TargetGIFT}

const (
	DefaultLimit = 15
	MaxLimit     = 1000
)

// ParseTarget resolves a format name, case-insensitively. "moodle_xml"
// and "xml" are accepted for Moodle.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return TargetJSON, nil
	case "csv":
		return TargetCSV, nil
	case "moodle", "moodle_xml", "xml":
		return TargetMoodle, nil
	case "gift":
		return TargetGIFT, nil
	}
	return "", &ExportError{Reason: ReasonUnsupportedFormat, Format: s}
}

// Ext returns the file extension for t, without the dot.
func (t Target) Ext() string {
	if t == TargetMoodle {
		return "xml"
	}
	return string(t)
}

// MIMEType returns the content type served for t.
func (t Target) MIMEType() string {
	switch t {
	case TargetJSON:
		return "application/json"
	case TargetCSV:
		return "text/csv; charset=utf-8"
	case TargetMoodle:
		return "application/xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// File is a fully rendered export.
type File struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Filename returns quiz_export_<format>_<YYYYMMDD_HHMMSS>.<ext>.
func Filename(t Target, now time.Time) string {
	return fmt.Sprintf("quiz_export_%s_%s.%s", t, now.Format("20060102_150405"), t.Ext())
}

// Format renders questions as target. Nothing is returned on error.
func Format(questions []quiz.Question, target Target, now time.Time) (*File, error) {
	if len(questions) == 0 {
		return nil, &ExportError{Reason: ReasonEmpty, Format: string(target)}
	}

	var (
		data []byte
		err  error
	)
	switch target {
	case TargetJSON:
		data, err = encodeJSON(questions, now)
	case TargetCSV:
		data, err = encodeCSV(questions)
	case TargetMoodle:
		data, err = encodeMoodle(questions)
	case TargetGIFT:
		data, err = encodeGIFT(questions)
	default:
		return nil, &ExportError{Reason: ReasonUnsupportedFormat, Format: string(target)}
	}
	if err != nil {
		return nil, &ExportError{Reason: ReasonEncoding, Format: string(target), Err: err}
	}

	return &File{
		Data:     data,
		Filename: Filename(target, now),
		MIMEType: target.MIMEType(),
	}, nil
}

// Job is one export request against the store.
type Job struct {
	Target Target
	Limit  int
}

// Run reads the newest job.Limit questions from repo and formats them.
// A zero limit means DefaultLimit.
func Run(ctx context.Context, repo store.QuestionRepo, job Job, now time.Time) (*File, error) {
	limit := job.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, &ExportError{
			Reason: ReasonInvalidLimit,
			Format: string(job.Target),
			Err:    fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, limit),
		}
	}

	qs, err := repo.Recent(ctx, limit)
	if err != nil {
		return nil, &ExportError{Reason: ReasonStoreUnavailable, Format: string(job.Target), Err: err}
	}
	return Format(qs, job.Target, now)
}

// Reason classifies an ExportError.
type Reason string

const (
	ReasonEmpty             Reason = "empty"
	ReasonUnsupportedFormat Reason = "unsupported_format"
	ReasonInvalidLimit      Reason = "invalid_limit"
	ReasonStoreUnavailable  Reason = "store_unavailable"
	ReasonEncoding          Reason = "encoding_failed"
)

// ExportError reports why no file was produced.
type ExportError struct {
	Reason Reason
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "no questions found to export"
	case ReasonUnsupportedFormat:
		return fmt.Sprintf("unsupported format %q (use json, csv, moodle or gift)", e.Format)
	}
	if e.Err != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("export %s: %s", e.Format, e.Reason)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ReasonOf returns the Reason of err if it is an *ExportError.
func ReasonOf(err error) (Reason, bool) {
	var ee *ExportError
	if errors.As(err, &ee) {
		return ee.Reason, true
	}
	return "", false
}
