// Package feedsource provides the snapshot sources polled by the idle detector
package feedsource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/travigo/idletracker/pkg/ctdf"
)

// Source returns the current observations of a fleet. An error means no
// snapshot is available for this tick.
type Source interface {
	Fetch(ctx context.Context) (ctdf.Snapshot, error)
}

var (
	ErrSourceUnavailable = errors.New("snapshot source unavailable")
	ErrMalformedPayload  = errors.New("malformed snapshot payload")
	ErrRateLimited       = errors.New("snapshot source rate limited")
)

type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

type MalformedPayloadError struct {
	Source string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("source %s returned a malformed payload: %v", e.Source, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

func (e *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

type RateLimitedError struct {
	Source string
	// Zero when the source did not say
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("source %s rate limited, retry after %s", e.Source, e.RetryAfter)
	}

	return fmt.Sprintf("source %s rate limited", e.Source)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// RetryAfter returns the delay requested by a rate limited source, or zero
func RetryAfter(err error) time.Duration {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter
	}

	return 0
}
