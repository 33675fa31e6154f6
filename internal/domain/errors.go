package domain

import "errors"

var (
	// ErrRecordNotFound signals a record id that vanished between the
	// reconciliation diff and the fetch. Skipped, never batch-fatal.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUpstreamUnavailable signals an unreachable or timed-out
	// embedding or synthesis provider. Always routed to a fallback,
	// never propagated raw to the caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedResponse signals a synthesizer reply that is not the
	// expected schema. Triggers the raw-wrap degradation, not a hard
	// failure.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrEmptyQuery signals a missing or blank question.
	ErrEmptyQuery = errors.New("empty query")
)
