// Package simerr defines the error kinds used across dtnsim's non-fatal and
// fatal condition handling, per the error-handling design.
package simerr

import "errors"

// Sentinel errors for conditions that are counted/logged rather than fatal.
// Callers compare with errors.Is; none of these carry a stack trace since
// they occur on hot per-tick paths.
var (
	// ErrOutOfBounds is returned when a movement or teleport would exit the
	// space or enter an obstacle cell. The move is suppressed, not applied.
	ErrOutOfBounds = errors.New("simerr: out of bounds")

	// ErrSpeedLimitExceeded is returned when a requested step magnitude
	// exceeds model_speed_limit + epsilon. The move is suppressed.
	ErrSpeedLimitExceeded = errors.New("simerr: speed limit exceeded")

	// ErrUnreachableAtNow names the case where no path exists from root to
	// destination at the current tick; route computation reports it as a
	// false ok result rather than returning this error.
	ErrUnreachableAtNow = errors.New("simerr: unreachable at now")

	// ErrExpiredBundle/Payload/Mapping mark silent drops performed on refresh.
	ErrExpiredBundle  = errors.New("simerr: bundle expired")
	ErrExpiredPayload = errors.New("simerr: payload expired")
	ErrExpiredMapping = errors.New("simerr: mapping expired")

	// ErrDuplicateBundle names a store attempt that finds the bundle id
	// already present; the store reports it as a true duplicate result and
	// a num_repeated_bundle_receives count rather than returning this error.
	ErrDuplicateBundle = errors.New("simerr: duplicate bundle")

	// ErrInvariantViolation names a duplicate delivery or duplicate storage
	// seen while correctness-mode is enabled; protocols count it in
	// NumInvariantViolations rather than returning this error.
	ErrInvariantViolation = errors.New("simerr: invariant violation")
)

// Fatal, pre-tick configuration errors. These are wrapped with
// github.com/pkg/errors at the point of detection so operators get a
// stack-annotated abort reason; they are never compared with errors.Is.
var (
	// ErrConfigMissing marks a required JSON key absent with no default.
	ErrConfigMissing = errors.New("simerr: required configuration missing")

	// ErrUnknownAgentType marks an agent "type" outside the recognized set.
	ErrUnknownAgentType = errors.New("simerr: unknown agent type")
)
