package model

import "errors"

// Error taxonomy. Handlers map these to HTTP statuses; services wrap
// them with context via fmt.Errorf("...: %w", err).
var (
	// ErrValidation marks malformed input rejected at the batch level
	// (per-item rejections are dropped silently and only counted).
	ErrValidation = errors.New("validation failed")

	// ErrUpstream marks a recommendation/embedding/annotation/queue
	// failure. Absorbed via fallback or retry, never a generic 500
	// for fallback-capable tiers.
	ErrUpstream = errors.New("upstream service failed")

	// ErrPersistence marks an unreachable or failing durable store.
	// Fatal to the current call.
	ErrPersistence = errors.New("persistence failed")
)
