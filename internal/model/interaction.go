package model

import "time"

// EventCandidate is one raw engagement event as submitted by the client.
// Candidates are untrusted until the validator has filtered them.
type EventCandidate struct {
	UserID       string  `json:"userId"`
	VideoID      string  `json:"videoId"`
	ViewDuration float64 `json:"viewDuration"`
	Liked        bool    `json:"liked"`
	Commented    bool    `json:"commented"`
	Shared       bool    `json:"shared"`
}

// InteractionEvent is a validated, normalized engagement event.
// Immutable once created.
type InteractionEvent struct {
	UserID       string    `json:"userId"`
	VideoID      string    `json:"videoId"`
	ViewDuration float64   `json:"viewDuration"`
	Liked        bool      `json:"liked"`
	Commented    bool      `json:"commented"`
	Shared       bool      `json:"shared"`
	ObservedAt   time.Time `json:"observedAt"`
}

// ScoredInteraction is an InteractionEvent with its write-time weighted
// score. Append-only; the score is never recomputed after persistence.
type ScoredInteraction struct {
	InteractionEvent
	WeightedScore float64 `json:"weightedScore"`
}

// BatchRequest is the API request body for batch interaction ingestion.
type BatchRequest struct {
	Events []EventCandidate `json:"events"`
}

// BatchResponse reports how many events survived validation.
type BatchResponse struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
