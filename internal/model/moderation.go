package model

// Likelihood is the five-point ordinal scale used by the annotation
// service for per-frame explicit-content detection.
type Likelihood string

const (
	LikelihoodUnknown      Likelihood = "UNKNOWN"
	LikelihoodVeryUnlikely Likelihood = "VERY_UNLIKELY"
	LikelihoodUnlikely     Likelihood = "UNLIKELY"
	LikelihoodPossible     Likelihood = "POSSIBLE"
	LikelihoodLikely       Likelihood = "LIKELY"
	LikelihoodVeryLikely   Likelihood = "VERY_LIKELY"
)

// LabelAnnotation is one detected entity label with its confidence.
type LabelAnnotation struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// TextAnnotation is one detected on-screen text fragment.
type TextAnnotation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ExplicitFrame is the explicit-content likelihood of one sampled frame.
type ExplicitFrame struct {
	Likelihood Likelihood `json:"likelihood"`
}

// VideoAnnotations is the raw annotation-service output for one upload.
type VideoAnnotations struct {
	ShotLabels     []LabelAnnotation `json:"shotLabels"`
	SegmentLabels  []LabelAnnotation `json:"segmentLabels"`
	TextDetections []TextAnnotation  `json:"textDetections"`
	ExplicitFrames []ExplicitFrame   `json:"explicitFrames"`
}

// ModerationVerdict is the gate's classification of one upload.
// A block is a successful classification, not an error.
type ModerationVerdict struct {
	Blocked bool     `json:"blocked"`
	Reasons []string `json:"reasons,omitempty"`
}
