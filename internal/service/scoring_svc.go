package service

import (
	"math"
	"time"

	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/pkg/clock"
)

const (
	likeWeight    = 0.5
	shareWeight   = 0.7
	commentWeight = 0.3

	// View-percentage bands, evaluated highest-first
	view75Plus  = 0.4
	view50To75  = 0.2
	view25To50  = -0.2
	viewBelow25 = -0.4

	// 5% decay per week, applied once at write time
	weeklyDecayFactor = 0.95

	week = 7 * 24 * time.Hour
)

// ScoringService converts one validated interaction event into its
// weighted score. Scoring is pure and deterministic given the event,
// the video duration and the injected clock.
type ScoringService struct {
	clock clock.Clock
}

func NewScoringService(clk clock.Clock) *ScoringService {
	return &ScoringService{clock: clk}
}

// Score computes the weighted score for an event against the video's total
// duration:
//
//	score = bandBonus(viewDuration/videoDuration) + likes/shares/comments
//	score *= 0.95 ^ weeksSinceEvent
//	score  = max(score, 0)
//
// The decay is a write-time snapshot; the stored score is never recomputed.
func (s *ScoringService) Score(event model.InteractionEvent, videoDuration float64) model.ScoredInteraction {
	score := viewBandBonus(viewPercentage(event.ViewDuration, videoDuration))

	if event.Liked {
		score += likeWeight
	}
	if event.Shared {
		score += shareWeight
	}
	if event.Commented {
		score += commentWeight
	}

	weeksSince := s.clock.Now().Sub(event.ObservedAt).Hours() / week.Hours()
	score *= math.Pow(weeklyDecayFactor, weeksSince)

	return model.ScoredInteraction{
		InteractionEvent: event,
		WeightedScore:    math.Max(0, score),
	}
}

// viewPercentage is 0 when the video duration is zero or unknown.
func viewPercentage(viewDuration, videoDuration float64) float64 {
	if videoDuration <= 0 {
		return 0
	}
	return viewDuration / videoDuration
}

// viewBandBonus maps a view percentage to exactly one band bonus.
// Bands are mutually exclusive and exhaustive.
func viewBandBonus(pct float64) float64 {
	switch {
	case pct >= 0.75:
		return view75Plus
	case pct >= 0.5:
		return view50To75
	case pct >= 0.25:
		return view25To50
	default:
		return viewBelow25
	}
}
