package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Brianleach11/popreel/internal/client"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/repository"
	"github.com/Brianleach11/popreel/pkg/clock"
)

// AnalyticsService validates raw engagement events, scores them, persists
// the append-only interaction log and forwards scored events to the
// analytics queue.
type AnalyticsService struct {
	videos       *repository.VideoRepo
	interactions *repository.InteractionRepo
	scorer       *ScoringService
	publisher    *client.Publisher
	clock        clock.Clock
}

func NewAnalyticsService(
	videos *repository.VideoRepo,
	interactions *repository.InteractionRepo,
	scorer *ScoringService,
	publisher *client.Publisher,
	clk clock.Clock,
) *AnalyticsService {
	return &AnalyticsService{
		videos:       videos,
		interactions: interactions,
		scorer:       scorer,
		publisher:    publisher,
		clock:        clk,
	}
}

// ProcessBatch filters, scores and persists a batch of event candidates
// for the authenticated caller. Malformed events are dropped individually;
// the call fails only when nothing survives. The queue forward happens
// after the commit and its failure never rolls back the persisted scores.
func (s *AnalyticsService) ProcessBatch(ctx context.Context, callerID string, candidates []model.EventCandidate) (*model.BatchResponse, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty batch", model.ErrValidation)
	}

	events, rejected := filterCandidates(callerID, candidates, s.clock)
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no valid events in batch", model.ErrValidation)
	}

	// One batched duration lookup; events for unknown videos are dropped
	videoIDs := make([]string, 0, len(events))
	for _, e := range events {
		videoIDs = append(videoIDs, e.VideoID)
	}
	durations, err := s.videos.GetDurations(ctx, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch durations: %w", model.ErrPersistence, err)
	}

	scored := make([]model.ScoredInteraction, 0, len(events))
	for _, e := range events {
		duration, known := durations[e.VideoID]
		if !known {
			rejected++
			continue
		}
		scored = append(scored, s.scorer.Score(e, duration))
	}
	if len(scored) == 0 {
		return nil, fmt.Errorf("%w: no valid events in batch", model.ErrValidation)
	}

	if err := s.interactions.InsertBatch(ctx, scored); err != nil {
		return nil, fmt.Errorf("%w: insert interactions: %w", model.ErrPersistence, err)
	}

	s.publisher.Publish(client.SubjectScoredInteractions, scored)

	return &model.BatchResponse{Accepted: len(scored), Rejected: rejected}, nil
}

// filterCandidates applies the per-item validation rules: the event must
// belong to the caller, carry a finite non-negative view duration and
// reference a parseable video ID. Timestamps are stamped at validation.
func filterCandidates(callerID string, candidates []model.EventCandidate, clk clock.Clock) ([]model.InteractionEvent, int) {
	now := clk.Now()
	events := make([]model.InteractionEvent, 0, len(candidates))
	rejected := 0

	for _, c := range candidates {
		if c.UserID != callerID {
			rejected++
			continue
		}
		if c.ViewDuration < 0 || math.IsNaN(c.ViewDuration) || math.IsInf(c.ViewDuration, 0) {
			rejected++
			continue
		}
		videoID, err := uuid.Parse(c.VideoID)
		if err != nil {
			rejected++
			continue
		}
		events = append(events, model.InteractionEvent{
			UserID:       c.UserID,
			VideoID:      videoID.String(),
			ViewDuration: c.ViewDuration,
			Liked:        c.Liked,
			Commented:    c.Commented,
			Shared:       c.Shared,
			ObservedAt:   now,
		})
	}
	return events, rejected
}
