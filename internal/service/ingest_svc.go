package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Brianleach11/popreel/internal/client"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/repository"
)

// Extraction thresholds applied to raw annotation output.
const (
	entityConfidenceMin = 0.5
	textConfidenceMin   = 0.7
	textLengthMin       = 4
)

// Narrow views of the gate's dependencies.
type annotator interface {
	Annotate(ctx context.Context, mediaRef string) (*model.VideoAnnotations, error)
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type gateStore interface {
	InsertProcessing(ctx context.Context, video *model.Video) error
	MarkReady(ctx context.Context, videoID string, embedding []float32) error
	MarkBlocked(ctx context.Context, videoID string, reasons []string) error
}

// IngestService is the moderation and embedding gate. Every upload passes
// through it before the video can enter the ranking corpus. The status
// machine is strict: processing → blocked on a moderation hit, processing
// → ready only with a completed embedding, and any service failure leaves
// the record in processing for retry.
type IngestService struct {
	videos    gateStore
	annotator annotator
	embedder  embedder
	publisher *client.Publisher
}

func NewIngestService(
	videos *repository.VideoRepo,
	annotator *client.AnnotatorClient,
	embedder *client.EmbedderClient,
	publisher *client.Publisher,
) *IngestService {
	return &IngestService{
		videos:    videos,
		annotator: annotator,
		embedder:  embedder,
		publisher: publisher,
	}
}

// Ingest runs the full gate for one upload: create the processing record,
// annotate, moderate, embed, and mark ready or blocked. A moderation block
// is a successful classification, returned to the uploader with reasons,
// not an error.
func (s *IngestService) Ingest(ctx context.Context, userID string, req model.IngestRequest) (*model.IngestResponse, error) {
	video := &model.Video{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.MediaRef,
		Duration:    req.Duration,
	}
	if err := s.videos.InsertProcessing(ctx, video); err != nil {
		return nil, fmt.Errorf("%w: insert video: %w", model.ErrPersistence, err)
	}

	annotations, err := s.annotator.Annotate(ctx, req.MediaRef)
	if err != nil {
		// Record stays in processing for retry; never silently ready
		return nil, fmt.Errorf("%w: annotate: %w", model.ErrUpstream, err)
	}

	verdict := Moderate(annotations)
	if verdict.Blocked {
		if err := s.videos.MarkBlocked(ctx, video.ID, verdict.Reasons); err != nil {
			return nil, fmt.Errorf("%w: mark blocked: %w", model.ErrPersistence, err)
		}
		return &model.IngestResponse{
			VideoID: video.ID,
			Status:  model.StatusBlocked,
			Reasons: verdict.Reasons,
		}, nil
	}

	text := BuildEmbeddingText(req.Title, req.Description, annotations)
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %w", model.ErrUpstream, err)
	}

	if err := s.videos.MarkReady(ctx, video.ID, embedding); err != nil {
		return nil, fmt.Errorf("%w: mark ready: %w", model.ErrPersistence, err)
	}

	s.publisher.Publish(client.SubjectVideoReady, map[string]any{
		"videoId":   video.ID,
		"userId":    userID,
		"embedding": embedding,
	})

	return &model.IngestResponse{VideoID: video.ID, Status: model.StatusReady}, nil
}

// Moderate classifies the upload from its explicit-content frames.
// Blocked when any sampled frame is at or above LIKELY — the two highest
// steps of the five-point scale.
func Moderate(annotations *model.VideoAnnotations) model.ModerationVerdict {
	for _, frame := range annotations.ExplicitFrames {
		if frame.Likelihood == model.LikelihoodLikely || frame.Likelihood == model.LikelihoodVeryLikely {
			return model.ModerationVerdict{
				Blocked: true,
				Reasons: []string{"explicit content detected"},
			}
		}
	}
	return model.ModerationVerdict{}
}

// ExtractEntities collects unique entity labels with confidence ≥ 0.5 from
// both label-annotation sources, deduplicated by description. Order follows
// first appearance.
func ExtractEntities(annotations *model.VideoAnnotations) []string {
	seen := make(map[string]struct{})
	var entities []string

	collect := func(labels []model.LabelAnnotation) {
		for _, l := range labels {
			if l.Confidence < entityConfidenceMin {
				continue
			}
			if _, dup := seen[l.Description]; dup {
				continue
			}
			seen[l.Description] = struct{}{}
			entities = append(entities, l.Description)
		}
	}
	collect(annotations.ShotLabels)
	collect(annotations.SegmentLabels)

	return entities
}

// ExtractSignificantText collects detected text fragments longer than 4
// characters with confidence ≥ 0.7.
func ExtractSignificantText(annotations *model.VideoAnnotations) []string {
	var fragments []string
	for _, t := range annotations.TextDetections {
		text := strings.TrimSpace(t.Text)
		if len(text) > textLengthMin && t.Confidence >= textConfidenceMin {
			fragments = append(fragments, text)
		}
	}
	return fragments
}

// BuildEmbeddingText concatenates title, description, extracted entities
// and significant text into the blob submitted to the embedding service.
func BuildEmbeddingText(title, description string, annotations *model.VideoAnnotations) string {
	parts := []string{title, description}
	parts = append(parts, ExtractEntities(annotations)...)
	parts = append(parts, ExtractSignificantText(annotations)...)
	return strings.Join(parts, " ")
}
