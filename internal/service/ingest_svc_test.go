package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Brianleach11/popreel/internal/client"
	"github.com/Brianleach11/popreel/internal/model"
)

func frames(likelihoods ...model.Likelihood) []model.ExplicitFrame {
	out := make([]model.ExplicitFrame, len(likelihoods))
	for i, l := range likelihoods {
		out[i] = model.ExplicitFrame{Likelihood: l}
	}
	return out
}

func TestModerate(t *testing.T) {
	tests := []struct {
		name        string
		frames      []model.ExplicitFrame
		wantBlocked bool
	}{
		{"no frames", nil, false},
		{"all very unlikely", frames(model.LikelihoodVeryUnlikely, model.LikelihoodVeryUnlikely), false},
		{"possible is not blocked", frames(model.LikelihoodPossible), false},
		{"unknown is not blocked", frames(model.LikelihoodUnknown), false},
		{"single likely frame blocks", frames(model.LikelihoodUnlikely, model.LikelihoodLikely), true},
		{"very likely blocks", frames(model.LikelihoodVeryLikely), true},
		{"one bad frame among many", frames(
			model.LikelihoodVeryUnlikely,
			model.LikelihoodPossible,
			model.LikelihoodVeryLikely,
			model.LikelihoodVeryUnlikely,
		), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Moderate(&model.VideoAnnotations{ExplicitFrames: tt.frames})
			if verdict.Blocked != tt.wantBlocked {
				t.Errorf("blocked = %v, want %v", verdict.Blocked, tt.wantBlocked)
			}
			if tt.wantBlocked && len(verdict.Reasons) == 0 {
				t.Error("blocked verdict has no reasons")
			}
		})
	}
}

func TestExtractEntities(t *testing.T) {
	annotations := &model.VideoAnnotations{
		ShotLabels: []model.LabelAnnotation{
			{Description: "cat", Confidence: 0.6},
			{Description: "dog", Confidence: 0.3},
		},
		SegmentLabels: []model.LabelAnnotation{
			{Description: "cat", Confidence: 0.9},
			{Description: "animal", Confidence: 0.5},
		},
	}

	// dog is below threshold, cat appears once, 0.5 is inclusive
	got := ExtractEntities(annotations)
	want := []string{"cat", "animal"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entities = %v, want %v", got, want)
	}
}

func TestExtractEntities_OrderFollowsFirstAppearance(t *testing.T) {
	annotations := &model.VideoAnnotations{
		ShotLabels: []model.LabelAnnotation{
			{Description: "skateboard", Confidence: 0.8},
			{Description: "street", Confidence: 0.7},
		},
		SegmentLabels: []model.LabelAnnotation{
			{Description: "street", Confidence: 0.95},
			{Description: "city", Confidence: 0.6},
		},
	}

	got := ExtractEntities(annotations)
	want := []string{"skateboard", "street", "city"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entities = %v, want %v", got, want)
	}
}

func TestExtractSignificantText(t *testing.T) {
	annotations := &model.VideoAnnotations{
		TextDetections: []model.TextAnnotation{
			{Text: "subscribe now", Confidence: 0.9},
			{Text: "hi", Confidence: 0.99},           // too short
			{Text: "maybe words", Confidence: 0.5},   // low confidence
			{Text: "  padded text  ", Confidence: 0.7}, // trimmed, 0.7 inclusive
		},
	}

	got := ExtractSignificantText(annotations)
	want := []string{"subscribe now", "padded text"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("text fragments = %v, want %v", got, want)
	}
}

func TestBuildEmbeddingText(t *testing.T) {
	annotations := &model.VideoAnnotations{
		ShotLabels: []model.LabelAnnotation{
			{Description: "guitar", Confidence: 0.9},
		},
		TextDetections: []model.TextAnnotation{
			{Text: "live session", Confidence: 0.8},
		},
	}

	got := BuildEmbeddingText("My Song", "an acoustic cover", annotations)
	want := "My Song an acoustic cover guitar live session"
	if got != want {
		t.Errorf("embedding text = %q, want %q", got, want)
	}
}

func TestBuildEmbeddingText_NoAnnotations(t *testing.T) {
	got := BuildEmbeddingText("Title", "desc", &model.VideoAnnotations{})
	if got != "Title desc" {
		t.Errorf("embedding text = %q, want %q", got, "Title desc")
	}
}

type fakeAnnotator struct {
	annotations *model.VideoAnnotations
	err         error
}

func (f *fakeAnnotator) Annotate(_ context.Context, _ string) (*model.VideoAnnotations, error) {
	return f.annotations, f.err
}

type fakeEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.embedding, f.err
}

type fakeGateStore struct {
	insertedID     string
	readyID        string
	readyEmbedding []float32
	blockedID      string
	blockedReasons []string
}

func (f *fakeGateStore) InsertProcessing(_ context.Context, video *model.Video) error {
	f.insertedID = video.ID
	return nil
}

func (f *fakeGateStore) MarkReady(_ context.Context, videoID string, embedding []float32) error {
	f.readyID = videoID
	f.readyEmbedding = embedding
	return nil
}

func (f *fakeGateStore) MarkBlocked(_ context.Context, videoID string, reasons []string) error {
	f.blockedID = videoID
	f.blockedReasons = reasons
	return nil
}

func newTestIngestService(store *fakeGateStore, ann *fakeAnnotator, emb *fakeEmbedder) *IngestService {
	return &IngestService{
		videos:    store,
		annotator: ann,
		embedder:  emb,
		publisher: &client.Publisher{},
	}
}

func TestIngest_CleanUploadBecomesReady(t *testing.T) {
	store := &fakeGateStore{}
	ann := &fakeAnnotator{annotations: &model.VideoAnnotations{ExplicitFrames: frames(model.LikelihoodVeryUnlikely)}}
	emb := &fakeEmbedder{embedding: []float32{0.1, 0.2}}
	svc := newTestIngestService(store, ann, emb)

	resp, err := svc.Ingest(context.Background(), "uploader", model.IngestRequest{Title: "clip", MediaRef: "obj/clip", Duration: 12})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if resp.Status != model.StatusReady {
		t.Errorf("status = %q, want %q", resp.Status, model.StatusReady)
	}
	if store.readyID != resp.VideoID {
		t.Errorf("MarkReady for %q, want %q", store.readyID, resp.VideoID)
	}
	if !reflect.DeepEqual(store.readyEmbedding, emb.embedding) {
		t.Errorf("stored embedding = %v, want %v", store.readyEmbedding, emb.embedding)
	}
}

func TestIngest_ModerationBlockShortCircuits(t *testing.T) {
	store := &fakeGateStore{}
	ann := &fakeAnnotator{annotations: &model.VideoAnnotations{ExplicitFrames: frames(model.LikelihoodVeryLikely)}}
	emb := &fakeEmbedder{embedding: []float32{0.1}}
	svc := newTestIngestService(store, ann, emb)

	resp, err := svc.Ingest(context.Background(), "uploader", model.IngestRequest{Title: "clip", MediaRef: "obj/clip"})
	if err != nil {
		t.Fatalf("a moderation block is not an error: %v", err)
	}
	if resp.Status != model.StatusBlocked {
		t.Errorf("status = %q, want %q", resp.Status, model.StatusBlocked)
	}
	if len(resp.Reasons) == 0 {
		t.Error("blocked response carries no reasons")
	}
	if store.blockedID != resp.VideoID {
		t.Errorf("MarkBlocked for %q, want %q", store.blockedID, resp.VideoID)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for a blocked upload, want 0", emb.calls)
	}
	if store.readyID != "" {
		t.Error("blocked upload must never be marked ready")
	}
}

func TestIngest_AnnotatorFailureLeavesProcessing(t *testing.T) {
	store := &fakeGateStore{}
	ann := &fakeAnnotator{err: errors.New("deadline exceeded")}
	svc := newTestIngestService(store, ann, &fakeEmbedder{})

	_, err := svc.Ingest(context.Background(), "uploader", model.IngestRequest{Title: "clip", MediaRef: "obj/clip"})
	if !errors.Is(err, model.ErrUpstream) {
		t.Errorf("annotator failure = %v, want ErrUpstream", err)
	}
	if store.readyID != "" || store.blockedID != "" {
		t.Errorf("record transitioned (ready=%q blocked=%q), must stay processing", store.readyID, store.blockedID)
	}
}

func TestIngest_EmbedderFailureLeavesProcessing(t *testing.T) {
	store := &fakeGateStore{}
	ann := &fakeAnnotator{annotations: &model.VideoAnnotations{}}
	emb := &fakeEmbedder{err: errors.New("503")}
	svc := newTestIngestService(store, ann, emb)

	_, err := svc.Ingest(context.Background(), "uploader", model.IngestRequest{Title: "clip", MediaRef: "obj/clip"})
	if !errors.Is(err, model.ErrUpstream) {
		t.Errorf("embedder failure = %v, want ErrUpstream", err)
	}
	if store.readyID != "" {
		t.Error("failed embedding must not mark the record ready")
	}
	if store.blockedID != "" {
		t.Error("embedder failure is not a moderation block")
	}
}
