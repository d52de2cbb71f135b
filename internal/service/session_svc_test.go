package service

import (
	"testing"
	"time"
)

func TestViewSession_FinalizeOnce(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vs := NewViewSession("user-1", testVideoID, start)
	vs.Mark("like")

	candidate, ok := vs.Finalize(start.Add(42 * time.Second))
	if !ok {
		t.Fatal("first finalize rejected")
	}
	if candidate.ViewDuration != 42 {
		t.Errorf("view duration = %.1f, want 42", candidate.ViewDuration)
	}
	if !candidate.Liked {
		t.Error("like not carried into candidate")
	}

	if _, ok := vs.Finalize(start.Add(60 * time.Second)); ok {
		t.Error("second finalize produced a candidate")
	}
}

func TestViewSession_DurationFlooredAtOneSecond(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vs := NewViewSession("user-1", testVideoID, start)

	candidate, ok := vs.Finalize(start.Add(100 * time.Millisecond))
	if !ok {
		t.Fatal("finalize rejected")
	}
	if candidate.ViewDuration != 1 {
		t.Errorf("view duration = %.1f, want floor of 1", candidate.ViewDuration)
	}
}

func TestViewSession_DurationRounded(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vs := NewViewSession("user-1", testVideoID, start)

	candidate, _ := vs.Finalize(start.Add(12500 * time.Millisecond))
	if candidate.ViewDuration != 13 {
		t.Errorf("view duration = %.1f, want 13", candidate.ViewDuration)
	}
}

func TestViewSession_MarkActions(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vs := NewViewSession("user-1", testVideoID, start)
	vs.Mark("comment")
	vs.Mark("share")
	vs.Mark("rewind") // unknown, ignored

	candidate, _ := vs.Finalize(start.Add(5 * time.Second))
	if candidate.Liked {
		t.Error("like set without a like action")
	}
	if !candidate.Commented || !candidate.Shared {
		t.Errorf("actions lost: %+v", candidate)
	}
}
