package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/pkg/clock"
)

// ViewSession accumulates one viewer's engagement with one video between
// start-of-view and finalize-on-exit. The lifecycle is explicit: the
// session is created at view start, events accrue, and Finalize flushes
// exactly once — a duplicate finalize is a no-op.
type ViewSession struct {
	UserID    string
	VideoID   string
	StartedAt time.Time

	liked     bool
	commented bool
	shared    bool
	flushed   bool
}

// NewViewSession starts a session at the given instant.
func NewViewSession(userID, videoID string, startedAt time.Time) *ViewSession {
	return &ViewSession{UserID: userID, VideoID: videoID, StartedAt: startedAt}
}

// Mark records an engagement action on the session. Unknown action names
// are ignored.
func (vs *ViewSession) Mark(action string) {
	switch action {
	case "like":
		vs.liked = true
	case "comment":
		vs.commented = true
	case "share":
		vs.shared = true
	}
}

// Finalize converts the session into an event candidate, once. The second
// and later calls return false. View duration is floored at one second.
func (vs *ViewSession) Finalize(now time.Time) (model.EventCandidate, bool) {
	if vs.flushed {
		return model.EventCandidate{}, false
	}
	vs.flushed = true

	return model.EventCandidate{
		UserID:       vs.UserID,
		VideoID:      vs.VideoID,
		ViewDuration: math.Max(1, math.Round(now.Sub(vs.StartedAt).Seconds())),
		Liked:        vs.liked,
		Commented:    vs.commented,
		Shared:       vs.shared,
	}, true
}

// SessionTracker holds in-flight view sessions keyed by (viewer, video)
// and routes their flushes into the analytics pipeline.
type SessionTracker struct {
	analytics *AnalyticsService
	clock     clock.Clock

	mu       sync.Mutex
	sessions map[string]*ViewSession
}

func NewSessionTracker(analytics *AnalyticsService, clk clock.Clock) *SessionTracker {
	return &SessionTracker{
		analytics: analytics,
		clock:     clk,
		sessions:  make(map[string]*ViewSession),
	}
}

// StartView opens a fresh session, replacing any unflushed previous one
// for the same (viewer, video).
func (t *SessionTracker) StartView(userID, videoID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[sessionKey(userID, videoID)] = NewViewSession(userID, videoID, t.clock.Now())
}

// Track records an engagement action, opening a session if none exists.
func (t *SessionTracker) Track(userID, videoID, action string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := sessionKey(userID, videoID)
	vs, ok := t.sessions[key]
	if !ok {
		vs = NewViewSession(userID, videoID, t.clock.Now())
		t.sessions[key] = vs
	}
	vs.Mark(action)
}

// FinalizeView flushes the session through the analytics pipeline exactly
// once. A missing or already-flushed session is a successful no-op.
func (t *SessionTracker) FinalizeView(ctx context.Context, userID, videoID string) (*model.BatchResponse, error) {
	t.mu.Lock()
	key := sessionKey(userID, videoID)
	vs, ok := t.sessions[key]
	if ok {
		delete(t.sessions, key)
	}
	t.mu.Unlock()

	if !ok {
		return &model.BatchResponse{}, nil
	}
	candidate, fresh := vs.Finalize(t.clock.Now())
	if !fresh {
		return &model.BatchResponse{}, nil
	}
	return t.analytics.ProcessBatch(ctx, userID, []model.EventCandidate{candidate})
}

func sessionKey(userID, videoID string) string {
	return userID + ":" + videoID
}
