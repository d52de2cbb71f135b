package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brianleach11/popreel/internal/repository"
	"github.com/Brianleach11/popreel/pkg/clock"
)

// TrendingWorker keeps trending scores eventually consistent with the
// interaction log. Two loops:
//
//   - An incremental loop LISTENs on 'interaction_changes' and, in batched
//     windows, adds the decayed contribution of newly logged interactions
//     to each affected video's running score. If 50 events hit video X in
//     5 seconds, it applies one delta.
//   - A periodic full pass recomputes every scored video from the log,
//     overwriting the running value. This corrects the drift a running sum
//     accumulates as old contributions keep decaying (full-recompute-wins).
//
// Feed requests never wait on either loop; they read the stored value.
type TrendingWorker struct {
	pool         *pgxpool.Pool
	trendingSvc  *TrendingService
	interactions *repository.InteractionRepo
	cache        *CacheService
	clock        clock.Clock
	batchWindow  time.Duration
	fullInterval time.Duration

	mu        sync.Mutex
	pending   map[string]struct{} // video IDs waiting for an incremental update
	lastFlush time.Time
}

// NewTrendingWorker creates a trending aggregation worker.
func NewTrendingWorker(
	pool *pgxpool.Pool,
	trendingSvc *TrendingService,
	interactions *repository.InteractionRepo,
	cache *CacheService,
	clk clock.Clock,
	fullInterval time.Duration,
) *TrendingWorker {
	return &TrendingWorker{
		pool:         pool,
		trendingSvc:  trendingSvc,
		interactions: interactions,
		cache:        cache,
		clock:        clk,
		batchWindow:  5 * time.Second,
		fullInterval: fullInterval,
		pending:      make(map[string]struct{}),
		lastFlush:    clk.Now(),
	}
}

// Start begins both loops and blocks until the context is cancelled.
func (w *TrendingWorker) Start(ctx context.Context) {
	log.Printf("trending-worker: starting (batch window=%s, full recompute every %s)",
		w.batchWindow, w.fullInterval)

	go w.fullRecomputeLoop(ctx)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("trending-worker: stopping (context cancelled)")
				return
			}
			log.Printf("trending-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("trending-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on interaction_changes,
// and accumulates notified video IDs for batched incremental updates.
func (w *TrendingWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN interaction_changes")
	if err != nil {
		return err
	}
	log.Println("trending-worker: listening on interaction_changes")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		videoID := notification.Payload
		if videoID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[videoID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set and applies deltas.
func (w *TrendingWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush applies the incremental delta for each pending video: the decayed
// contributions of interactions logged since the previous flush.
func (w *TrendingWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]struct{})
	// The watermark is global: an interaction stamped before this boundary
	// but committed after it is missed by the observed_at filter and its
	// contribution stays absent until the next full recompute picks it up.
	since := w.lastFlush
	w.lastFlush = w.clock.Now()
	w.mu.Unlock()

	updated := 0
	for videoID := range batch {
		recent, err := w.interactions.ListForVideoSince(ctx, videoID, since)
		if err != nil {
			log.Printf("trending-worker: list recent error for %s: %v", videoID, err)
			continue
		}
		if err := w.trendingSvc.ApplyDelta(ctx, videoID, recent); err != nil {
			log.Printf("trending-worker: delta error for %s: %v", videoID, err)
			continue
		}

		if w.cache != nil {
			if err := w.cache.InvalidateVideo(ctx, videoID); err != nil {
				log.Printf("trending-worker: cache invalidate error for %s: %v", videoID, err)
			}
		}
		updated++
	}

	if updated > 0 {
		log.Printf("trending-worker: batch complete — %d videos updated (from %d notifications)",
			updated, len(batch))
	}
}

// fullRecomputeLoop runs the authoritative full pass on a fixed interval.
func (w *TrendingWorker) fullRecomputeLoop(ctx context.Context) {
	ticker := time.NewTicker(w.fullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.fullRecompute(ctx)
		case <-ctx.Done():
			log.Println("trending-worker: full recompute loop stopping (context cancelled)")
			return
		}
	}
}

// fullRecompute recalculates every video with logged interactions.
func (w *TrendingWorker) fullRecompute(ctx context.Context) {
	start := time.Now()

	videoIDs, err := w.interactions.VideosWithInteractions(ctx)
	if err != nil {
		log.Printf("trending-worker: full recompute list error: %v", err)
		return
	}

	recalculated := 0
	for _, videoID := range videoIDs {
		if err := w.trendingSvc.Recalculate(ctx, videoID); err != nil {
			log.Printf("trending-worker: recalculate error for %s: %v", videoID, err)
			continue
		}
		recalculated++
	}

	if w.cache != nil {
		if err := w.cache.InvalidateTrendingPages(ctx); err != nil {
			log.Printf("trending-worker: cache invalidate error: %v", err)
		}
	}

	log.Printf("trending-worker: full recompute complete — %d/%d videos (%s)",
		recalculated, len(videoIDs), time.Since(start).Round(time.Millisecond))
}
