package views

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ViewEvent captures one successful single-video read. ViewerID is empty for
// anonymous reads.
type ViewEvent struct {
	VideoID  string
	ViewerID string
}

// EngagementStore applies the non-transactional side effects of a video read.
type EngagementStore interface {
	IncrementViews(ctx context.Context, videoID string) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}

// RecorderConfig controls the concurrency characteristics of the recorder.
type RecorderConfig struct {
	QueueSize int
	Workers   int
}

// Recorder applies view-count increments and watch-history appends in the
// background. The two writes are independent and best-effort: a failure in
// either is logged and never surfaced to the read path.
type Recorder struct {
	store  EngagementStore
	logger *slog.Logger

	jobs   chan ViewEvent
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

const recorderApplyTimeout = 5 * time.Second

// NewRecorder starts a worker pool that drains view events.
func NewRecorder(store EngagementStore, cfg RecorderConfig, logger *slog.Logger) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Recorder{
		store:  store,
		logger: logger,
		jobs:   make(chan ViewEvent, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}

	return r
}

// Record enqueues a view event without blocking. When the queue is full the
// event is applied on its own goroutine so every read is still attempted
// exactly once.
func (r *Recorder) Record(ev ViewEvent) {
	select {
	case <-r.ctx.Done():
		return
	default:
	}

	select {
	case r.jobs <- ev:
	default:
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.apply(ev)
		}()
	}
}

// Shutdown waits for the worker pool to drain outstanding events.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		r.cancel()
		close(r.jobs)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for ev := range r.jobs {
		r.apply(ev)
	}
}

func (r *Recorder) apply(ev ViewEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderApplyTimeout)
	defer cancel()

	if err := r.store.IncrementViews(ctx, ev.VideoID); err != nil {
		r.logger.Error("increment video views", "videoId", ev.VideoID, "error", err)
	}

	if ev.ViewerID == "" {
		return
	}

	if err := r.store.AddWatchHistory(ctx, ev.ViewerID, ev.VideoID); err != nil {
		r.logger.Error("append watch history", "videoId", ev.VideoID, "userId", ev.ViewerID, "error", err)
	}
}
