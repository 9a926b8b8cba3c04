package usecase

import (
	"context"
	"sync"
	"time"

	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/logger"
	"cinescope-backend/pkg/metrics"
)

// RetentionUsecase purges ad requests older than the retention window,
// whatever their status, along with their uploaded creatives.
type RetentionUsecase struct {
	repo       domain.AdRequestRepository
	creatives  CreativeStore // nil when uploads are disabled
	visibility *AdVisibilityUsecase
	window     time.Duration
	now        func() time.Time
}

func NewRetentionUsecase(repo domain.AdRequestRepository, creatives CreativeStore, visibility *AdVisibilityUsecase, window time.Duration) *RetentionUsecase {
	return &RetentionUsecase{
		repo:       repo,
		creatives:  creatives,
		visibility: visibility,
		window:     window,
		now:        time.Now,
	}
}

// Purge deletes expired records and returns how many were removed.
// Creative cleanup is best effort; a failed object delete is only logged.
func (uc *RetentionUsecase) Purge(ctx context.Context) (int, error) {
	cutoff := uc.now().Add(-uc.window)
	deleted, err := uc.repo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	log := logger.WithContext(ctx)
	approvedRemoved := false
	for _, req := range deleted {
		if req.Status == domain.AdStatusApproved {
			approvedRemoved = true
		}
		if req.ImageFile == "" || uc.creatives == nil {
			continue
		}
		if err := uc.creatives.DeleteCreative(ctx, req.ImageFile); err != nil {
			log.Warn().Err(err).Str("ad_request_id", req.ID).Msg("Failed to delete expired creative")
		}
	}
	if approvedRemoved {
		uc.visibility.Invalidate(ctx)
	}

	if len(deleted) > 0 {
		metrics.AdsPurged.Add(float64(len(deleted)))
		log.Info().Int("count", len(deleted)).Time("cutoff", cutoff).Msg("Purged expired ad requests")
	}
	return len(deleted), nil
}

// RetentionWorker runs Purge on a fixed interval until shut down.
type RetentionWorker struct {
	uc       *RetentionUsecase
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewRetentionWorker starts the purge loop. The first purge runs immediately.
func NewRetentionWorker(ctx context.Context, uc *RetentionUsecase, interval time.Duration) *RetentionWorker {
	w := &RetentionWorker{uc: uc, interval: interval}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *RetentionWorker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.runOnce()
		select {
		case <-ticker.C:
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *RetentionWorker) runOnce() {
	if _, err := w.uc.Purge(w.ctx); err != nil && w.ctx.Err() == nil {
		logger.Get().Error().Err(err).Msg("Retention purge failed")
	}
}

// Shutdown stops the loop and waits for an in-flight purge to finish.
func (w *RetentionWorker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}
