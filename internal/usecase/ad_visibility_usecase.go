package usecase

import (
	"context"
	"time"

	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/cache"
	"cinescope-backend/pkg/logger"
)

// AdVisibilityUsecase answers the two public questions: which ads are showing
// now, and which windows are already taken.
type AdVisibilityUsecase struct {
	repo  domain.AdRequestRepository
	cache cache.CacheService // nil reads straight from the store
	ttl   time.Duration
	now   func() time.Time
}

func NewAdVisibilityUsecase(repo domain.AdRequestRepository, cache cache.CacheService, ttl time.Duration) *AdVisibilityUsecase {
	return &AdVisibilityUsecase{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}
}

// approvedSnapshot holds every approved request with End >= TakenAt.
// Any later instant only needs a subset of it, so the visibility rule is
// always applied against the live clock, never the snapshot time.
// Generation is the invalidation count read before the store query; a
// snapshot whose generation is no longer current is ignored.
type approvedSnapshot struct {
	TakenAt    time.Time          `json:"takenAt"`
	Generation int64              `json:"generation"`
	Approved   []domain.AdRequest `json:"approved"`
}

// ActiveNow returns approved ads with start <= now < end, earliest start first.
func (uc *AdVisibilityUsecase) ActiveNow(ctx context.Context) ([]domain.PublicAd, error) {
	now := uc.now()

	var active []domain.AdRequest
	if uc.cache == nil {
		recs, err := uc.repo.FindActiveAt(ctx, now)
		if err != nil {
			return nil, err
		}
		active = recs
	} else {
		approved, err := uc.snapshot(ctx, now)
		if err != nil {
			return nil, err
		}
		for i := range approved {
			if approved[i].IsVisibleAt(now) {
				active = append(active, approved[i])
			}
		}
	}

	ads := make([]domain.PublicAd, 0, len(active))
	for i := range active {
		ads = append(ads, active[i].ToPublic())
	}
	return ads, nil
}

// UnavailableWindows returns the intervals of approved ads that have not ended.
func (uc *AdVisibilityUsecase) UnavailableWindows(ctx context.Context) ([]domain.Interval, error) {
	now := uc.now()
	if uc.cache == nil {
		return uc.repo.FindUnavailableWindows(ctx, now)
	}

	approved, err := uc.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	windows := make([]domain.Interval, 0, len(approved))
	for i := range approved {
		if !approved[i].EndDate.Before(now) {
			windows = append(windows, approved[i].Interval())
		}
	}
	return windows, nil
}

// Invalidate drops the cached snapshot. Called after every status change.
// Bumping the generation also voids a snapshot a concurrent reader built
// from pre-change data and writes after this call.
func (uc *AdVisibilityUsecase) Invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if _, err := uc.cache.Incr(ctx, cache.KeyScheduleGeneration); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Failed to bump approved schedule generation")
	}
	if err := uc.cache.Delete(ctx, cache.KeyApprovedSchedule); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Failed to invalidate approved schedule cache")
	}
}

func (uc *AdVisibilityUsecase) snapshot(ctx context.Context, now time.Time) ([]domain.AdRequest, error) {
	log := logger.WithContext(ctx)

	// Without a readable generation no snapshot can be trusted or written.
	gen, err := uc.cache.Counter(ctx, cache.KeyScheduleGeneration)
	if err != nil {
		log.Warn().Err(err).Msg("Approved schedule generation read failed")
		return uc.repo.FindApprovedEndingAfter(ctx, now)
	}

	var snap approvedSnapshot
	found, err := uc.cache.Get(ctx, cache.KeyApprovedSchedule, &snap)
	if err != nil {
		log.Warn().Err(err).Msg("Approved schedule cache read failed")
	}
	// A snapshot from the future (clock skew between instances) may miss records.
	if found && err == nil && snap.Generation == gen && !snap.TakenAt.After(now) {
		return snap.Approved, nil
	}

	approved, err := uc.repo.FindApprovedEndingAfter(ctx, now)
	if err != nil {
		return nil, err
	}

	snap = approvedSnapshot{TakenAt: now, Generation: gen, Approved: approved}
	if err := uc.cache.Set(ctx, cache.KeyApprovedSchedule, snap, uc.ttl); err != nil {
		log.Warn().Err(err).Msg("Approved schedule cache write failed")
	}
	return approved, nil
}
