// Package memory is an in-process ad request store for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"cinescope-backend/internal/domain"
)

type AdRequestRepository struct {
	mu      sync.RWMutex
	records map[string]domain.AdRequest
}

func NewAdRequestRepository() *AdRequestRepository {
	return &AdRequestRepository{records: make(map[string]domain.AdRequest)}
}

var _ domain.AdRequestRepository = (*AdRequestRepository)(nil)

func (r *AdRequestRepository) Create(_ context.Context, req *domain.AdRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[req.ID]; exists {
		return domain.NewValidationError("id", "ad request already exists")
	}
	if err := req.CheckShape(); err != nil {
		return err
	}
	req.Status = domain.AdStatusPending
	r.records[req.ID] = clone(*req)
	return nil
}

func (r *AdRequestRepository) GetByID(_ context.Context, id string) (*domain.AdRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(rec)
	return &out, nil
}

func (r *AdRequestRepository) FindApprovedOverlapping(_ context.Context, window domain.Interval, excludeID string) ([]domain.AdRequest, error) {
	approved := r.filter(func(a domain.AdRequest) bool { return a.Status == domain.AdStatusApproved })
	_, conflicts := domain.FindOverlaps(window, approved, excludeID)
	sortByStart(conflicts)
	return conflicts, nil
}

func (r *AdRequestRepository) FindActiveAt(_ context.Context, now time.Time) ([]domain.AdRequest, error) {
	active := r.filter(func(a domain.AdRequest) bool { return a.IsVisibleAt(now) })
	sortByStart(active)
	return active, nil
}

func (r *AdRequestRepository) FindUnavailableWindows(ctx context.Context, now time.Time) ([]domain.Interval, error) {
	approved, _ := r.FindApprovedEndingAfter(ctx, now)
	windows := make([]domain.Interval, 0, len(approved))
	for _, a := range approved {
		windows = append(windows, a.Interval())
	}
	return windows, nil
}

func (r *AdRequestRepository) FindApprovedEndingAfter(_ context.Context, now time.Time) ([]domain.AdRequest, error) {
	approved := r.filter(func(a domain.AdRequest) bool {
		return a.Status == domain.AdStatusApproved && !a.EndDate.Before(now)
	})
	sortByStart(approved)
	return approved, nil
}

func (r *AdRequestRepository) FindRecent(_ context.Context, limit int) ([]domain.AdRequest, error) {
	all := r.filter(func(domain.AdRequest) bool { return true })
	slices.SortFunc(all, func(a, b domain.AdRequest) int {
		aPending, bPending := a.Status == domain.AdStatusPending, b.Status == domain.AdStatusPending
		if aPending != bPending {
			if aPending {
				return -1
			}
			return 1
		}
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *AdRequestRepository) FindCreatedSince(_ context.Context, since time.Time) ([]domain.AdRequest, error) {
	recs := r.filter(func(a domain.AdRequest) bool { return !a.CreatedAt.Before(since) })
	sortNewestFirst(recs)
	return recs, nil
}

func (r *AdRequestRepository) FindByRequester(_ context.Context, userID string) ([]domain.AdRequest, error) {
	recs := r.filter(func(a domain.AdRequest) bool { return a.RequesterID == userID })
	sortNewestFirst(recs)
	return recs, nil
}

func (r *AdRequestRepository) Transition(_ context.Context, id string, from, to domain.AdStatus, message string, at time.Time) (*domain.AdRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec.Status != from || !from.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}

	resolved := at
	rec.Status = to
	rec.ResponseMessage = message
	rec.ResolvedAt = &resolved
	rec.UpdatedAt = at
	r.records[id] = rec

	out := clone(rec)
	return &out, nil
}

// LockSchedule is a no-op: TransactionManager.Do already runs one approval at a time.
func (r *AdRequestRepository) LockSchedule(context.Context) error {
	return nil
}

func (r *AdRequestRepository) DeleteCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.AdRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted []domain.AdRequest
	for id, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			deleted = append(deleted, clone(rec))
			delete(r.records, id)
		}
	}
	sortNewestFirst(deleted)
	return deleted, nil
}

func (r *AdRequestRepository) filter(keep func(domain.AdRequest) bool) []domain.AdRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.AdRequest
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, clone(rec))
		}
	}
	return out
}

func clone(a domain.AdRequest) domain.AdRequest {
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		a.ResolvedAt = &t
	}
	return a
}

func sortByStart(recs []domain.AdRequest) {
	slices.SortFunc(recs, func(a, b domain.AdRequest) int {
		return cmp.Or(a.StartDate.Compare(b.StartDate), cmp.Compare(a.ID, b.ID))
	})
}

func sortNewestFirst(recs []domain.AdRequest) {
	slices.SortFunc(recs, func(a, b domain.AdRequest) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
}
