package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinescope-backend/internal/domain"
	"cinescope-backend/internal/repository/memory"
	"cinescope-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenCache fails every call; visibility must fall back to the store.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("cache down")
}

func (brokenCache) Delete(context.Context, ...string) error {
	return errors.New("cache down")
}

func (brokenCache) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("cache down")
}

func (brokenCache) Counter(context.Context, string) (int64, error) {
	return 0, errors.New("cache down")
}

var _ cache.CacheService = brokenCache{}

// gatedRepo pauses FindApprovedEndingAfter once armed, so a moderation
// action can land between a reader's store query and its cache write.
type gatedRepo struct {
	*memory.AdRequestRepository
	armed   chan struct{}
	entered chan struct{}
	release chan struct{}
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{
		AdRequestRepository: memory.NewAdRequestRepository(),
		armed:               make(chan struct{}, 1),
		entered:             make(chan struct{}),
		release:             make(chan struct{}),
	}
}

func (g *gatedRepo) FindApprovedEndingAfter(ctx context.Context, now time.Time) ([]domain.AdRequest, error) {
	recs, err := g.AdRequestRepository.FindApprovedEndingAfter(ctx, now)
	select {
	case <-g.armed:
		close(g.entered)
		<-g.release
	default:
	}
	return recs, err
}

func activeIDs(ads []domain.PublicAd) []string {
	out := make([]string, 0, len(ads))
	for _, a := range ads {
		out = append(out, a.ID)
	}
	return out
}

func TestVisibilityRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	req := f.submit(t, days(0), days(2))
	f.approve(t, req.ID)
	win := domain.Interval{Start: days(0), End: days(2)}

	tests := []struct {
		name        string
		now         time.Time
		active      bool
		unavailable bool
	}{
		{"before start", days(0).Add(-time.Second), false, true},
		{"at start", days(0), true, true},
		{"inside", days(1), true, true},
		{"at end", days(2), false, true},
		{"after end", days(2).Add(time.Second), false, false},
	}

	// Walk the clock forward against one cached snapshot.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.clock.Set(tt.now)

			active, err := f.visibility.ActiveNow(ctx)
			require.NoError(t, err)
			if tt.active {
				assert.Equal(t, []string{req.ID}, activeIDs(active))
			} else {
				assert.Empty(t, active)
			}

			windows, err := f.visibility.UnavailableWindows(ctx)
			require.NoError(t, err)
			if tt.unavailable {
				assert.Equal(t, []domain.Interval{win}, windows)
			} else {
				assert.Empty(t, windows)
			}
		})
	}
}

func TestVisibilityNeverShowsUnapproved(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	pending := f.submit(t, days(0), days(1))
	declined := f.submit(t, days(1), days(2))
	_, err := f.booking.Decide(ctx, superAdmin, declined.ID, domain.DecisionDecline, "")
	require.NoError(t, err)
	deactivated := f.submit(t, days(2), days(3))
	f.approve(t, deactivated.ID)
	f.clock.Set(days(2).Add(time.Hour))
	_, err = f.booking.Deactivate(ctx, superAdmin, deactivated.ID, "")
	require.NoError(t, err)

	for _, now := range []time.Time{days(0).Add(time.Hour), days(1).Add(time.Hour), days(2).Add(2 * time.Hour)} {
		f.clock.Set(now)
		active, err := f.visibility.ActiveNow(ctx)
		require.NoError(t, err)
		assert.Empty(t, active, "pending %s leaked", pending.ID)
	}

	windows, err := f.visibility.UnavailableWindows(ctx)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestVisibilitySeesApprovalAfterCaching(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	req := f.submit(t, days(0), days(1))

	windows, err := f.visibility.UnavailableWindows(ctx)
	require.NoError(t, err)
	assert.Empty(t, windows)

	f.approve(t, req.ID)

	windows, err = f.visibility.UnavailableWindows(ctx)
	require.NoError(t, err)
	assert.Len(t, windows, 1)
}

func TestStaleReaderCannotRepopulateCache(t *testing.T) {
	repo := newGatedRepo()
	f := newFixtureWithRepo(t, repo, nil)
	ctx := context.Background()

	req := f.submit(t, days(0), days(2))
	f.approve(t, req.ID)
	f.clock.Set(days(1))

	repo.armed <- struct{}{}
	type result struct {
		ads []domain.PublicAd
		err error
	}
	done := make(chan result, 1)
	go func() {
		ads, err := f.visibility.ActiveNow(ctx)
		done <- result{ads, err}
	}()

	// The reader holds pre-deactivation data while the takedown commits.
	<-repo.entered
	_, err := f.booking.Deactivate(ctx, superAdmin, req.ID, "")
	require.NoError(t, err)
	close(repo.release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Equal(t, []string{req.ID}, activeIDs(stale.ads))

	active, err := f.visibility.ActiveNow(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	windows, err := f.visibility.UnavailableWindows(ctx)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestActiveNowOrderedByStart(t *testing.T) {
	repo := memory.NewAdRequestRepository()
	ctx := context.Background()
	for _, r := range []domain.AdRequest{
		{ID: "late", ImageURL: "https://img/late", LinkURL: "https://l", StartDate: days(0).Add(time.Hour), EndDate: days(2)},
		{ID: "early", ImageURL: "https://img/early", LinkURL: "https://l", StartDate: days(0), EndDate: days(1)},
	} {
		require.NoError(t, repo.Create(ctx, &r))
		_, err := repo.Transition(ctx, r.ID, domain.AdStatusPending, domain.AdStatusApproved, "", jan10)
		require.NoError(t, err)
	}

	for _, c := range []cache.CacheService{nil, brokenCache{}} {
		uc := NewAdVisibilityUsecase(repo, c, time.Minute)
		uc.now = func() time.Time { return days(0).Add(2 * time.Hour) }

		active, err := uc.ActiveNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"early", "late"}, activeIDs(active))
		assert.Equal(t, "https://img/early", active[0].ImageURL)

		windows, err := uc.UnavailableWindows(ctx)
		require.NoError(t, err)
		assert.Len(t, windows, 2)
		uc.Invalidate(ctx)
	}
}
