package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cinescope-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRetention(f *fixture, creatives CreativeStore) *RetentionUsecase {
	uc := NewRetentionUsecase(f.repo, creatives, f.visibility, 30*24*time.Hour)
	uc.now = f.clock.Now
	return uc
}

func TestPurgeRemovesExpiredRecordsAndCreatives(t *testing.T) {
	creatives := new(mockCreativeStore)
	f := newFixture(t, creatives)
	ctx := context.Background()

	oldURL := "https://cdn.cinescope.test/ad-creatives/old.webp"
	creatives.On("UploadCreative", mock.Anything, mock.Anything).Return(oldURL, nil).Once()
	in := window(days(0), days(1))
	in.ImageURL = ""
	in.ImageFile = strings.NewReader("png")
	old, err := f.booking.Submit(ctx, requester, in)
	require.NoError(t, err)
	f.approve(t, old.ID)

	f.clock.Set(days(31))
	fresh := f.submit(t, days(31), days(32))

	// Prime the cache with the soon-to-be-purged approval
	f.clock.Set(days(0).Add(time.Hour))
	active, err := f.visibility.ActiveNow(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	f.clock.Set(days(31).Add(time.Hour))
	creatives.On("DeleteCreative", mock.Anything, oldURL).Return(errors.New("bucket unavailable"))

	n, err := newRetention(f, creatives).Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	creatives.AssertExpectations(t)

	_, err = f.repo.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)

	f.clock.Set(days(0).Add(time.Hour))
	active, err = f.visibility.ActiveNow(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPurgeWithNothingExpired(t *testing.T) {
	f := newFixture(t, nil)
	f.submit(t, days(0), days(1))

	n, err := newRetention(f, nil).Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRetentionWorkerPurgesOnStart(t *testing.T) {
	f := newFixture(t, nil)
	req := f.submit(t, days(0), days(1))
	f.clock.Set(days(45))

	w := NewRetentionWorker(context.Background(), newRetention(f, nil), time.Hour)
	defer w.Shutdown()

	require.Eventually(t, func() bool {
		_, err := f.repo.GetByID(context.Background(), req.ID)
		return errors.Is(err, domain.ErrNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestRetentionWorkerShutdownIsPrompt(t *testing.T) {
	f := newFixture(t, nil)
	w := NewRetentionWorker(context.Background(), newRetention(f, nil), time.Hour)

	done := make(chan struct{})
	go func() {
		w.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
