package memory

import (
	"context"
	"testing"
	"time"

	"cinescope-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *AdRequestRepository, id string, status domain.AdStatus, createdHoursAgo int, startDay, endDay int) {
	t.Helper()
	req := &domain.AdRequest{
		ID:          id,
		RequesterID: "user-" + id,
		ImageURL:    "https://img/" + id,
		LinkURL:     "https://link/" + id,
		StartDate:   base.AddDate(0, 0, startDay),
		EndDate:     base.AddDate(0, 0, endDay),
		CreatedAt:   base.Add(-time.Duration(createdHoursAgo) * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), req))
	if status == domain.AdStatusPending {
		return
	}
	from := domain.AdStatusPending
	if status == domain.AdStatusDeactivated {
		_, err := repo.Transition(context.Background(), id, from, domain.AdStatusApproved, "", base)
		require.NoError(t, err)
		from = domain.AdStatusApproved
	}
	_, err := repo.Transition(context.Background(), id, from, status, "", base)
	require.NoError(t, err)
}

func ids(recs []domain.AdRequest) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestFindRecentPendingFirst(t *testing.T) {
	repo := NewAdRequestRepository()
	seed(t, repo, "old-pending", domain.AdStatusPending, 50, 1, 2)
	seed(t, repo, "new-approved", domain.AdStatusApproved, 1, 3, 4)
	seed(t, repo, "new-pending", domain.AdStatusPending, 2, 5, 6)
	seed(t, repo, "declined", domain.AdStatusDeclined, 3, 7, 8)

	recent, err := repo.FindRecent(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"new-pending", "old-pending", "new-approved"}, ids(recent))
}

func TestSchedulingQueriesIgnoreUnapproved(t *testing.T) {
	ctx := context.Background()
	repo := NewAdRequestRepository()
	seed(t, repo, "approved", domain.AdStatusApproved, 1, 0, 2)
	seed(t, repo, "pending", domain.AdStatusPending, 1, 0, 2)
	seed(t, repo, "deactivated", domain.AdStatusDeactivated, 1, 0, 2)
	seed(t, repo, "past", domain.AdStatusApproved, 1, -5, -3)

	now := base.Add(12 * time.Hour)

	active, err := repo.FindActiveAt(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"approved"}, ids(active))

	windows, err := repo.FindUnavailableWindows(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []domain.Interval{{Start: base, End: base.AddDate(0, 0, 2)}}, windows)

	overlapping, err := repo.FindApprovedOverlapping(ctx, domain.Interval{Start: base.AddDate(0, 0, -4), End: base.AddDate(0, 0, 1)}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"past", "approved"}, ids(overlapping))

	overlapping, err = repo.FindApprovedOverlapping(ctx, domain.Interval{Start: base, End: base.AddDate(0, 0, 1)}, "approved")
	require.NoError(t, err)
	assert.Empty(t, overlapping)
}

func TestTransitionGuards(t *testing.T) {
	ctx := context.Background()
	repo := NewAdRequestRepository()
	seed(t, repo, "a", domain.AdStatusPending, 1, 0, 1)

	_, err := repo.Transition(ctx, "missing", domain.AdStatusPending, domain.AdStatusApproved, "", base)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Transition(ctx, "a", domain.AdStatusApproved, domain.AdStatusDeactivated, "", base)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	updated, err := repo.Transition(ctx, "a", domain.AdStatusPending, domain.AdStatusDeclined, "out of policy", base)
	require.NoError(t, err)
	assert.Equal(t, domain.AdStatusDeclined, updated.Status)
	assert.Equal(t, "out of policy", updated.ResponseMessage)
	require.NotNil(t, updated.ResolvedAt)

	// returned copies are detached from storage
	*updated.ResolvedAt = time.Time{}
	stored, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, stored.ResolvedAt.Equal(base))
}

func TestDeleteCreatedBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewAdRequestRepository()
	seed(t, repo, "ancient", domain.AdStatusApproved, 24*40, 0, 1)
	seed(t, repo, "fresh", domain.AdStatusPending, 1, 0, 1)

	deleted, err := repo.DeleteCreatedBefore(ctx, base.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, []string{"ancient"}, ids(deleted))

	_, err = repo.GetByID(ctx, "ancient")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(ctx, "fresh")
	assert.NoError(t, err)
}

func TestCreateRejectsMalformedRecords(t *testing.T) {
	repo := NewAdRequestRepository()
	ctx := context.Background()

	tests := []struct {
		name  string
		req   domain.AdRequest
		field string
	}{
		{"empty window", domain.AdRequest{ID: "w", ImageURL: "https://img/w", StartDate: base, EndDate: base}, "endDate"},
		{"no creative", domain.AdRequest{ID: "n", StartDate: base, EndDate: base.AddDate(0, 0, 1)}, "imageUrl"},
		{"both creatives", domain.AdRequest{ID: "b", ImageURL: "https://img/b", ImageFile: "https://cdn/b", StartDate: base, EndDate: base.AddDate(0, 0, 1)}, "imageUrl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, &tt.req)
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			_, err = repo.GetByID(ctx, tt.req.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}
