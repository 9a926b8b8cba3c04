package pgrepo

import (
	"context"
	"errors"
	"time"

	"cinescope-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// pgerrcode.ExclusionViolation
	exclusionViolation = "23P01"
	// pgerrcode.CheckViolation
	checkViolation = "23514"
	// pgerrcode.UniqueViolation
	uniqueViolation = "23505"

	// Key for pg_advisory_xact_lock, shared by every approval of the banner slot.
	scheduleLockKey int64 = 0x61645f736c6f74
)

const adRequestColumns = `id::text, requester_id, image_url, image_file, link_url, start_at, end_at,
	status, response_message, resolved_at, created_at, updated_at`

type adRequestRepository struct {
	db *pgxpool.Pool
}

func NewAdRequestRepository(db *pgxpool.Pool) domain.AdRequestRepository {
	return &adRequestRepository{db: db}
}

// --- Mappers ---

func scanAdRequest(row pgx.Row) (*domain.AdRequest, error) {
	var a domain.AdRequest
	var status string
	err := row.Scan(
		&a.ID, &a.RequesterID, &a.ImageURL, &a.ImageFile, &a.LinkURL,
		&a.StartDate, &a.EndDate, &status, &a.ResponseMessage, &a.ResolvedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AdStatus(status)
	a.StartDate = a.StartDate.UTC()
	a.EndDate = a.EndDate.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if a.ResolvedAt != nil {
		t := a.ResolvedAt.UTC()
		a.ResolvedAt = &t
	}
	return &a, nil
}

func (r *adRequestRepository) list(ctx context.Context, sql string, args ...any) ([]domain.AdRequest, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AdRequest{}
	for rows.Next() {
		a, err := scanAdRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// --- Writes ---

func (r *adRequestRepository) Create(ctx context.Context, req *domain.AdRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = domain.AdStatusPending

	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO ad_requests (id, requester_id, image_url, image_file, link_url, start_at, end_at,
			status, response_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		req.ID, req.RequesterID, req.ImageURL, req.ImageFile, req.LinkURL, req.StartDate, req.EndDate,
		string(req.Status), req.ResponseMessage, req.CreatedAt, req.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if verr := createViolation(req, pgErr); verr != nil {
			return verr
		}
	}
	return err
}

// createViolation turns constraint failures on insert into validation errors.
// It returns nil for anything that is not the caller's fault.
func createViolation(req *domain.AdRequest, pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case uniqueViolation:
		return domain.NewValidationError("id", "ad request already exists")
	case checkViolation:
		if err := req.CheckShape(); err != nil {
			return err
		}
		switch pgErr.ConstraintName {
		case "ad_requests_window_chk":
			return domain.NewValidationError("endDate", "end date must be after start date")
		case "ad_requests_creative_chk":
			return domain.NewValidationError("imageUrl", "provide either an image URL or an image file, not both")
		}
	}
	return nil
}

func (r *adRequestRepository) Transition(ctx context.Context, id string, from, to domain.AdStatus, message string, at time.Time) (*domain.AdRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if !from.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}

	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE ad_requests
		SET status = $3, response_message = $4, resolved_at = $5, updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING `+adRequestColumns,
		id, string(from), string(to), message, at,
	)
	updated, err := scanAdRequest(row)
	if err == nil {
		return updated, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return nil, &domain.SchedulingConflictError{}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Nothing matched: either the id is unknown or the status moved on.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvalidTransition
}

func (r *adRequestRepository) LockSchedule(ctx context.Context) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); !ok {
		return errors.New("LockSchedule called outside a transaction")
	}
	_, err := conn(ctx, r.db).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, scheduleLockKey)
	return err
}

func (r *adRequestRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.AdRequest, error) {
	return r.list(ctx, `
		DELETE FROM ad_requests WHERE created_at < $1
		RETURNING `+adRequestColumns, cutoff)
}

// --- Reads ---

func (r *adRequestRepository) GetByID(ctx context.Context, id string) (*domain.AdRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+adRequestColumns+` FROM ad_requests WHERE id = $1`, id)
	a, err := scanAdRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

func (r *adRequestRepository) FindApprovedOverlapping(ctx context.Context, window domain.Interval, excludeID string) ([]domain.AdRequest, error) {
	// '' never equals a uuid rendered as text, so an empty excludeID excludes nothing.
	return r.list(ctx, `
		SELECT `+adRequestColumns+` FROM ad_requests
		WHERE status = 'approved' AND start_at < $2 AND $1 < end_at AND id::text <> $3
		ORDER BY start_at, id`,
		window.Start, window.End, excludeID)
}

func (r *adRequestRepository) FindActiveAt(ctx context.Context, now time.Time) ([]domain.AdRequest, error) {
	return r.list(ctx, `
		SELECT `+adRequestColumns+` FROM ad_requests
		WHERE status = 'approved' AND start_at <= $1 AND $1 < end_at
		ORDER BY start_at, id`, now)
}

func (r *adRequestRepository) FindUnavailableWindows(ctx context.Context, now time.Time) ([]domain.Interval, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT start_at, end_at FROM ad_requests
		WHERE status = 'approved' AND end_at >= $1
		ORDER BY start_at, id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := []domain.Interval{}
	for rows.Next() {
		var w domain.Interval
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, err
		}
		w.Start, w.End = w.Start.UTC(), w.End.UTC()
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *adRequestRepository) FindApprovedEndingAfter(ctx context.Context, now time.Time) ([]domain.AdRequest, error) {
	return r.list(ctx, `
		SELECT `+adRequestColumns+` FROM ad_requests
		WHERE status = 'approved' AND end_at >= $1
		ORDER BY start_at, id`, now)
}

func (r *adRequestRepository) FindRecent(ctx context.Context, limit int) ([]domain.AdRequest, error) {
	return r.list(ctx, `
		SELECT `+adRequestColumns+` FROM ad_requests
		ORDER BY (status = 'pending') DESC, created_at DESC, id
		LIMIT $1`, limit)
}

func (r *adRequestRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]domain.AdRequest, error) {
	return r.list(ctx, `
		SELECT `+adRequestColumns+` FROM ad_requests
		WHERE created_at >= $1
		ORDER BY created_at DESC, id`, since)
}

func (r *adRequestRepository) FindByRequester(ctx context.Context, userID string) ([]domain.AdRequest, error) {
	return r.list(ctx, `
		SELECT `+adRequestColumns+` FROM ad_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC, id`, userID)
}
