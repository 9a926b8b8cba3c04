package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cinescope-backend/config"
	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/logger"
	"cinescope-backend/pkg/metrics"
	"cinescope-backend/pkg/utils"

	"github.com/google/uuid"
)

// CreativeStore keeps uploaded banner images. Implemented by pkg/storage.
type CreativeStore interface {
	UploadCreative(ctx context.Context, file io.Reader) (string, error)
	DeleteCreative(ctx context.Context, fileURL string) error
}

// AdBookingUsecase runs the ad request lifecycle: submit, decide, deactivate
// and the moderation listings.
type AdBookingUsecase struct {
	repo       domain.AdRequestRepository
	txManager  domain.TransactionManager
	creatives  CreativeStore // nil when uploads are disabled
	visibility *AdVisibilityUsecase
	cfg        *config.Config
	now        func() time.Time
}

func NewAdBookingUsecase(
	repo domain.AdRequestRepository,
	txManager domain.TransactionManager,
	creatives CreativeStore,
	visibility *AdVisibilityUsecase,
	cfg *config.Config,
) *AdBookingUsecase {
	return &AdBookingUsecase{
		repo:       repo,
		txManager:  txManager,
		creatives:  creatives,
		visibility: visibility,
		cfg:        cfg,
		now:        time.Now,
	}
}

// SubmitAdRequestInput is a booking request as received from the form.
// Dates are ISO-8601 strings.
type SubmitAdRequestInput struct {
	ImageURL  string
	ImageFile io.Reader // nil when no file was sent
	LinkURL   string
	StartDate string
	EndDate   string
}

// Submit validates a booking request, rejects it when it overlaps an approved
// ad and stores it as pending.
func (uc *AdBookingUsecase) Submit(ctx context.Context, actor *domain.User, input SubmitAdRequestInput) (*domain.AdRequest, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}

	req, err := uc.validateSubmission(input)
	if err != nil {
		return nil, err
	}

	conflicts, err := uc.repo.FindApprovedOverlapping(ctx, req.Interval(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to check schedule: %w", err)
	}
	if len(conflicts) > 0 {
		metrics.AdConflicts.WithLabelValues("submit").Inc()
		return nil, &domain.SchedulingConflictError{Conflicts: conflicts}
	}

	// Upload only once the request is known to be acceptable.
	if input.ImageFile != nil {
		url, err := uc.creatives.UploadCreative(ctx, input.ImageFile)
		if err != nil {
			if errors.Is(err, utils.ErrInvalidImage) {
				return nil, domain.NewValidationError("imageFile", "image file must be a valid image")
			}
			return nil, fmt.Errorf("failed to upload creative: %w", err)
		}
		req.ImageFile = url
	}

	now := uc.now()
	req.ID = uuid.NewString()
	req.RequesterID = actor.ID
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := uc.repo.Create(ctx, req); err != nil {
		if req.ImageFile != "" {
			if delErr := uc.creatives.DeleteCreative(ctx, req.ImageFile); delErr != nil {
				logger.WithContext(ctx).Warn().Err(delErr).Str("file", req.ImageFile).Msg("Failed to remove orphaned creative")
			}
		}
		return nil, fmt.Errorf("failed to create ad request: %w", err)
	}

	metrics.AdSubmissions.Inc()
	logger.WithContext(ctx).Info().
		Str("ad_request_id", req.ID).
		Str("requester_id", req.RequesterID).
		Time("start", req.StartDate).
		Time("end", req.EndDate).
		Msg("Ad request submitted")

	return req, nil
}

func (uc *AdBookingUsecase) validateSubmission(input SubmitAdRequestInput) (*domain.AdRequest, error) {
	imageURL := strings.TrimSpace(input.ImageURL)
	hasFile := input.ImageFile != nil

	switch {
	case imageURL == "" && !hasFile:
		return nil, domain.NewValidationError("imageUrl", "an image URL or an image file is required")
	case imageURL != "" && hasFile:
		return nil, domain.NewValidationError("imageUrl", "provide either an image URL or an image file, not both")
	case hasFile && uc.creatives == nil:
		return nil, domain.NewValidationError("imageFile", "image uploads are not enabled, use an image URL")
	}

	linkURL := strings.TrimSpace(input.LinkURL)
	if linkURL == "" {
		return nil, domain.NewValidationError("linkUrl", "link URL is required")
	}

	start, err := utils.ParseISOTime(input.StartDate)
	if err != nil {
		return nil, domain.NewValidationError("startDate", "start date must be a valid ISO-8601 date")
	}
	end, err := utils.ParseISOTime(input.EndDate)
	if err != nil {
		return nil, domain.NewValidationError("endDate", "end date must be a valid ISO-8601 date")
	}
	if !end.After(start) {
		return nil, domain.NewValidationError("endDate", "end date must be after start date")
	}

	// The grace window absorbs client and server clock or timezone skew.
	if start.Before(uc.now().Add(-uc.cfg.AdStartGrace)) {
		return nil, domain.NewValidationError("startDate", "start date cannot be in the past")
	}

	return &domain.AdRequest{
		ImageURL:  imageURL,
		LinkURL:   linkURL,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// Decide approves or declines a pending request. Approval re-checks the
// schedule under the schedule lock so two overlapping requests cannot both win.
func (uc *AdBookingUsecase) Decide(ctx context.Context, actor *domain.User, id, decision, message string) (*domain.AdRequest, error) {
	if !actor.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}

	var target domain.AdStatus
	switch decision {
	case domain.DecisionApprove:
		target = domain.AdStatusApproved
	case domain.DecisionDecline:
		target = domain.AdStatusDeclined
	default:
		return nil, domain.NewValidationError("decision", `decision must be "approve" or "decline"`)
	}

	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.AdStatusPending {
		return nil, domain.ErrInvalidTransition
	}

	var updated *domain.AdRequest
	if target == domain.AdStatusDeclined {
		updated, err = uc.repo.Transition(ctx, id, domain.AdStatusPending, target, message, uc.now())
	} else {
		err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
			if err := uc.repo.LockSchedule(txCtx); err != nil {
				return err
			}
			conflicts, err := uc.repo.FindApprovedOverlapping(txCtx, req.Interval(), req.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				metrics.AdConflicts.WithLabelValues("approve").Inc()
				return &domain.SchedulingConflictError{Conflicts: conflicts}
			}
			updated, err = uc.repo.Transition(txCtx, id, domain.AdStatusPending, target, message, uc.now())
			return err
		})
	}
	if err != nil {
		return nil, err
	}

	uc.afterTransition(ctx, actor, domain.AdStatusPending, updated)
	return updated, nil
}

// Deactivate takes down an approved ad that is currently showing, which frees
// its window for new bookings.
func (uc *AdBookingUsecase) Deactivate(ctx context.Context, actor *domain.User, id, message string) (*domain.AdRequest, error) {
	if !actor.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}

	req, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.AdStatusApproved {
		return nil, domain.ErrInvalidTransition
	}

	now := uc.now()
	if !req.Interval().Contains(now) {
		return nil, domain.ErrNotCurrentlyActive
	}

	updated, err := uc.repo.Transition(ctx, id, domain.AdStatusApproved, domain.AdStatusDeactivated, message, now)
	if err != nil {
		return nil, err
	}

	uc.afterTransition(ctx, actor, domain.AdStatusApproved, updated)
	return updated, nil
}

func (uc *AdBookingUsecase) afterTransition(ctx context.Context, actor *domain.User, from domain.AdStatus, updated *domain.AdRequest) {
	uc.visibility.Invalidate(ctx)
	metrics.AdTransitions.WithLabelValues(string(updated.Status)).Inc()
	logger.AdTransition(ctx, updated.ID, string(from), string(updated.Status), actor.ID)
}

// ListRecent returns the dashboard list: pending first, capped at AdRecentLimit.
func (uc *AdBookingUsecase) ListRecent(ctx context.Context, actor *domain.User) ([]domain.AdRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.repo.FindRecent(ctx, uc.cfg.AdRecentLimit)
}

// ListHistory returns requests created within AdHistoryWindow, newest first.
func (uc *AdBookingUsecase) ListHistory(ctx context.Context, actor *domain.User) ([]domain.AdRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.repo.FindCreatedSince(ctx, uc.now().Add(-uc.cfg.AdHistoryWindow))
}

// ListMine returns the caller's own requests, newest first.
func (uc *AdBookingUsecase) ListMine(ctx context.Context, actor *domain.User) ([]domain.AdRequest, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}
	return uc.repo.FindByRequester(ctx, actor.ID)
}

func (uc *AdBookingUsecase) Get(ctx context.Context, actor *domain.User, id string) (*domain.AdRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.repo.GetByID(ctx, id)
}
