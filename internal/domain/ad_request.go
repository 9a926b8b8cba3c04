package domain

import (
	"context"
	"strings"
	"time"
)

// AdRequest is a banner placement request for one half-open time window.
// Exactly one of ImageURL and ImageFile is set.
type AdRequest struct {
	ID              string     `json:"id"`
	RequesterID     string     `json:"requesterId"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	ImageFile       string     `json:"imageFile,omitempty"` // public URL of the uploaded object
	LinkURL         string     `json:"linkUrl"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	Status          AdStatus   `json:"status"`
	ResponseMessage string     `json:"responseMessage"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (a *AdRequest) Interval() Interval {
	return Interval{Start: a.StartDate, End: a.EndDate}
}

// CheckShape reports the first storage rule the record breaks: exactly one
// creative and a non-empty window.
func (a *AdRequest) CheckShape() error {
	hasURL := strings.TrimSpace(a.ImageURL) != ""
	hasFile := strings.TrimSpace(a.ImageFile) != ""
	switch {
	case !hasURL && !hasFile:
		return NewValidationError("imageUrl", "an image URL or an image file is required")
	case hasURL && hasFile:
		return NewValidationError("imageUrl", "provide either an image URL or an image file, not both")
	case !a.Interval().Valid():
		return NewValidationError("endDate", "end date must be after start date")
	}
	return nil
}

// Creative returns whichever image source the request carries.
func (a *AdRequest) Creative() string {
	if a.ImageFile != "" {
		return a.ImageFile
	}
	return a.ImageURL
}

// IsVisibleAt is the public visibility rule: approved and inside its window.
func (a *AdRequest) IsVisibleAt(now time.Time) bool {
	return a.Status == AdStatusApproved && a.Interval().Contains(now)
}

// PublicAd is what anonymous visitors get for the banner rotation.
type PublicAd struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"imageUrl"`
	LinkURL   string    `json:"linkUrl"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func (a *AdRequest) ToPublic() PublicAd {
	return PublicAd{
		ID:        a.ID,
		ImageURL:  a.Creative(),
		LinkURL:   a.LinkURL,
		StartDate: a.StartDate,
		EndDate:   a.EndDate,
	}
}

type AdRequestRepository interface {
	Create(ctx context.Context, req *AdRequest) error
	GetByID(ctx context.Context, id string) (*AdRequest, error)

	// Scheduling queries. Only approved records are ever returned.
	FindApprovedOverlapping(ctx context.Context, window Interval, excludeID string) ([]AdRequest, error)
	FindActiveAt(ctx context.Context, now time.Time) ([]AdRequest, error)
	FindUnavailableWindows(ctx context.Context, now time.Time) ([]Interval, error)
	FindApprovedEndingAfter(ctx context.Context, now time.Time) ([]AdRequest, error)

	// Moderation listings
	FindRecent(ctx context.Context, limit int) ([]AdRequest, error)
	FindCreatedSince(ctx context.Context, since time.Time) ([]AdRequest, error)
	FindByRequester(ctx context.Context, userID string) ([]AdRequest, error)

	// Transition moves id from -> to in one guarded update.
	// Returns ErrNotFound or ErrInvalidTransition and leaves the record untouched on failure.
	Transition(ctx context.Context, id string, from, to AdStatus, message string, at time.Time) (*AdRequest, error)

	// LockSchedule serialises approvals for the banner slot until the
	// surrounding transaction ends. Must be called inside TransactionManager.Do.
	LockSchedule(ctx context.Context) error

	// DeleteCreatedBefore purges old records regardless of status.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]AdRequest, error)
}

// TransactionManager runs fn in a single transaction.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
