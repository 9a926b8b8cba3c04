package v1

import (
	"net/http"
	"strings"

	"cinescope-backend/internal/delivery/http/middleware"
	"cinescope-backend/internal/usecase"
	"cinescope-backend/pkg/utils"
)

// AdRequestHandler serves banner booking, moderation and the public banner feed.
type AdRequestHandler struct {
	booking       *usecase.AdBookingUsecase
	visibility    *usecase.AdVisibilityUsecase
	maxUploadSize int64
}

func NewAdRequestHandler(booking *usecase.AdBookingUsecase, visibility *usecase.AdVisibilityUsecase, maxUploadSizeMB int64) *AdRequestHandler {
	return &AdRequestHandler{
		booking:       booking,
		visibility:    visibility,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

type submitAdRequestBody struct {
	ImageURL  string `json:"imageUrl"`
	LinkURL   string `json:"linkUrl"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type decisionBody struct {
	Decision        string `json:"decision"`
	ResponseMessage string `json:"responseMessage"`
}

type deactivateBody struct {
	Message string `json:"message"`
}

// Submit creates a pending ad request. Accepts JSON with imageUrl, or
// multipart/form-data with an imageFile part.
// POST /api/v1/ad-requests
func (h *AdRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubmitAdRequestInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		form, err := h.parseCreativeForm(w, r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		defer form.Close()
		input = form.input
	} else {
		var body submitAdRequestBody
		if err := utils.DecodeJSON(r, &body); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		input = usecase.SubmitAdRequestInput{
			ImageURL:  body.ImageURL,
			LinkURL:   body.LinkURL,
			StartDate: body.StartDate,
			EndDate:   body.EndDate,
		}
	}

	req, err := h.booking.Submit(r.Context(), middleware.CurrentUser(r.Context()), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "Ad request submitted and awaiting review", utils.Envelope{"adRequest": req})
}

// ListRecent returns the moderation dashboard list, pending first.
// GET /api/v1/ad-requests
func (h *AdRequestHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.booking.ListRecent(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"adRequests": reqs})
}

// ListHistory returns requests created in the history window.
// GET /api/v1/ad-requests/history
func (h *AdRequestHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.booking.ListHistory(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"adRequests": reqs})
}

// ListMine returns the caller's own requests.
// GET /api/v1/ad-requests/me
func (h *AdRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.booking.ListMine(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"adRequests": reqs})
}

// Get returns one request for moderators.
// GET /api/v1/ad-requests/{id}
func (h *AdRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.booking.Get(r.Context(), middleware.CurrentUser(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"adRequest": req})
}

// Decide approves or declines a pending request.
// POST /api/v1/ad-requests/{id}/decision
func (h *AdRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.booking.Decide(r.Context(), middleware.CurrentUser(r.Context()), r.PathValue("id"), body.Decision, body.ResponseMessage)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Ad request "+string(req.Status), utils.Envelope{"adRequest": req})
}

// Deactivate takes a currently showing ad down.
// POST /api/v1/ad-requests/{id}/deactivate
func (h *AdRequestHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	var body deactivateBody
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.booking.Deactivate(r.Context(), middleware.CurrentUser(r.Context()), r.PathValue("id"), body.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Ad deactivated", utils.Envelope{"adRequest": req})
}

// Active is the public banner feed.
// GET /api/v1/ad-requests/active
func (h *AdRequestHandler) Active(w http.ResponseWriter, r *http.Request) {
	ads, err := h.visibility.ActiveNow(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"ads": ads})
}

// UnavailableDates lists windows the booking calendar should block.
// GET /api/v1/ad-requests/unavailable-dates
func (h *AdRequestHandler) UnavailableDates(w http.ResponseWriter, r *http.Request) {
	windows, err := h.visibility.UnavailableWindows(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{"unavailableDates": windows})
}
