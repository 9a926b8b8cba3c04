package v1

import (
	"errors"
	"net/http"

	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/logger"
	"cinescope-backend/pkg/utils"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	var conflict *domain.SchedulingConflictError

	switch {
	case errors.As(err, &validation):
		utils.WriteErrorWith(w, http.StatusBadRequest, validation.Message, utils.Envelope{"field": validation.Field})
	case errors.As(err, &conflict):
		utils.WriteErrorWith(w, http.StatusBadRequest, conflict.Error(), utils.Envelope{"conflicts": conflict.Windows()})
	case errors.Is(err, domain.ErrNotCurrentlyActive):
		utils.WriteError(w, http.StatusBadRequest, "This ad is not currently active")
	case errors.Is(err, domain.ErrInvalidTransition):
		utils.WriteError(w, http.StatusBadRequest, "This ad request has already been resolved or cannot change to that status")
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Ad request not found")
	default:
		logger.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Ad request operation failed")
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again later")
	}
}
