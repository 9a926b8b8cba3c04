package v1

import (
	"net/http"
	"sort"

	"cinescope-backend/config"
	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/utils"
)

// ConfigHandler exposes the booking form's static options.
type ConfigHandler struct {
	cfg *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	creativeTypes := make([]string, 0, len(utils.AllowedCreativeTypes))
	for ct := range utils.AllowedCreativeTypes {
		creativeTypes = append(creativeTypes, ct)
	}
	sort.Strings(creativeTypes)

	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteSuccess(w, http.StatusOK, "", utils.Envelope{
		"adStatuses":      domain.AdStatuses,
		"decisions":       []string{domain.DecisionApprove, domain.DecisionDecline},
		"uploadsEnabled":  h.cfg.UploadsEnabled(),
		"maxUploadSizeMB": h.cfg.MaxUploadSizeMB,
		"creativeTypes":   creativeTypes,
		"startGraceHours": h.cfg.AdStartGrace.Hours(),
	})
}
