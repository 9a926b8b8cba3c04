package v1

import (
	"net/http"

	"cinescope-backend/internal/delivery/http/middleware"
)

// RegisterAdRequestRoutes mounts the ad request API on mux.
func RegisterAdRequestRoutes(mux *http.ServeMux, h *AdRequestHandler) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(fn))
	}
	superAdmin := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.SuperAdminMiddleware(fn))
	}

	// Public
	mux.HandleFunc("GET /api/v1/ad-requests/active", h.Active)
	mux.HandleFunc("GET /api/v1/ad-requests/unavailable-dates", h.UnavailableDates)

	// Authenticated users
	mux.Handle("POST /api/v1/ad-requests", authed(h.Submit))
	mux.Handle("GET /api/v1/ad-requests/me", authed(h.ListMine))

	// Moderation
	mux.Handle("GET /api/v1/ad-requests", admin(h.ListRecent))
	mux.Handle("GET /api/v1/ad-requests/history", admin(h.ListHistory))
	mux.Handle("GET /api/v1/ad-requests/{id}", admin(h.Get))
	mux.Handle("POST /api/v1/ad-requests/{id}/decision", superAdmin(h.Decide))
	mux.Handle("POST /api/v1/ad-requests/{id}/deactivate", superAdmin(h.Deactivate))
}

// RegisterHealthRoutes mounts liveness checks, including the root path load balancers probe.
func RegisterHealthRoutes(mux *http.ServeMux, h *HealthHandler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /health", h.Health)
}

// RegisterConfigRoutes mounts the public form options.
func RegisterConfigRoutes(mux *http.ServeMux, h *ConfigHandler) {
	mux.HandleFunc("GET /api/v1/config/enums", h.GetEnums)
}
