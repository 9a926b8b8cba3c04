package middleware

import (
	"net/http"

	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/utils"
)

// AdminMiddleware lets admins and super-admins through.
// MUST be used AFTER AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return requireRole(next, (*domain.User).IsAdmin, "Forbidden: Admins only")
}

// SuperAdminMiddleware guards the moderation decisions.
// MUST be used AFTER AuthMiddleware.
func SuperAdminMiddleware(next http.Handler) http.Handler {
	return requireRole(next, (*domain.User).IsSuperAdmin, "Forbidden: Super-admins only")
}

func requireRole(next http.Handler, allowed func(*domain.User) bool, denied string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No user found in context")
			return
		}

		if !allowed(user) {
			utils.WriteError(w, http.StatusForbidden, denied)
			return
		}

		next.ServeHTTP(w, r)
	})
}
