package middleware

import (
	"context"
	"errors"
	"net/http"

	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/utils"
)

// AuthMiddleware resolves the principal from the access token.
// The account service issues tokens; role claims are trusted as signed.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if errors.Is(err, utils.ErrNoToken) {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}
		if err != nil || claims.UserID == "" {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		user := &domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the principal set by AuthMiddleware, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(domain.UserContextKey).(*domain.User)
	return user
}
