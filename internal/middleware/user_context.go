package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Mohzhal/absensi/config"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/go-chi/jwtauth/v5"
)

// GetUserIDFromContext returns the authenticated user id stored by
// AddUserIDToContext.
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	if val := ctx.Value(config.UserIDKey); val != nil {
		if id, ok := val.(int); ok {
			return id, true
		}
	}
	return 0, false
}

// AddUserIDToContext extracts user_id from the verified JWT and puts it in
// the request context. Tokens minted by older app builds carried the id as
// a string, so both encodings are accepted.
func AddUserIDToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims := token.PrivateClaims()
			var userID int
			if rawID, ok := claims["user_id"]; ok {
				switch v := rawID.(type) {
				case float64:
					userID = int(v)
				case int:
					userID = v
				case string:
					if id, err := strconv.Atoi(v); err == nil {
						userID = id
					}
				}
			}
			if userID != 0 {
				ctx := context.WithValue(r.Context(), config.UserIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RoleOnly admits only requests whose token role is in the allowed set.
func RoleOnly(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Token tidak valid")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Klaim token tidak valid")
				return
			}

			raw, _ := claims["role"].(string)
			role, ok := models.ParseRole(raw)
			if !ok {
				response.RespondWithError(w, http.StatusForbidden, "Role tidak dikenali")
				return
			}

			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.RespondWithError(w, http.StatusForbidden, "Akses ditolak")
		})
	}
}
