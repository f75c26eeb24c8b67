package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mholden/ticklist/internal/auth"
	"github.com/mholden/ticklist/internal/store"
)

// RequireAuth validates the bearer token, resolves the user it names, and
// populates the request's AuthContext. Requests without a valid token for
// an existing user never reach the wrapped handler.
func RequireAuth(jwtManager *auth.JWTManager, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			username, err := jwtManager.Validate(token)
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			user, err := users.GetByUsername(username)
			if err != nil || user == nil {
				unauthorized(w, "could not validate credentials")
				return
			}

			ac := auth.AuthContext{
				UserID:   user.ID,
				Username: user.Username,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
