package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/handlers"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

const sessionCookieName = "session_token"

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware resolves the caller from a bearer access token or, failing
// that, the session cookie.
type AuthMiddleware struct {
	sessions services.AuthServiceInterface
	tokens   services.TokenServiceInterface
	users    userLookup
}

func NewAuthMiddleware(sessions services.AuthServiceInterface, tokens services.TokenServiceInterface, users userLookup) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, tokens: tokens, users: users}
}

// bearerToken returns the token from an "Authorization: Bearer" header, or "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (m *AuthMiddleware) resolve(r *http.Request) *models.User {
	if token := bearerToken(r); token != "" && m.tokens != nil {
		userID, err := m.tokens.ParseAccess(token)
		if err != nil {
			return nil
		}
		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			return nil
		}
		return user
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	user, err := m.sessions.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// Authenticate attaches the caller to the request context when credentials
// are valid. Anonymous requests pass through unchanged.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := m.resolve(r); user != nil {
			r = r.WithContext(handlers.SetUserInContext(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a caller with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
