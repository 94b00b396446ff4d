package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/logging"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

const sessionCookieName = "session_token"

type AuthOptions struct {
	SecureCookies   bool
	SessionTTL      time.Duration
	AutoVerifyEmail bool
}

type AuthHandler struct {
	userService  services.UserServiceInterface
	authService  services.AuthServiceInterface
	tokenService services.TokenServiceInterface
	emailService services.EmailServiceInterface
	opts         AuthOptions
}

func NewAuthHandler(
	userService services.UserServiceInterface,
	authService services.AuthServiceInterface,
	tokenService services.TokenServiceInterface,
	emailService services.EmailServiceInterface,
	opts AuthOptions,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		tokenService: tokenService,
		emailService: emailService,
		opts:         opts,
	}
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    *models.User `json:"user"`
	Access  string       `json:"access,omitempty"`
	Refresh string       `json:"refresh,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	if err := services.ValidatePassword(req.Password); err != nil {
		var pwErr *services.PasswordError
		if errors.As(err, &pwErr) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Password too weak", Details: pwErr.Problems})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeServerError(w, r, "Error hashing password", err)
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Email:         req.Email,
		Username:      strings.TrimSpace(req.Username),
		PasswordHash:  passwordHash,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		EmailVerified: h.opts.AutoVerifyEmail,
	})
	switch {
	case errors.Is(err, services.ErrEmailAlreadyExists):
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already taken")
		return
	case err != nil:
		writeServerError(w, r, "Error creating user", err)
		return
	}

	message := "Registration successful. You can now log in."
	if !user.EmailVerified && h.emailService != nil {
		message = "Registration successful. Check your email to verify your account."
		// The request context ends with the response.
		go func() {
			if err := h.emailService.SendVerificationEmail(context.Background(), user.ID, user.Email); err != nil {
				logging.Error("Error sending verification email", map[string]interface{}{
					"error":   err.Error(),
					"user_id": user.ID.String(),
				})
			}
		}()
	}

	writeJSON(w, http.StatusCreated, AuthResponse{User: user, Message: message})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeServerError(w, r, "Error authenticating user", err)
		return
	}

	if !user.EmailVerified {
		writeError(w, http.StatusForbidden, "Please verify your email before logging in")
		return
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeServerError(w, r, "Error creating session", err)
		return
	}
	pair, err := h.tokenService.IssuePair(user.ID)
	if err != nil {
		writeServerError(w, r, "Error issuing tokens", err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user, Access: pair.Access, Refresh: pair.Refresh})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	pair, err := h.tokenService.Refresh(req.Refresh)
	if errors.Is(err, services.ErrInvalidToken) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	if err != nil {
		writeServerError(w, r, "Error refreshing tokens", err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.DeleteSession(r.Context(), cookie.Value); err != nil {
			logging.Warn("Error deleting session", map[string]interface{}{"error": err.Error()})
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me returns the caller, or a null user for anonymous requests.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthResponse{User: GetUserFromContext(r.Context())})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token is required")
		return
	}

	err := h.emailService.VerifyEmail(r.Context(), req.Token)
	if errors.Is(err, services.ErrInvalidVerificationToken) {
		writeError(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	if err != nil {
		writeServerError(w, r, "Error verifying email", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	if user.EmailVerified {
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	}

	if err := h.emailService.SendVerificationEmail(r.Context(), user.ID, user.Email); err != nil {
		writeServerError(w, r, "Error sending verification email", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Verification email sent"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}
