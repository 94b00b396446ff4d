package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/logging"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

const maxJSONBody = 1 << 20

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServerError logs err and writes a generic 500.
func writeServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.Error(msg, map[string]interface{}{
		"error":  err.Error(),
		"method": r.Method,
		"path":   r.URL.Path,
	})
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// requireUser writes a 401 and returns nil when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return user
}

// pathUUID parses the named path value, writing a 400 when malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

// targetOrSelf returns the user_id path value, or the caller when absent.
func targetOrSelf(w http.ResponseWriter, r *http.Request, user *models.User) (uuid.UUID, bool) {
	if r.PathValue("user_id") == "" {
		return user.ID, true
	}
	return pathUUID(w, r, "user_id", "user ID")
}
