package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type RelationshipHandler struct {
	relationships services.RelationshipServiceInterface
	connections   services.ConnectionServiceInterface
}

func NewRelationshipHandler(relationships services.RelationshipServiceInterface, connections services.ConnectionServiceInterface) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships, connections: connections}
}

type FollowResponse struct {
	Action      models.FollowAction `json:"action"`
	IsFollowing bool                `json:"is_following"`
}

type ConnectionRequestResponse struct {
	Status  models.ConnectionRequestStatus `json:"status"`
	Outcome models.SendRequestOutcome      `json:"outcome,omitempty"`
	Message string                         `json:"message"`
	Request *models.ConnectionRequest      `json:"request,omitempty"`
}

type PendingRequestsResponse struct {
	Requests []models.PendingConnectionRequest `json:"requests"`
}

type RespondRequest struct {
	Action string `json:"action"`
}

// writeRelationshipError maps relationship and connection sentinels to responses.
func writeRelationshipError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrCannotFollowSelf):
		writeError(w, http.StatusBadRequest, "You cannot follow yourself")
	case errors.Is(err, services.ErrCannotConnectSelf):
		writeError(w, http.StatusBadRequest, "You cannot connect with yourself")
	case errors.Is(err, services.ErrInvalidRespondAction):
		writeError(w, http.StatusBadRequest, "Invalid action")
	case errors.Is(err, services.ErrConnectionRequestNotFound):
		writeError(w, http.StatusNotFound, "Connection request not found")
	case errors.Is(err, services.ErrPendingRequestNotFound):
		writeError(w, http.StatusNotFound, "No pending request found")
	case errors.Is(err, services.ErrConnectionRequestNotPending):
		writeError(w, http.StatusConflict, "Connection request is no longer pending")
	default:
		writeServerError(w, r, "Relationship operation failed", err)
	}
}

func (h *RelationshipHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	targetID, ok := pathUUID(w, r, "user_id", "user ID")
	if !ok {
		return
	}

	action, err := h.relationships.ToggleFollow(r.Context(), user.ID, targetID)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowResponse{
		Action:      action,
		IsFollowing: action == models.FollowActionFollowed,
	})
}

func (h *RelationshipHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.relationships.ListFollowers)
}

func (h *RelationshipHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.relationships.ListFollowing)
}

func (h *RelationshipHandler) Connections(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.relationships.ListConnections)
}

type cardLister func(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)

func (h *RelationshipHandler) list(w http.ResponseWriter, r *http.Request, fetch cardLister) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	userID, ok := targetOrSelf(w, r, user)
	if !ok {
		return
	}

	cards, err := fetch(r.Context(), user.ID, userID)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserListResponse{Users: cards})
}

// Status returns the caller's relationship flags toward user_id.
func (h *RelationshipHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	targetID, ok := pathUUID(w, r, "user_id", "user ID")
	if !ok {
		return
	}

	flags, err := h.relationships.Flags(r.Context(), user.ID, targetID)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

func (h *RelationshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	targetID, ok := pathUUID(w, r, "user_id", "user ID")
	if !ok {
		return
	}

	result, err := h.connections.SendRequest(r.Context(), user.ID, targetID)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}

	status := http.StatusOK
	message := "Connection request sent"
	switch result.Outcome {
	case models.SendRequestCreated:
		status = http.StatusCreated
	case models.SendRequestAlreadyPending:
		message = "Connection request already sent"
	case models.SendRequestAlreadyConnected:
		message = "Already connected"
	}

	writeJSON(w, status, ConnectionRequestResponse{
		Status:  result.Status,
		Outcome: result.Outcome,
		Message: message,
		Request: result.Request,
	})
}

func (h *RelationshipHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	requestID, ok := pathUUID(w, r, "request_id", "request ID")
	if !ok {
		return
	}
	var req RespondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.connections.Respond(r.Context(), user.ID, requestID, req.Action)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}

	message := "Connection request rejected"
	if updated.Status == models.ConnectionRequestAccepted {
		message = "Connection request accepted"
	}
	writeJSON(w, http.StatusOK, ConnectionRequestResponse{Status: updated.Status, Message: message, Request: updated})
}

func (h *RelationshipHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	targetID, ok := pathUUID(w, r, "user_id", "user ID")
	if !ok {
		return
	}

	canceled, err := h.connections.Cancel(r.Context(), user.ID, targetID)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConnectionRequestResponse{
		Status:  canceled.Status,
		Message: "Connection request canceled",
		Request: canceled,
	})
}

func (h *RelationshipHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	requests, err := h.connections.ListPendingReceived(r.Context(), user.ID)
	if err != nil {
		writeRelationshipError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PendingRequestsResponse{Requests: requests})
}
