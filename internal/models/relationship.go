package models

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FollowAction string

const (
	FollowActionFollowed   FollowAction = "followed"
	FollowActionUnfollowed FollowAction = "unfollowed"
)

type ConnectionRequestStatus string

const (
	ConnectionRequestPending  ConnectionRequestStatus = "pending"
	ConnectionRequestAccepted ConnectionRequestStatus = "accepted"
	ConnectionRequestRejected ConnectionRequestStatus = "rejected"
	ConnectionRequestCanceled ConnectionRequestStatus = "canceled"
)

// IsTerminal reports whether the status ends the request lifecycle.
func (s ConnectionRequestStatus) IsTerminal() bool {
	return s != ConnectionRequestPending
}

type ConnectionRequest struct {
	ID         uuid.UUID               `json:"id"`
	SenderID   uuid.UUID               `json:"sender_id"`
	ReceiverID uuid.UUID               `json:"receiver_id"`
	Status     ConnectionRequestStatus `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// PendingConnectionRequest is a received request joined with its sender.
type PendingConnectionRequest struct {
	ID        uuid.UUID   `json:"id"`
	Sender    UserSummary `json:"sender"`
	CreatedAt time.Time   `json:"created_at"`
}

type RespondAction string

const (
	RespondAccept RespondAction = "accept"
	RespondReject RespondAction = "reject"
)

// ParseRespondAction normalizes case and whitespace before matching.
func ParseRespondAction(raw string) (RespondAction, bool) {
	switch RespondAction(strings.ToLower(strings.TrimSpace(raw))) {
	case RespondAccept:
		return RespondAccept, true
	case RespondReject:
		return RespondReject, true
	}
	return "", false
}

// ResultStatus is the status a pending request moves to under the action.
func (a RespondAction) ResultStatus() ConnectionRequestStatus {
	if a == RespondAccept {
		return ConnectionRequestAccepted
	}
	return ConnectionRequestRejected
}

type SendRequestOutcome string

const (
	SendRequestCreated          SendRequestOutcome = "sent"
	SendRequestReopened         SendRequestOutcome = "reopened"
	SendRequestAlreadyPending   SendRequestOutcome = "already_pending"
	SendRequestAlreadyConnected SendRequestOutcome = "already_connected"
)

// SendRequestResult describes what send_request did. Request is nil when the
// pair was already connected.
type SendRequestResult struct {
	Outcome SendRequestOutcome
	Status  ConnectionRequestStatus
	Request *ConnectionRequest
}

// RelationshipFlags describe a target user from a viewer's perspective.
type RelationshipFlags struct {
	IsFollowing       bool `json:"is_following"`
	IsConnected       bool `json:"is_connected"`
	HasPendingRequest bool `json:"has_pending_request"`
}

// UserCard is a list entry: a profile summary plus the viewer's relationship to it.
type UserCard struct {
	UserSummary
	Bio string `json:"bio"`
	RelationshipFlags
}

// CanonicalPair orders two ids so a connection is stored once per unordered pair.
// The byte order matches PostgreSQL's uuid comparison.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}
