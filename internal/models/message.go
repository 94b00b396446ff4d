package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender"`
	RecipientID uuid.UUID `json:"recipient"`
	Content     string    `json:"content"`
	ImageURL    *string   `json:"image"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendMessageParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
	ImageURL    *string
}

// ChatThread is the latest message exchanged with one counterpart.
type ChatThread struct {
	User        UserSummary `json:"user"`
	LastMessage Message     `json:"last_message"`
}
