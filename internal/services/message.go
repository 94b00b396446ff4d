package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

var (
	ErrEmptyMessage  = errors.New("message needs text or an image")
	ErrMessageToSelf = errors.New("cannot message yourself")
)

const (
	recentMessageScan = 200
	recentThreadLimit = 10
)

const messageColumns = `id, sender_id, recipient_id, content, image_url, is_read, created_at`

func scanMessage(row Row, m *models.Message) error {
	return row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.ImageURL, &m.IsRead, &m.CreatedAt)
}

type MessageService struct {
	db DBConn
}

func NewMessageService(db DBConn) *MessageService {
	return &MessageService{db: db}
}

// ListConversation returns every message between the two users, oldest
// first, and marks the ones sent to userID as read.
func (s *MessageService) ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error) {
	exists, err := userExists(ctx, s.db, otherID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		 ORDER BY created_at ASC, id ASC`,
		userID, otherID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`UPDATE messages SET is_read = true WHERE sender_id = $2 AND recipient_id = $1 AND NOT is_read`,
		userID, otherID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking messages read: %w", err)
	}
	return messages, nil
}

func (s *MessageService) Send(ctx context.Context, params models.SendMessageParams) (*models.Message, error) {
	params.Content = strings.TrimSpace(params.Content)
	if params.Content == "" && params.ImageURL == nil {
		return nil, ErrEmptyMessage
	}
	if params.SenderID == params.RecipientID {
		return nil, ErrMessageToSelf
	}

	exists, err := userExists(ctx, s.db, params.RecipientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	m := &models.Message{}
	err = scanMessage(s.db.QueryRow(ctx,
		`INSERT INTO messages (sender_id, recipient_id, content, image_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+messageColumns,
		params.SenderID, params.RecipientID, params.Content, params.ImageURL,
	), m)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	return m, nil
}

// RecentThreads returns the latest message per counterpart, newest first.
// Only the most recent messages are scanned, so quiet threads can drop off.
func (s *MessageService) RecentThreads(ctx context.Context, userID uuid.UUID) ([]models.ChatThread, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.id, m.sender_id, m.recipient_id, m.content, m.image_url, m.is_read, m.created_at,
		        u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
		 FROM messages m
		 JOIN users u ON u.id = CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END
		 WHERE m.sender_id = $1 OR m.recipient_id = $1
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT $2`,
		userID, recentMessageScan,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent messages: %w", err)
	}
	defer rows.Close()

	threads := []models.ChatThread{}
	seen := make(map[uuid.UUID]bool)
	for rows.Next() {
		var m models.Message
		other, err := scanSummaryAfter(rows,
			&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.ImageURL, &m.IsRead, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning recent message: %w", err)
		}
		if seen[other.ID] || len(threads) >= recentThreadLimit {
			continue
		}
		seen[other.ID] = true
		threads = append(threads, models.ChatThread{User: other, LastMessage: m})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent messages: %w", err)
	}
	return threads, nil
}
