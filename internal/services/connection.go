package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

var (
	ErrCannotConnectSelf           = errors.New("cannot connect with yourself")
	ErrConnectionRequestNotFound   = errors.New("connection request not found")
	ErrPendingRequestNotFound      = errors.New("pending connection request not found")
	ErrInvalidRespondAction        = errors.New("invalid action")
	ErrConnectionRequestNotPending = errors.New("connection request is no longer pending")
)

const connectionRequestColumns = "id, sender_id, receiver_id, status, created_at, updated_at"

func scanConnectionRequest(row Row) (*models.ConnectionRequest, error) {
	req := &models.ConnectionRequest{}
	err := row.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ConnectionService runs the request lifecycle: one row per ordered
// (sender, receiver) pair, moved between pending and the terminal states.
type ConnectionService struct {
	db DBConn
}

func NewConnectionService(db DBConn) *ConnectionService {
	return &ConnectionService{db: db}
}

// SendRequest creates or reopens the sender's request to receiver. It never
// creates a second row for a pair; concurrent senders observe the winner's row.
func (s *ConnectionService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.SendRequestResult, error) {
	if senderID == receiverID {
		return nil, ErrCannotConnectSelf
	}

	exists, err := userExists(ctx, s.db, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	connected, err := isConnected(ctx, s.db, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if connected {
		return &models.SendRequestResult{
			Outcome: models.SendRequestAlreadyConnected,
			Status:  models.ConnectionRequestAccepted,
		}, nil
	}

	// A concurrent cancel or respond can move the row on between the upsert
	// and the reload, so the upsert is retried once.
	for attempt := 0; ; attempt++ {
		req, err := s.upsertRequest(ctx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
		if req != nil {
			outcome := models.SendRequestCreated
			if !req.CreatedAt.Equal(req.UpdatedAt) {
				outcome = models.SendRequestReopened
			}
			return &models.SendRequestResult{Outcome: outcome, Status: req.Status, Request: req}, nil
		}

		existing, err := s.loadRequest(ctx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
		if existing.Status == models.ConnectionRequestPending {
			return &models.SendRequestResult{
				Outcome: models.SendRequestAlreadyPending,
				Status:  existing.Status,
				Request: existing,
			}, nil
		}
		if attempt > 0 {
			return nil, fmt.Errorf("connection request %s changed to %s during send", existing.ID, existing.Status)
		}
	}
}

// upsertRequest inserts or reopens the pair's row. The WHERE clause leaves an
// existing pending row untouched, in which case it returns nil.
func (s *ConnectionService) upsertRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := scanConnectionRequest(s.db.QueryRow(ctx,
		`INSERT INTO connection_requests (sender_id, receiver_id, status)
		 VALUES ($1, $2, 'pending')
		 ON CONFLICT (sender_id, receiver_id) DO UPDATE
		   SET status = 'pending', updated_at = NOW()
		   WHERE connection_requests.status <> 'pending'
		 RETURNING `+connectionRequestColumns,
		senderID, receiverID,
	))
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("upserting connection request: %w", err)
	}
	return req, nil
}

func (s *ConnectionService) loadRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := scanConnectionRequest(s.db.QueryRow(ctx,
		`SELECT `+connectionRequestColumns+`
		 FROM connection_requests WHERE sender_id = $1 AND receiver_id = $2`,
		senderID, receiverID,
	))
	if err != nil {
		return nil, fmt.Errorf("loading existing connection request: %w", err)
	}
	return req, nil
}

// Respond accepts or rejects a pending request addressed to receiverID.
// Accepting writes the connection in the same transaction as the status change.
// Repeating the action that already resolved the request is a no-op.
func (s *ConnectionService) Respond(ctx context.Context, receiverID, requestID uuid.UUID, rawAction string) (*models.ConnectionRequest, error) {
	action, ok := models.ParseRespondAction(rawAction)
	if !ok {
		return nil, ErrInvalidRespondAction
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	req, err := scanConnectionRequest(tx.QueryRow(ctx,
		`SELECT `+connectionRequestColumns+`
		 FROM connection_requests
		 WHERE id = $1 AND receiver_id = $2
		 FOR UPDATE`,
		requestID, receiverID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConnectionRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading connection request: %w", err)
	}

	target := action.ResultStatus()
	if req.Status.IsTerminal() {
		if req.Status == target {
			return req, nil
		}
		return nil, ErrConnectionRequestNotPending
	}

	err = tx.QueryRow(ctx,
		`UPDATE connection_requests SET status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		req.ID, target,
	).Scan(&req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating connection request: %w", err)
	}
	req.Status = target

	if action == models.RespondAccept {
		userA, userB := models.CanonicalPair(req.SenderID, req.ReceiverID)
		if _, err := tx.Exec(ctx,
			`INSERT INTO connections (user_a, user_b) VALUES ($1, $2)
			 ON CONFLICT (user_a, user_b) DO NOTHING`,
			userA, userB,
		); err != nil {
			return nil, fmt.Errorf("creating connection: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	committed = true

	return req, nil
}

// Cancel withdraws the sender's pending request to targetID.
func (s *ConnectionService) Cancel(ctx context.Context, senderID, targetID uuid.UUID) (*models.ConnectionRequest, error) {
	req, err := scanConnectionRequest(s.db.QueryRow(ctx,
		`UPDATE connection_requests SET status = 'canceled', updated_at = NOW()
		 WHERE sender_id = $1 AND receiver_id = $2 AND status = 'pending'
		 RETURNING `+connectionRequestColumns,
		senderID, targetID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPendingRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("canceling connection request: %w", err)
	}
	return req, nil
}

// ListPendingReceived returns pending requests addressed to userID, oldest first.
func (s *ConnectionService) ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]models.PendingConnectionRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.created_at, u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
		 FROM connection_requests r
		 JOIN users u ON u.id = r.sender_id
		 WHERE r.receiver_id = $1 AND r.status = 'pending'
		 ORDER BY r.created_at ASC, r.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	requests := []models.PendingConnectionRequest{}
	for rows.Next() {
		var pr models.PendingConnectionRequest
		sender, err := scanSummaryAfter(rows, &pr.ID, &pr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning pending request: %w", err)
		}
		pr.Sender = sender
		requests = append(requests, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending requests: %w", err)
	}
	return requests, nil
}

// scanSummaryAfter scans the leading destinations followed by the five
// summary columns id, username, first_name, last_name, profile_picture_url.
func scanSummaryAfter(row Row, leading ...any) (models.UserSummary, error) {
	var u models.User
	dest := append(leading, &u.ID, &u.Username, &u.FirstName, &u.LastName, &u.ProfilePictureURL)
	if err := row.Scan(dest...); err != nil {
		return models.UserSummary{}, err
	}
	return u.Summary(), nil
}
