package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

var ErrCannotFollowSelf = errors.New("cannot follow yourself")

// relationshipFlagsSQL selects is_following, is_connected and has_pending_request
// of the user identified by target, relative to the viewer bound as $1.
func relationshipFlagsSQL(target string) string {
	return `EXISTS(SELECT 1 FROM follows rf WHERE rf.follower_id = $1 AND rf.followee_id = ` + target + `),
		EXISTS(SELECT 1 FROM connections rc
		       WHERE (rc.user_a = $1 AND rc.user_b = ` + target + `) OR (rc.user_b = $1 AND rc.user_a = ` + target + `)),
		EXISTS(SELECT 1 FROM connection_requests rr
		       WHERE rr.status = 'pending'
		         AND ((rr.sender_id = $1 AND rr.receiver_id = ` + target + `)
		              OR (rr.sender_id = ` + target + ` AND rr.receiver_id = $1)))`
}

// userCardColumns selects a models.UserCard for the users row aliased as alias.
func userCardColumns(alias string) string {
	return alias + `.id, ` + alias + `.username, ` + alias + `.first_name, ` + alias + `.last_name, ` +
		alias + `.profile_picture_url, ` + alias + `.bio, ` + relationshipFlagsSQL(alias+".id")
}

func collectUserCards(rows Rows) ([]models.UserCard, error) {
	defer rows.Close()

	cards := []models.UserCard{}
	for rows.Next() {
		var card models.UserCard
		var first, last string
		if err := rows.Scan(
			&card.ID, &card.Username, &first, &last, &card.ProfilePictureURL, &card.Bio,
			&card.IsFollowing, &card.IsConnected, &card.HasPendingRequest,
		); err != nil {
			return nil, fmt.Errorf("scanning user card: %w", err)
		}
		card.FullName = (&models.User{Username: card.Username, FirstName: first, LastName: last}).FullName()
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user cards: %w", err)
	}
	return cards, nil
}

// RelationshipService owns the follow graph and the read side of connections.
// Connections are only ever written by ConnectionService.Respond.
type RelationshipService struct {
	db DBConn
}

func NewRelationshipService(db DBConn) *RelationshipService {
	return &RelationshipService{db: db}
}

// ToggleFollow removes the actor->target edge if present, otherwise adds it.
// Two concurrent toggles for the same pair may leave either state.
func (s *RelationshipService) ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (models.FollowAction, error) {
	if actorID == targetID {
		return "", ErrCannotFollowSelf
	}

	exists, err := userExists(ctx, s.db, targetID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrUserNotFound
	}

	result, err := s.db.Exec(ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2",
		actorID, targetID,
	)
	if err != nil {
		return "", fmt.Errorf("removing follow: %w", err)
	}
	if result.RowsAffected() > 0 {
		return models.FollowActionUnfollowed, nil
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		actorID, targetID,
	)
	if err != nil {
		return "", fmt.Errorf("adding follow: %w", err)
	}
	return models.FollowActionFollowed, nil
}

func (s *RelationshipService) ListFollowers(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error) {
	return s.listCards(ctx, viewerID, userID,
		`SELECT `+userCardColumns("u")+`
		 FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = $2
		 ORDER BY f.created_at DESC, u.id`,
		"listing followers")
}

func (s *RelationshipService) ListFollowing(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error) {
	return s.listCards(ctx, viewerID, userID,
		`SELECT `+userCardColumns("u")+`
		 FROM follows f
		 JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = $2
		 ORDER BY f.created_at DESC, u.id`,
		"listing following")
}

func (s *RelationshipService) ListConnections(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error) {
	return s.listCards(ctx, viewerID, userID,
		`SELECT `+userCardColumns("u")+`
		 FROM connections c
		 JOIN users u ON u.id = CASE WHEN c.user_a = $2 THEN c.user_b ELSE c.user_a END
		 WHERE c.user_a = $2 OR c.user_b = $2
		 ORDER BY c.created_at DESC, u.id`,
		"listing connections")
}

func (s *RelationshipService) listCards(ctx context.Context, viewerID, userID uuid.UUID, query, op string) ([]models.UserCard, error) {
	if userID != viewerID {
		exists, err := userExists(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrUserNotFound
		}
	}

	rows, err := s.db.Query(ctx, query, viewerID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectUserCards(rows)
}

func (s *RelationshipService) IsFollowing(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)",
		viewerID, targetID,
	).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	return following, nil
}

func (s *RelationshipService) IsConnected(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	return isConnected(ctx, s.db, viewerID, targetID)
}

// HasPendingRequest is true when a pending request exists in either direction.
func (s *RelationshipService) HasPendingRequest(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	var pending bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM connection_requests
			WHERE status = 'pending'
			  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)))`,
		viewerID, targetID,
	).Scan(&pending)
	if err != nil {
		return false, fmt.Errorf("checking pending request: %w", err)
	}
	return pending, nil
}

// Flags computes all three relationship booleans in one round trip.
func (s *RelationshipService) Flags(ctx context.Context, viewerID, targetID uuid.UUID) (models.RelationshipFlags, error) {
	var flags models.RelationshipFlags
	err := s.db.QueryRow(ctx,
		`SELECT `+relationshipFlagsSQL("$2::uuid"),
		viewerID, targetID,
	).Scan(&flags.IsFollowing, &flags.IsConnected, &flags.HasPendingRequest)
	if err != nil {
		return models.RelationshipFlags{}, fmt.Errorf("computing relationship flags: %w", err)
	}
	return flags, nil
}

func isConnected(ctx context.Context, q Querier, a, b uuid.UUID) (bool, error) {
	lo, hi := models.CanonicalPair(a, b)
	var connected bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM connections WHERE user_a = $1 AND user_b = $2)",
		lo, hi,
	).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("checking connection: %w", err)
	}
	return connected, nil
}
