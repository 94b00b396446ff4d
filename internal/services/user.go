package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
)

const searchResultLimit = 50

const userColumns = `id, email, username, password_hash, first_name, last_name, bio, location,
	profile_picture_url, cover_photo_url, is_private, email_verified, email_verified_at, created_at, updated_at`

func scanUser(row Row, user *models.User) error {
	return row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Bio, &user.Location,
		&user.ProfilePictureURL, &user.CoverPhotoURL, &user.IsPrivate,
		&user.EmailVerified, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt,
	)
}

type UserService struct {
	db DBConn
}

func NewUserService(db DBConn) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.Username == "" {
		params.Username = params.Email
	}

	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", params.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	user := &models.User{}
	err = scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, first_name, last_name, email_verified, email_verified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $6 THEN NOW() END)
		 RETURNING `+userColumns,
		params.Email, params.Username, params.PasswordHash, params.FirstName, params.LastName, params.EmailVerified,
	), user)
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

func (s *UserService) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`UPDATE users SET email_verified = true, email_verified_at = COALESCE(email_verified_at, NOW()), updated_at = NOW()
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("marking email verified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error) {
	if params.Username != nil {
		trimmed := strings.TrimSpace(*params.Username)
		params.Username = &trimmed
		if trimmed == "" {
			params.Username = nil
		}
	}

	user := &models.User{}
	err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users SET
			username = COALESCE($2, username),
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			bio = COALESCE($5, bio),
			location = COALESCE($6, location),
			is_private = COALESCE($7, is_private),
			profile_picture_url = COALESCE($8, profile_picture_url),
			cover_photo_url = COALESCE($9, cover_photo_url),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, params.Username, params.FirstName, params.LastName, params.Bio, params.Location,
		params.IsPrivate, params.ProfilePictureURL, params.CoverPhotoURL,
	), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// GetProfile renders target for viewer, including counts and relationship flags.
func (s *UserService) GetProfile(ctx context.Context, viewerID, targetID uuid.UUID) (*models.Profile, error) {
	user := &models.User{}
	profile := &models.Profile{User: user}
	err := s.db.QueryRow(ctx,
		`SELECT `+userColumns+`,
			(SELECT COUNT(*) FROM follows WHERE followee_id = users.id),
			(SELECT COUNT(*) FROM follows WHERE follower_id = users.id),
			`+relationshipFlagsSQL("users.id")+`
		 FROM users WHERE id = $2`,
		viewerID, targetID,
	).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Bio, &user.Location,
		&user.ProfilePictureURL, &user.CoverPhotoURL, &user.IsPrivate,
		&user.EmailVerified, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt,
		&profile.FollowersCount, &profile.FollowingCount,
		&profile.IsFollowing, &profile.IsConnected, &profile.HasPendingRequest,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	profile.FullName = user.FullName()
	return profile, nil
}

// Search matches username, names, bio and location, excluding the viewer.
func (s *UserService) Search(ctx context.Context, viewerID uuid.UUID, query string) ([]models.UserCard, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserCard{}, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+userCardColumns("u")+`
		 FROM users u
		 WHERE u.id <> $1
		   AND (u.username ILIKE $2 OR u.first_name ILIKE $2 OR u.last_name ILIKE $2
		        OR u.bio ILIKE $2 OR u.location ILIKE $2)
		 ORDER BY u.username
		 LIMIT $3`,
		viewerID, "%"+escapeLike(query)+"%", searchResultLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return collectUserCards(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func userExists(ctx context.Context, q Querier, id uuid.UUID) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}
