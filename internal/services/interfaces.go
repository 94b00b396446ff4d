package services

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

// UserServiceInterface defines the contract for account and profile operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error)
	GetProfile(ctx context.Context, viewerID, targetID uuid.UUID) (*models.Profile, error)
	Search(ctx context.Context, viewerID uuid.UUID, query string) ([]models.UserCard, error)
}

// AuthServiceInterface defines the contract for session authentication.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenServiceInterface defines the contract for bearer tokens.
type TokenServiceInterface interface {
	IssuePair(userID uuid.UUID) (*TokenPair, error)
	Refresh(refreshToken string) (*TokenPair, error)
	ParseAccess(accessToken string) (uuid.UUID, error)
}

type EmailServiceInterface interface {
	SendVerificationEmail(ctx context.Context, userID uuid.UUID, email string) error
	VerifyEmail(ctx context.Context, token string) error
}

// RelationshipServiceInterface covers the follow graph and relationship queries.
type RelationshipServiceInterface interface {
	ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (models.FollowAction, error)
	ListFollowers(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)
	ListFollowing(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)
	ListConnections(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)
	IsFollowing(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	IsConnected(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	HasPendingRequest(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	Flags(ctx context.Context, viewerID, targetID uuid.UUID) (models.RelationshipFlags, error)
}

// ConnectionServiceInterface covers the connection request lifecycle.
type ConnectionServiceInterface interface {
	SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.SendRequestResult, error)
	Respond(ctx context.Context, receiverID, requestID uuid.UUID, rawAction string) (*models.ConnectionRequest, error)
	Cancel(ctx context.Context, senderID, targetID uuid.UUID) (*models.ConnectionRequest, error)
	ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]models.PendingConnectionRequest, error)
}

type StoryServiceInterface interface {
	VisibleStories(ctx context.Context, viewerID uuid.UUID, now time.Time) iter.Seq2[models.Story, error]
	ListVisible(ctx context.Context, viewerID uuid.UUID, now time.Time) ([]models.Story, error)
	Create(ctx context.Context, params models.CreateStoryParams) (*models.Story, error)
}

type PostServiceInterface interface {
	List(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error)
	Get(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, params models.CreatePostParams) (*models.Post, error)
	Update(ctx context.Context, actorID, postID uuid.UUID, content string, newImageURLs []string) (*models.Post, error)
	Delete(ctx context.Context, actorID, postID uuid.UUID) error
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*models.LikeResult, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	AddComment(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error)
	Share(ctx context.Context, userID, postID uuid.UUID) (*models.ShareResult, error)
}

type MessageServiceInterface interface {
	ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error)
	Send(ctx context.Context, params models.SendMessageParams) (*models.Message, error)
	RecentThreads(ctx context.Context, userID uuid.UUID) ([]models.ChatThread, error)
}

type MediaServiceInterface interface {
	Upload(ctx context.Context, folder string, r io.Reader, allowed ...MediaKind) (*UploadedMedia, error)
}

var (
	_ UserServiceInterface         = (*UserService)(nil)
	_ AuthServiceInterface         = (*AuthService)(nil)
	_ TokenServiceInterface        = (*TokenService)(nil)
	_ EmailServiceInterface        = (*EmailService)(nil)
	_ RelationshipServiceInterface = (*RelationshipService)(nil)
	_ ConnectionServiceInterface   = (*ConnectionService)(nil)
	_ StoryServiceInterface        = (*StoryService)(nil)
	_ PostServiceInterface         = (*PostService)(nil)
	_ MessageServiceInterface      = (*MessageService)(nil)
	_ MediaServiceInterface        = (*MediaService)(nil)
)
