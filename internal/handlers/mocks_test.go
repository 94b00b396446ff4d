package handlers

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type mockUserService struct {
	CreateFunc            func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.User, error)
	MarkEmailVerifiedFunc func(ctx context.Context, userID uuid.UUID) error
	UpdateProfileFunc     func(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error)
	GetProfileFunc        func(ctx context.Context, viewerID, targetID uuid.UUID) (*models.Profile, error)
	SearchFunc            func(ctx context.Context, viewerID uuid.UUID, query string) ([]models.UserCard, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.User{ID: uuid.New(), Email: params.Email, EmailVerified: params.EmailVerified}, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, services.ErrUserNotFound
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, services.ErrUserNotFound
}

func (m *mockUserService) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, userID)
	}
	return nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, params)
	}
	return &models.User{ID: userID}, nil
}

func (m *mockUserService) GetProfile(ctx context.Context, viewerID, targetID uuid.UUID) (*models.Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, viewerID, targetID)
	}
	return &models.Profile{User: &models.User{ID: targetID}}, nil
}

func (m *mockUserService) Search(ctx context.Context, viewerID uuid.UUID, query string) ([]models.UserCard, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, viewerID, query)
	}
	return []models.UserCard{}, nil
}

type mockAuthService struct {
	AuthenticateFunc    func(ctx context.Context, email, password string) (*models.User, error)
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	return hash == "hashed_"+password
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "test_session_token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, services.ErrInvalidCredentials
}

type mockTokenService struct {
	RefreshFunc func(refreshToken string) (*services.TokenPair, error)
}

func (m *mockTokenService) IssuePair(userID uuid.UUID) (*services.TokenPair, error) {
	return &services.TokenPair{Access: "access-" + userID.String(), Refresh: "refresh-" + userID.String()}, nil
}

func (m *mockTokenService) Refresh(refreshToken string) (*services.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(refreshToken)
	}
	return nil, services.ErrInvalidToken
}

func (m *mockTokenService) ParseAccess(accessToken string) (uuid.UUID, error) {
	return uuid.Nil, services.ErrInvalidToken
}

type mockEmailService struct {
	SendVerificationEmailFunc func(ctx context.Context, userID uuid.UUID, email string) error
	VerifyEmailFunc           func(ctx context.Context, token string) error
}

func (m *mockEmailService) SendVerificationEmail(ctx context.Context, userID uuid.UUID, email string) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(ctx, userID, email)
	}
	return nil
}

func (m *mockEmailService) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil
}

type mockRelationshipService struct {
	ToggleFollowFunc      func(ctx context.Context, actorID, targetID uuid.UUID) (models.FollowAction, error)
	ListFollowersFunc     func(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)
	ListFollowingFunc     func(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)
	ListConnectionsFunc   func(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error)
	IsFollowingFunc       func(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	IsConnectedFunc       func(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	HasPendingRequestFunc func(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	FlagsFunc             func(ctx context.Context, viewerID, targetID uuid.UUID) (models.RelationshipFlags, error)
}

func (m *mockRelationshipService) ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (models.FollowAction, error) {
	if m.ToggleFollowFunc != nil {
		return m.ToggleFollowFunc(ctx, actorID, targetID)
	}
	return models.FollowActionFollowed, nil
}

func (m *mockRelationshipService) ListFollowers(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error) {
	if m.ListFollowersFunc != nil {
		return m.ListFollowersFunc(ctx, viewerID, userID)
	}
	return []models.UserCard{}, nil
}

func (m *mockRelationshipService) ListFollowing(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error) {
	if m.ListFollowingFunc != nil {
		return m.ListFollowingFunc(ctx, viewerID, userID)
	}
	return []models.UserCard{}, nil
}

func (m *mockRelationshipService) ListConnections(ctx context.Context, viewerID, userID uuid.UUID) ([]models.UserCard, error) {
	if m.ListConnectionsFunc != nil {
		return m.ListConnectionsFunc(ctx, viewerID, userID)
	}
	return []models.UserCard{}, nil
}

func (m *mockRelationshipService) IsFollowing(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	if m.IsFollowingFunc != nil {
		return m.IsFollowingFunc(ctx, viewerID, targetID)
	}
	return false, nil
}

func (m *mockRelationshipService) IsConnected(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	if m.IsConnectedFunc != nil {
		return m.IsConnectedFunc(ctx, viewerID, targetID)
	}
	return false, nil
}

func (m *mockRelationshipService) HasPendingRequest(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	if m.HasPendingRequestFunc != nil {
		return m.HasPendingRequestFunc(ctx, viewerID, targetID)
	}
	return false, nil
}

func (m *mockRelationshipService) Flags(ctx context.Context, viewerID, targetID uuid.UUID) (models.RelationshipFlags, error) {
	if m.FlagsFunc != nil {
		return m.FlagsFunc(ctx, viewerID, targetID)
	}
	return models.RelationshipFlags{}, nil
}

type mockConnectionService struct {
	SendRequestFunc         func(ctx context.Context, senderID, receiverID uuid.UUID) (*models.SendRequestResult, error)
	RespondFunc             func(ctx context.Context, receiverID, requestID uuid.UUID, rawAction string) (*models.ConnectionRequest, error)
	CancelFunc              func(ctx context.Context, senderID, targetID uuid.UUID) (*models.ConnectionRequest, error)
	ListPendingReceivedFunc func(ctx context.Context, userID uuid.UUID) ([]models.PendingConnectionRequest, error)
}

func (m *mockConnectionService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.SendRequestResult, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, senderID, receiverID)
	}
	return nil, nil
}

func (m *mockConnectionService) Respond(ctx context.Context, receiverID, requestID uuid.UUID, rawAction string) (*models.ConnectionRequest, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, receiverID, requestID, rawAction)
	}
	return nil, nil
}

func (m *mockConnectionService) Cancel(ctx context.Context, senderID, targetID uuid.UUID) (*models.ConnectionRequest, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, senderID, targetID)
	}
	return nil, nil
}

func (m *mockConnectionService) ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]models.PendingConnectionRequest, error) {
	if m.ListPendingReceivedFunc != nil {
		return m.ListPendingReceivedFunc(ctx, userID)
	}
	return []models.PendingConnectionRequest{}, nil
}

type mockStoryService struct {
	ListVisibleFunc func(ctx context.Context, viewerID uuid.UUID, now time.Time) ([]models.Story, error)
	CreateFunc      func(ctx context.Context, params models.CreateStoryParams) (*models.Story, error)
}

func (m *mockStoryService) VisibleStories(ctx context.Context, viewerID uuid.UUID, now time.Time) iter.Seq2[models.Story, error] {
	return func(yield func(models.Story, error) bool) {
		stories, err := m.ListVisible(ctx, viewerID, now)
		if err != nil {
			yield(models.Story{}, err)
			return
		}
		for _, s := range stories {
			if !yield(s, nil) {
				return
			}
		}
	}
}

func (m *mockStoryService) ListVisible(ctx context.Context, viewerID uuid.UUID, now time.Time) ([]models.Story, error) {
	if m.ListVisibleFunc != nil {
		return m.ListVisibleFunc(ctx, viewerID, now)
	}
	return []models.Story{}, nil
}

func (m *mockStoryService) Create(ctx context.Context, params models.CreateStoryParams) (*models.Story, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.Story{ID: uuid.New(), MediaType: params.MediaType, MediaURL: params.MediaURL, Content: params.Content}, nil
}

type mockPostService struct {
	ListFunc         func(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error)
	GetFunc          func(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error)
	CreateFunc       func(ctx context.Context, params models.CreatePostParams) (*models.Post, error)
	UpdateFunc       func(ctx context.Context, actorID, postID uuid.UUID, content string, newImageURLs []string) (*models.Post, error)
	DeleteFunc       func(ctx context.Context, actorID, postID uuid.UUID) error
	ToggleLikeFunc   func(ctx context.Context, userID, postID uuid.UUID) (*models.LikeResult, error)
	ListCommentsFunc func(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	AddCommentFunc   func(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error)
	ShareFunc        func(ctx context.Context, userID, postID uuid.UUID) (*models.ShareResult, error)
}

func (m *mockPostService) List(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, viewerID)
	}
	return []*models.Post{}, nil
}

func (m *mockPostService) Get(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, viewerID, postID)
	}
	return nil, services.ErrPostNotFound
}

func (m *mockPostService) Create(ctx context.Context, params models.CreatePostParams) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.Post{ID: uuid.New(), Content: params.Content}, nil
}

func (m *mockPostService) Update(ctx context.Context, actorID, postID uuid.UUID, content string, newImageURLs []string) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actorID, postID, content, newImageURLs)
	}
	return &models.Post{ID: postID, Content: content}, nil
}

func (m *mockPostService) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actorID, postID)
	}
	return nil
}

func (m *mockPostService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*models.LikeResult, error) {
	if m.ToggleLikeFunc != nil {
		return m.ToggleLikeFunc(ctx, userID, postID)
	}
	return &models.LikeResult{Liked: true, LikesCount: 1}, nil
}

func (m *mockPostService) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, postID)
	}
	return []models.Comment{}, nil
}

func (m *mockPostService) AddComment(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, authorID, postID, content)
	}
	return &models.Comment{ID: uuid.New(), PostID: postID, Content: content}, nil
}

func (m *mockPostService) Share(ctx context.Context, userID, postID uuid.UUID) (*models.ShareResult, error) {
	if m.ShareFunc != nil {
		return m.ShareFunc(ctx, userID, postID)
	}
	return &models.ShareResult{Shared: true, SharesCount: 1}, nil
}

type mockMessageService struct {
	ListConversationFunc func(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error)
	SendFunc             func(ctx context.Context, params models.SendMessageParams) (*models.Message, error)
	RecentThreadsFunc    func(ctx context.Context, userID uuid.UUID) ([]models.ChatThread, error)
}

func (m *mockMessageService) ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error) {
	if m.ListConversationFunc != nil {
		return m.ListConversationFunc(ctx, userID, otherID)
	}
	return []models.Message{}, nil
}

func (m *mockMessageService) Send(ctx context.Context, params models.SendMessageParams) (*models.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, params)
	}
	return &models.Message{ID: uuid.New(), SenderID: params.SenderID, RecipientID: params.RecipientID, Content: params.Content, ImageURL: params.ImageURL}, nil
}

func (m *mockMessageService) RecentThreads(ctx context.Context, userID uuid.UUID) ([]models.ChatThread, error) {
	if m.RecentThreadsFunc != nil {
		return m.RecentThreadsFunc(ctx, userID)
	}
	return []models.ChatThread{}, nil
}

type mockMediaService struct {
	UploadFunc func(ctx context.Context, folder string, r io.Reader, allowed ...services.MediaKind) (*services.UploadedMedia, error)
}

func (m *mockMediaService) Upload(ctx context.Context, folder string, r io.Reader, allowed ...services.MediaKind) (*services.UploadedMedia, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, folder, r, allowed...)
	}
	return &services.UploadedMedia{URL: "/media/" + folder + "/file.png", Kind: services.MediaImage, MIME: "image/png"}, nil
}
