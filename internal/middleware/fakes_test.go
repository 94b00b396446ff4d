package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type fakeSessions struct {
	users map[string]*models.User
}

func (f *fakeSessions) HashPassword(password string) (string, error) { return password, nil }

func (f *fakeSessions) VerifyPassword(hash, password string) bool { return hash == password }

func (f *fakeSessions) DeleteSession(ctx context.Context, token string) error { return nil }

func (f *fakeSessions) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	return "", nil
}

func (f *fakeSessions) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if user, ok := f.users[token]; ok {
		return user, nil
	}
	return nil, services.ErrSessionNotFound
}

func (f *fakeSessions) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return nil, services.ErrInvalidCredentials
}

type fakeTokens struct {
	subjects map[string]uuid.UUID
}

func (f *fakeTokens) IssuePair(userID uuid.UUID) (*services.TokenPair, error) {
	return &services.TokenPair{}, nil
}

func (f *fakeTokens) Refresh(refreshToken string) (*services.TokenPair, error) {
	return nil, services.ErrInvalidToken
}

func (f *fakeTokens) ParseAccess(accessToken string) (uuid.UUID, error) {
	if id, ok := f.subjects[accessToken]; ok {
		return id, nil
	}
	return uuid.Nil, services.ErrInvalidToken
}

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f[id]; ok {
		return user, nil
	}
	return nil, services.ErrUserNotFound
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})
