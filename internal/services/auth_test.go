package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func TestAuthService_HashAndVerifyPassword(t *testing.T) {
	auth := &AuthService{}

	hash, err := auth.HashPassword("Correct#Horse9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !auth.VerifyPassword(hash, "Correct#Horse9") {
		t.Error("expected correct password to verify")
	}
	if auth.VerifyPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
	if auth.VerifyPassword("not-a-hash", "Correct#Horse9") {
		t.Error("expected invalid hash to fail")
	}
}

func TestAuthService_GenerateSessionToken(t *testing.T) {
	auth := &AuthService{}

	token1, hash1, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token2, _, _ := auth.GenerateSessionToken()

	if len(token1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token1))
	}
	if token1 == token2 {
		t.Error("expected unique tokens")
	}
	if hash1 != hashSessionToken(token1) {
		t.Error("expected hash to match token")
	}
}

func TestAuthService_CreateSession_Redis(t *testing.T) {
	redis := &fakeRedis{}
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			t.Fatal("database should not be used when redis succeeds")
			return nil, nil
		},
	}
	auth := NewAuthService(db, redis).WithSessionDuration(time.Hour)
	userID := uuid.New()

	token, err := auth.CreateSession(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := redis.values[sessionKeyPrefix+hashSessionToken(token)]; got != userID.String() {
		t.Fatalf("expected redis to hold user id, got %q", got)
	}
	if redis.lastTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", redis.lastTTL)
	}
}

func TestAuthService_CreateSession_FallsBackToDatabase(t *testing.T) {
	redis := &fakeRedis{setErr: errors.New("redis down")}
	var inserted bool
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if !strings.Contains(sql, "INSERT INTO sessions") {
				t.Fatalf("unexpected exec: %s", sql)
			}
			inserted = true
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	auth := NewAuthService(db, redis)
	if _, err := auth.CreateSession(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Fatal("expected session row to be inserted")
	}
}

func TestAuthService_ValidateSession_RedisHitExtendsTTL(t *testing.T) {
	userID := uuid.New()
	token := "session-token"
	redis := &fakeRedis{values: map[string]string{sessionKeyPrefix + hashSessionToken(token): userID.String()}}
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if !strings.Contains(sql, "FROM users WHERE id") {
				t.Fatalf("unexpected query: %s", sql)
			}
			return rowFromValues(userRowValues(userID, "ada@example.com", "")...)
		},
	}

	user, err := NewAuthService(db, redis).ValidateSession(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != userID {
		t.Fatalf("expected user %s, got %s", userID, user.ID)
	}
	if redis.expireCalls != 1 {
		t.Fatalf("expected sliding expiry, got %d expire calls", redis.expireCalls)
	}
}

func TestAuthService_ValidateSession_DatabaseFallback(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()

	tests := []struct {
		name      string
		expiresAt time.Time
		wantErr   error
	}{
		{"valid", time.Now().Add(time.Hour), nil},
		{"expired", time.Now().Add(-time.Minute), ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			db := &fakeDB{
				QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
					if strings.Contains(sql, "FROM sessions") {
						return rowFromValues(sessionID, userID, "hash", tt.expiresAt, time.Now().Add(-time.Hour))
					}
					return rowFromValues(userRowValues(userID, "ada@example.com", "")...)
				},
				ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
					deleted = true
					return fakeCommandTag{rowsAffected: 1}, nil
				},
			}

			user, err := NewAuthService(db, &fakeRedis{}).ValidateSession(context.Background(), "token")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && user.ID != userID {
				t.Fatalf("expected user %s", userID)
			}
			if deleted != (tt.wantErr != nil) {
				t.Fatalf("expected expired session cleanup=%v", tt.wantErr != nil)
			}
		})
	}
}

func TestAuthService_ValidateSession_NotFound(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowWithError(pgx.ErrNoRows)
		},
	}

	_, err := NewAuthService(db, &fakeRedis{}).ValidateSession(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_DeleteSession(t *testing.T) {
	token := "session-token"
	key := sessionKeyPrefix + hashSessionToken(token)
	redis := &fakeRedis{values: map[string]string{key: uuid.NewString()}}
	var gotHash any
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			gotHash = args[0]
			return fakeCommandTag{}, nil
		},
	}

	if err := NewAuthService(db, redis).DeleteSession(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := redis.values[key]; ok {
		t.Fatal("expected redis key to be removed")
	}
	if gotHash != hashSessionToken(token) {
		t.Fatalf("expected database delete by hash, got %v", gotHash)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	auth := &AuthService{}
	hash, err := auth.HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	userID := uuid.New()

	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if args[0] != "ada@example.com" {
				return rowWithError(pgx.ErrNoRows)
			}
			return rowFromValues(userRowValues(userID, "ada@example.com", hash)...)
		},
	}
	auth = NewAuthService(db, &fakeRedis{})

	user, err := auth.Authenticate(context.Background(), "Ada@Example.com", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != userID {
		t.Fatalf("expected user %s, got %s", userID, user.ID)
	}

	if _, err := auth.Authenticate(context.Background(), "ada@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), "ghost@example.com", "Sup3r$ecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
