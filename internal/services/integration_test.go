//go:build integration

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/testutil"
)

var (
	testPool  *pgxpool.Pool
	testFaker = testutil.NewFaker(2025)
)

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool
	code := m.Run()

	pool.Close()
	server.Stop()
	os.Exit(code)
}

// applyMigrations runs the up files in order. Extension statements are
// skipped since gen_random_uuid is built in.
func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.up.sql"))
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		var kept []string
		for _, line := range strings.Split(string(contents), "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "CREATE EXTENSION") {
				continue
			}
			kept = append(kept, line)
		}
		if _, err := pool.Exec(ctx, strings.Join(kept, "\n")); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		"TRUNCATE TABLE messages, stories, post_shares, comments, post_likes, post_images, posts, "+
			"connection_requests, connections, follows, sessions, users CASCADE")
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createUsers(t *testing.T, n int) []*models.User {
	t.Helper()
	users := NewUserService(NewPoolAdapter(testPool))
	out := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		params := testFaker.UserParams()
		params.PasswordHash = "not-a-real-hash"
		u, err := users.Create(context.Background(), params)
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		out = append(out, u)
	}
	return out
}

func TestIntegration_ConnectionLifecycle(t *testing.T) {
	resetDatabase(t)
	ctx := context.Background()
	db := NewPoolAdapter(testPool)
	connections := NewConnectionService(db)
	relationships := NewRelationshipService(db)
	users := createUsers(t, 2)
	alice, bob := users[0].ID, users[1].ID

	sent, err := connections.SendRequest(ctx, alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Outcome != models.SendRequestCreated || sent.Status != models.ConnectionRequestPending {
		t.Fatalf("unexpected send result %+v", sent)
	}

	again, err := connections.SendRequest(ctx, alice, bob)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if again.Outcome != models.SendRequestAlreadyPending || again.Request.ID != sent.Request.ID {
		t.Fatalf("expected the existing pending row, got %+v", again)
	}

	pending, err := relationships.HasPendingRequest(ctx, bob, alice)
	if err != nil || !pending {
		t.Fatalf("expected pending from bob's side, got %v err=%v", pending, err)
	}

	if _, err := connections.Respond(ctx, alice, sent.Request.ID, "accept"); !errors.Is(err, ErrConnectionRequestNotFound) {
		t.Fatalf("sender must not respond, got %v", err)
	}

	accepted, err := connections.Respond(ctx, bob, sent.Request.ID, "accept")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != models.ConnectionRequestAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	for _, pair := range [][2]uuid.UUID{{alice, bob}, {bob, alice}} {
		connected, err := relationships.IsConnected(ctx, pair[0], pair[1])
		if err != nil || !connected {
			t.Fatalf("expected symmetric connection from %s, got %v err=%v", pair[0], connected, err)
		}
	}

	if _, err := connections.Respond(ctx, bob, sent.Request.ID, "reject"); !errors.Is(err, ErrConnectionRequestNotPending) {
		t.Fatalf("expected not pending, got %v", err)
	}

	afterConnect, err := connections.SendRequest(ctx, bob, alice)
	if err != nil {
		t.Fatalf("send after connect: %v", err)
	}
	if afterConnect.Outcome != models.SendRequestAlreadyConnected {
		t.Fatalf("expected already connected, got %s", afterConnect.Outcome)
	}
}

func TestIntegration_RejectCancelReopen(t *testing.T) {
	resetDatabase(t)
	ctx := context.Background()
	connections := NewConnectionService(NewPoolAdapter(testPool))
	users := createUsers(t, 2)
	alice, bob := users[0].ID, users[1].ID

	sent, err := connections.SendRequest(ctx, alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := connections.Respond(ctx, bob, sent.Request.ID, "REJECT"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := connections.Cancel(ctx, alice, bob); !errors.Is(err, ErrPendingRequestNotFound) {
		t.Fatalf("expected nothing to cancel, got %v", err)
	}

	reopened, err := connections.SendRequest(ctx, alice, bob)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Outcome != models.SendRequestReopened || reopened.Request.ID != sent.Request.ID {
		t.Fatalf("expected the same row reopened, got %+v", reopened)
	}

	canceled, err := connections.Cancel(ctx, alice, bob)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != models.ConnectionRequestCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}

	list, err := connections.ListPendingReceived(ctx, bob)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no pending requests, got %d", len(list))
	}
}

func TestIntegration_ConcurrentSendKeepsOneRow(t *testing.T) {
	resetDatabase(t)
	ctx := context.Background()
	connections := NewConnectionService(NewPoolAdapter(testPool))
	users := createUsers(t, 2)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := connections.SendRequest(ctx, users[0].ID, users[1].ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent send: %v", err)
	}

	var count int
	err := testPool.QueryRow(ctx,
		"SELECT COUNT(*) FROM connection_requests WHERE sender_id = $1 AND receiver_id = $2",
		users[0].ID, users[1].ID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
}

func TestIntegration_FollowToggle(t *testing.T) {
	resetDatabase(t)
	ctx := context.Background()
	relationships := NewRelationshipService(NewPoolAdapter(testPool))
	users := createUsers(t, 2)
	alice, bob := users[0].ID, users[1].ID

	for i, want := range []models.FollowAction{models.FollowActionFollowed, models.FollowActionUnfollowed, models.FollowActionFollowed} {
		got, err := relationships.ToggleFollow(ctx, alice, bob)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("toggle %d: expected %s, got %s", i, want, got)
		}
	}

	followers, err := relationships.ListFollowers(ctx, bob, bob)
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != alice {
		t.Fatalf("expected alice as the only follower, got %+v", followers)
	}
	reverse, err := relationships.IsFollowing(ctx, bob, alice)
	if err != nil || reverse {
		t.Fatalf("expected no reverse edge, got %v err=%v", reverse, err)
	}
}

func TestIntegration_StoryAudience(t *testing.T) {
	resetDatabase(t)
	ctx := context.Background()
	db := NewPoolAdapter(testPool)
	relationships := NewRelationshipService(db)
	connections := NewConnectionService(db)
	stories := NewStoryService(db)

	users := createUsers(t, 6)
	viewer, followee, follower, connection, stranger, stale := users[0], users[1], users[2], users[3], users[4], users[5]

	mustToggle := func(actor, target uuid.UUID) {
		if _, err := relationships.ToggleFollow(ctx, actor, target); err != nil {
			t.Fatalf("follow: %v", err)
		}
	}
	mustToggle(viewer.ID, followee.ID)
	mustToggle(follower.ID, viewer.ID)
	mustToggle(viewer.ID, stale.ID)

	sent, err := connections.SendRequest(ctx, connection.ID, viewer.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := connections.Respond(ctx, viewer.ID, sent.Request.ID, "accept"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	for _, author := range []*models.User{viewer, followee, follower, connection, stranger} {
		if _, err := stories.Create(ctx, testFaker.StoryParams(author.ID)); err != nil {
			t.Fatalf("create story: %v", err)
		}
	}
	if _, err := testPool.Exec(ctx,
		`INSERT INTO stories (author_id, content, created_at) VALUES ($1, 'old news', NOW() - INTERVAL '25 hours')`,
		stale.ID,
	); err != nil {
		t.Fatalf("insert expired story: %v", err)
	}

	visible, err := stories.ListVisible(ctx, viewer.ID, time.Now())
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}

	authors := map[uuid.UUID]bool{}
	for i, story := range visible {
		authors[story.Author.ID] = true
		if i > 0 && story.CreatedAt.After(visible[i-1].CreatedAt) {
			t.Fatal("expected newest first")
		}
	}
	for _, want := range []*models.User{viewer, followee, follower, connection} {
		if !authors[want.ID] {
			t.Errorf("expected a story from %s", want.Username)
		}
	}
	if authors[stranger.ID] {
		t.Error("stranger's story must not be visible")
	}
	if authors[stale.ID] {
		t.Error("expired story must not be visible")
	}
	if len(visible) != 4 {
		t.Fatalf("expected 4 stories, got %d", len(visible))
	}
}
