// Command seed fills a development database with fake users, follows,
// connection requests in every state, and fresh stories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/config"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/database"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/logging"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/testutil"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "Horizon#2025"

type options struct {
	users      int
	seed       int64
	migrations string
}

func main() {
	var opts options
	flag.IntVar(&opts.users, "users", 25, "number of fake users to create")
	flag.Int64Var(&opts.seed, "seed", 1, "random seed for reproducible data")
	flag.StringVar(&opts.migrations, "migrations", "migrations", "path to the migrations directory")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		logging.Error("Seeding failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.users < 2 {
		return errors.New("need at least two users")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.Database.DSN(), opts.migrations)
	if err != nil {
		return err
	}
	err = migrator.Up()
	_ = migrator.Close()
	if err != nil {
		return err
	}

	conn := services.NewPoolAdapter(db.Pool)
	s := &seeder{
		faker:         testutil.NewFaker(opts.seed),
		users:         services.NewUserService(conn),
		auth:          services.NewAuthService(conn, nil),
		relationships: services.NewRelationshipService(conn),
		connections:   services.NewConnectionService(conn),
		stories:       services.NewStoryService(conn),
	}
	return s.seed(ctx, opts.users)
}

type seeder struct {
	faker         *testutil.Faker
	users         *services.UserService
	auth          *services.AuthService
	relationships *services.RelationshipService
	connections   *services.ConnectionService
	stories       *services.StoryService
}

func (s *seeder) seed(ctx context.Context, n int) error {
	hash, err := s.auth.HashPassword(DefaultPassword)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, n)
	for len(ids) < n {
		params := s.faker.UserParams()
		params.PasswordHash = hash
		user, err := s.users.Create(ctx, params)
		if errors.Is(err, services.ErrEmailAlreadyExists) || errors.Is(err, services.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		ids = append(ids, user.ID)
	}
	logging.Info("Seeded users", map[string]interface{}{"count": len(ids), "password": DefaultPassword})

	follows := 0
	for _, actor := range ids {
		for _, target := range ids {
			if actor == target || !s.faker.Bool() {
				continue
			}
			if _, err := s.relationships.ToggleFollow(ctx, actor, target); err != nil {
				return fmt.Errorf("following: %w", err)
			}
			follows++
		}
	}

	counts := map[models.ConnectionRequestStatus]int{}
	for i := range ids {
		sender, receiver := ids[i], ids[(i+1)%len(ids)]
		status, err := s.request(ctx, sender, receiver, i%4)
		if err != nil {
			return err
		}
		counts[status]++
	}

	stories := 0
	for _, author := range ids {
		for j := s.faker.Number(0, 2); j > 0; j-- {
			if _, err := s.stories.Create(ctx, s.faker.StoryParams(author)); err != nil {
				return fmt.Errorf("creating story: %w", err)
			}
			stories++
		}
	}

	logging.Info("Seed complete", map[string]interface{}{
		"follows":  follows,
		"pending":  counts[models.ConnectionRequestPending],
		"accepted": counts[models.ConnectionRequestAccepted],
		"rejected": counts[models.ConnectionRequestRejected],
		"canceled": counts[models.ConnectionRequestCanceled],
		"stories":  stories,
	})
	return nil
}

// request sends a connection request and drives it to the state picked by kind.
func (s *seeder) request(ctx context.Context, sender, receiver uuid.UUID, kind int) (models.ConnectionRequestStatus, error) {
	sent, err := s.connections.SendRequest(ctx, sender, receiver)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	if sent.Request == nil || sent.Status != models.ConnectionRequestPending {
		return sent.Status, nil
	}

	var req *models.ConnectionRequest
	switch kind {
	case 1:
		req, err = s.connections.Respond(ctx, receiver, sent.Request.ID, string(models.RespondAccept))
	case 2:
		req, err = s.connections.Respond(ctx, receiver, sent.Request.ID, string(models.RespondReject))
	case 3:
		req, err = s.connections.Cancel(ctx, sender, receiver)
	default:
		return models.ConnectionRequestPending, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving request: %w", err)
	}
	return req.Status, nil
}
