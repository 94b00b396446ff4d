package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/config"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/database"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/handlers"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/logging"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/middleware"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Unknown LOG_LEVEL, using info", map[string]interface{}{"value": cfg.Server.LogLevel})
	}
	if cfg.Server.Debug {
		level = logging.LevelDebug
	}
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)
	logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})

	logger.Info("Starting HoriZoniX server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("configuring media storage: %w", err)
	}
	logger.Info("Media storage ready", map[string]interface{}{"provider": cfg.Storage.Provider})

	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter).WithSessionDuration(cfg.Auth.SessionTTL)
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	emailService := services.NewEmailService(&cfg.Email, redisAdapter, userService)
	relationshipService := services.NewRelationshipService(dbAdapter)
	connectionService := services.NewConnectionService(dbAdapter)
	storyService := services.NewStoryService(dbAdapter)
	postService := services.NewPostService(dbAdapter)
	messageService := services.NewMessageService(dbAdapter)
	mediaService := services.NewMediaService(store)

	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, tokenService, emailService, handlers.AuthOptions{
		SecureCookies:   cfg.Server.Secure,
		SessionTTL:      cfg.Auth.SessionTTL,
		AutoVerifyEmail: cfg.Auth.AutoVerifyEmail,
	})
	profileHandler := handlers.NewProfileHandler(userService, mediaService)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipService, connectionService)
	storyHandler := handlers.NewStoryHandler(storyService, mediaService)
	postHandler := handlers.NewPostHandler(postService, mediaService)
	chatHandler := handlers.NewChatHandler(messageService, mediaService)

	authMiddleware := middleware.NewAuthMiddleware(authService, tokenService, userService)
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.Server.Secure)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	cacheControl := middleware.NewCacheControl()
	compress := middleware.NewCompress()
	requestLogger := middleware.NewRequestLogger(logger)
	corsHandler := middleware.NewCORS(cfg.Server.AllowedOrigins, cfg.Server.Debug)
	authLimiter := middleware.NewAuthRateLimiter(redisDB.Client)
	apiLimiter := middleware.NewAPIRateLimiter(redisDB.Client)
	// 30 relationship writes per minute with room for a short burst.
	actionLimiter := middleware.NewActionLimiter(30, time.Minute, 10, 10*time.Minute)

	public := func(h http.HandlerFunc) http.Handler { return apiLimiter.Limit(h) }
	throttledAuth := func(h http.HandlerFunc) http.Handler { return authLimiter.Limit(h) }
	private := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(apiLimiter.Limit(h))
	}
	relationshipWrite := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(actionLimiter.Limit(apiLimiter.Limit(h)))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Accounts
	mux.Handle("GET /api/accounts/csrf", public(csrfMiddleware.GetToken))
	mux.Handle("POST /api/accounts/register", throttledAuth(authHandler.Register))
	mux.Handle("POST /api/accounts/login", throttledAuth(authHandler.Login))
	mux.Handle("POST /api/accounts/refresh", throttledAuth(authHandler.Refresh))
	mux.Handle("POST /api/accounts/logout", public(authHandler.Logout))
	mux.Handle("GET /api/accounts/me", public(authHandler.Me))
	mux.Handle("POST /api/accounts/verify-email", throttledAuth(authHandler.VerifyEmail))
	mux.Handle("POST /api/accounts/resend-verification", throttledAuth(authHandler.ResendVerification))

	mux.Handle("GET /api/accounts/profile", private(profileHandler.Get))
	mux.Handle("GET /api/accounts/profile/{user_id}", private(profileHandler.Get))
	mux.Handle("PUT /api/accounts/profile/update", private(profileHandler.Update))
	mux.Handle("GET /api/accounts/search", private(profileHandler.Search))

	// Relationships
	mux.Handle("POST /api/accounts/follow/{user_id}", relationshipWrite(relationshipHandler.ToggleFollow))
	mux.Handle("GET /api/accounts/followers", private(relationshipHandler.Followers))
	mux.Handle("GET /api/accounts/followers/{user_id}", private(relationshipHandler.Followers))
	mux.Handle("GET /api/accounts/following", private(relationshipHandler.Following))
	mux.Handle("GET /api/accounts/following/{user_id}", private(relationshipHandler.Following))
	mux.Handle("GET /api/accounts/connections", private(relationshipHandler.Connections))
	mux.Handle("GET /api/accounts/connections/{user_id}", private(relationshipHandler.Connections))
	mux.Handle("GET /api/accounts/connections/requests", private(relationshipHandler.PendingRequests))
	mux.Handle("POST /api/accounts/connections/request/{user_id}", relationshipWrite(relationshipHandler.SendRequest))
	mux.Handle("POST /api/accounts/connections/respond/{request_id}", relationshipWrite(relationshipHandler.Respond))
	mux.Handle("POST /api/accounts/connections/cancel/{user_id}", relationshipWrite(relationshipHandler.Cancel))
	mux.Handle("GET /api/accounts/status/{user_id}", private(relationshipHandler.Status))

	// Feed
	mux.Handle("GET /api/posts", private(postHandler.List))
	mux.Handle("GET /api/posts/{$}", private(postHandler.List))
	mux.Handle("POST /api/posts", private(postHandler.Create))
	mux.Handle("POST /api/posts/{$}", private(postHandler.Create))
	mux.Handle("GET /api/posts/stories", private(storyHandler.List))
	mux.Handle("GET /api/posts/stories/{$}", private(storyHandler.List))
	mux.Handle("POST /api/posts/stories/create", private(storyHandler.Create))
	mux.Handle("GET /api/posts/{id}", private(postHandler.Get))
	mux.Handle("PUT /api/posts/{id}", private(postHandler.Update))
	mux.Handle("DELETE /api/posts/{id}", private(postHandler.Delete))
	mux.Handle("POST /api/posts/{id}/like", private(postHandler.ToggleLike))
	mux.Handle("GET /api/posts/{id}/comments", private(postHandler.ListComments))
	mux.Handle("POST /api/posts/{id}/comments", private(postHandler.AddComment))
	mux.Handle("POST /api/posts/{id}/share", private(postHandler.Share))

	// Chat
	mux.Handle("GET /api/chat/recent", private(chatHandler.Recent))
	mux.Handle("GET /api/chat/{user_id}", private(chatHandler.Conversation))
	mux.Handle("POST /api/chat/{user_id}/send", private(chatHandler.Send))

	if local, ok := store.(*storage.LocalStorage); ok {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(local.Dir()))))
	}

	// Outermost last.
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = csrfMiddleware.Protect(handler)
	handler = cacheControl.Apply(handler)
	handler = compress.Apply(handler)
	handler = securityHeaders.Apply(handler)
	handler = corsHandler.Handler(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Media uploads need more headroom than JSON calls.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
