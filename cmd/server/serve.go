package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/task-hierarchy-api/internal/config"
	"github.com/yukikurage/task-hierarchy-api/internal/constants"
	"github.com/yukikurage/task-hierarchy-api/internal/database"
	"github.com/yukikurage/task-hierarchy-api/internal/handlers"
	"github.com/yukikurage/task-hierarchy-api/internal/jobs"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
	"github.com/yukikurage/task-hierarchy-api/internal/session"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("seed", true, "load the default hierarchy on startup")
	_ = settings.BindPFlag("HTTP_ADDR", cmd.Flags().Lookup("addr"))
	_ = settings.BindPFlag("SEED_DEFAULTS", cmd.Flags().Lookup("seed"))
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Run migrations
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.SeedDefaults || cfg.SeedFile != "" {
		if err := runSeed(ctx, cfg.SeedFile); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	scheduler := jobs.NewScheduler()
	tokenStore, cookieStore, err := sessionStores(cfg, scheduler)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Configure session options based on environment
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	r := gin.Default()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookieStore))
	handlers.RegisterRoutes(r, buildServices(cfg, tokenStore))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go shutdownOnDone(ctx, srv, 5*time.Second)

	log.Printf("Server starting on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// shutdownOnDone drains srv once ctx is cancelled, giving in-flight requests
// up to timeout to finish.
func shutdownOnDone(ctx context.Context, srv *http.Server, timeout time.Duration) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

// sessionStores picks where bearer sessions and cookie sessions live. The
// memory store is swept on a schedule; redis expires keys on its own.
func sessionStores(cfg *config.Config, scheduler *jobs.Scheduler) (session.Store, sessions.Store, error) {
	if cfg.SessionStore == "redis" {
		store, err := redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			"",              // username (empty for default user)
			"",              // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		return session.NewRedisStore(session.NewRedisPool(cfg.RedisAddr())), store, nil
	}

	memory := session.NewMemoryStore()
	if _, err := scheduler.ScheduleSweep("session sweep", cfg.SessionSweepInterval, memory); err != nil {
		return nil, nil, fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	return memory, cookie.NewStore([]byte(cfg.SessionSecret)), nil
}

func buildServices(cfg *config.Config, tokenStore session.Store) handlers.Services {
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokens := session.NewTokenIssuer(cfg.JWTSecret, constants.TokenIssuer, cfg.SessionTTL)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	return handlers.Services{
		Auth:       services.NewAuthService(userRepo, tokenStore, tokens),
		Users:      services.NewUserService(userRepo),
		Visibility: services.NewVisibilityService(taskRepo, userRepo),
		Assignment: services.NewAssignmentService(taskRepo, userRepo),
		Lifecycle:  services.NewLifecycleService(taskRepo, userRepo),
		Reporting:  services.NewReportingService(taskRepo),
		Stats:      services.NewStatsService(taskRepo, userRepo),
		AI:         aiService,
	}
}
