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

	"github.com/isdelr/tasktrack-be/internal/api"
	"github.com/isdelr/tasktrack-be/internal/auth"
	"github.com/isdelr/tasktrack-be/internal/config"
	"github.com/isdelr/tasktrack-be/internal/logger"
	"github.com/isdelr/tasktrack-be/internal/maintenance"
	"github.com/isdelr/tasktrack-be/internal/services"
	"github.com/isdelr/tasktrack-be/internal/store"
	"github.com/isdelr/tasktrack-be/internal/store/mongostore"
	"github.com/isdelr/tasktrack-be/internal/store/sqlitestore"
	"github.com/isdelr/tasktrack-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize store")
	}
	defer st.Close(context.Background())

	revoker, err := newRevoker(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token revocation")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(st, hub)
	userService := services.NewUserService(st, eventService)
	projectService := services.NewProjectService(st, eventService, cfg.MaxProjectsPerUser)
	taskService := services.NewTaskService(st, st, eventService)

	// Set up and run the background scheduler
	scheduler, err := maintenance.NewScheduler(st, st, cfg.OrphanSweepSchedule, cfg.EventPruneSchedule, cfg.EventRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure maintenance scheduler")
	}
	go scheduler.Run()

	router := api.NewRouter(api.Dependencies{
		Users:          userService,
		Projects:       projectService,
		Tasks:          taskService,
		Events:         eventService,
		Issuer:         auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Revoker:        revoker,
		Hub:            hub,
		Store:          st,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// openStore opens and migrates the backend selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close(ctx)
			return nil, fmt.Errorf("migrate mongo: %w", err)
		}
		return st, nil
	default:
		db, err := sqlitestore.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := sqlitestore.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlitestore.New(db), nil
	}
}

// newRevoker shares revocations through Redis when configured. The in-memory
// fallback only suits a single instance.
func newRevoker(cfg *config.Config) (auth.Revoker, error) {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, token revocation is kept in memory")
		return auth.NewMemoryRevoker(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	return auth.NewRedisRevoker(rdb), nil
}
