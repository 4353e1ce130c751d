package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"audiovault/internal/config"
	"audiovault/internal/database"
	"audiovault/internal/domain/recording"
	"audiovault/internal/middleware"
	"audiovault/internal/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}

	logger := setupLogger(cfg)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := recording.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	registry := recording.NewRegistry(db)
	chunkStore := recording.NewChunkStore(db)
	streamStore := recording.NewStreamChunkStore(db)
	service := recording.NewService(registry, chunkStore, streamStore)
	handler := recording.NewHandler(service)

	if cfg.App.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"message": "audiovault API"})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	recording.RegisterRoutes(api, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Str("env", cfg.App.Environment).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == config.EnvDevelop {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
