package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal/config"
	"github.com/scythe504/handkerchief-backend/internal/database"
	"github.com/scythe504/handkerchief-backend/internal/game"
	"github.com/scythe504/handkerchief-backend/internal/server"
	"github.com/scythe504/handkerchief-backend/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg)

	var db database.Service
	var recorder game.MatchRecorder
	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err = database.New(ctx, cfg.Database.DSN())
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		recorder = db
	} else {
		log.Info().Msg("DB_HOST not set, match history disabled")
	}

	wsConfig := websocket.DefaultConfig()
	wsConfig.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if !cfg.OriginAllowed(origin) {
			log.Warn().Str("origin", origin).Msg("websocket origin rejected")
			return false
		}
		return true
	}
	hub := websocket.NewHub(wsConfig)

	svc := game.NewService(hub, game.Options{
		ResolutionDelay: cfg.Game.ResolutionDelay,
		StrictRoles:     cfg.Game.StrictRoles,
		Recorder:        recorder,
	})
	hub.SetHandler(svc)

	srv := server.NewServer(cfg, hub, svc, db)

	done := make(chan struct{})
	go gracefulShutdown(srv, hub, svc, db, done)

	log.Info().
		Int("port", cfg.Port).
		Str("env", cfg.Env).
		Strs("allowed_origins", cfg.AllowedOrigins()).
		Bool("strict_roles", cfg.Game.StrictRoles).
		Msg("starting handkerchief server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "handkerchief").Logger()
}

func gracefulShutdown(srv *http.Server, hub *websocket.Hub, svc *game.Service, db database.Service, done chan<- struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	hub.Shutdown()
	svc.Stop()
	if db != nil {
		db.Close()
	}

	close(done)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
