package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/handkerchief-backend/internal/config"
	"github.com/scythe504/handkerchief-backend/internal/database"
	"github.com/scythe504/handkerchief-backend/internal/game"
	"github.com/scythe504/handkerchief-backend/internal/websocket"
)

type Server struct {
	port int
	cfg  config.Config

	hub  *websocket.Hub
	game *game.Service
	db   database.Service // nil when match history is disabled
}

func NewServer(cfg config.Config, hub *websocket.Hub, svc *game.Service, db database.Service) *http.Server {
	s := &Server{
		port: cfg.Port,
		cfg:  cfg,
		hub:  hub,
		game: svc,
		db:   db,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
