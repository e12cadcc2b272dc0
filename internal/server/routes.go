package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

const defaultMatchLimit = 20

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)
	r.HandleFunc("/ping", s.PingHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/test", s.APITestHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/rooms-available", s.GetRoomToJoin).Methods(http.MethodGet)
	r.HandleFunc("/matches", s.RecentMatchesHandler).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.hub.ServeWS)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Handkerchief game server is running"))
}

// PingHandler is the keepalive target for hosting platforms that idle
// out quiet instances.
func (s *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}

func (s *Server) APITestHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "CORS is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"connections": s.hub.ConnectionCount(),
		"rooms":       s.game.Registry().Count(),
	}

	status := http.StatusOK
	if s.db != nil {
		dbHealth := s.db.Health()
		resp["database"] = dbHealth
		if dbHealth["status"] != "up" {
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

// GetRoomToJoin reports a room a random join could take right now.
func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	roomId := s.game.Registry().FindRandomRoom("")

	var resp internal.Response

	if roomId != "" {
		resp = internal.Response{
			StatusCode:    http.StatusOK,
			RespStartTime: startTime,
			Data:          roomId,
		}
	} else {
		resp = internal.Response{
			StatusCode:    http.StatusNotFound,
			RespStartTime: startTime,
			Data:          "No joinable rooms available",
		}
	}

	endTime := time.Now().UnixMilli()
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - startTime

	writeJSON(w, resp.StatusCode, resp)
}

// RecentMatchesHandler lists finished matches, newest first. The optional
// limit query parameter caps the result.
func (s *Server) RecentMatchesHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, internal.Response{
			StatusCode:    http.StatusServiceUnavailable,
			RespStartTime: startTime,
			RespEndTime:   startTime,
			Data:          "Match history is not enabled",
		})
		return
	}

	limit := defaultMatchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, internal.Response{
				StatusCode:    http.StatusBadRequest,
				RespStartTime: startTime,
				RespEndTime:   startTime,
				Data:          "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	matches, err := s.db.RecentMatches(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent matches")
		writeJSON(w, http.StatusInternalServerError, internal.Response{
			StatusCode:    http.StatusInternalServerError,
			RespStartTime: startTime,
			RespEndTime:   time.Now().UnixMilli(),
			Data:          "Internal server error",
		})
		return
	}

	endTime := time.Now().UnixMilli()
	writeJSON(w, http.StatusOK, internal.Response{
		StatusCode:    http.StatusOK,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          matches,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}
