package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

// Service is the match history store.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	RecordMatch(ctx context.Context, match internal.MatchRecord) error
	RecentMatches(ctx context.Context, limit int) ([]internal.MatchRecord, error)

	Close()
}

type service struct {
	pool *pgxpool.Pool
}

const createMatchesTable = `
CREATE TABLE IF NOT EXISTS matches (
	id            BIGSERIAL PRIMARY KEY,
	room_id       VARCHAR(16) NOT NULL,
	winner_id     TEXT NOT NULL,
	winner_name   TEXT NOT NULL,
	players       JSONB NOT NULL,
	rounds_played INTEGER NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matches_finished_at ON matches(finished_at DESC);
`

const maxRecentMatches = 100

// New connects to dsn and makes sure the matches table exists.
func New(ctx context.Context, dsn string) (Service, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createMatchesTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create matches table: %w", err)
	}

	log.Info().Str("host", config.ConnConfig.Host).Str("database", config.ConnConfig.Database).Msg("connected to database")
	return &service{pool: pool}, nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("database health check failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	poolStats := s.pool.Stat()
	stats["total_connections"] = fmt.Sprintf("%d", poolStats.TotalConns())
	stats["idle_connections"] = fmt.Sprintf("%d", poolStats.IdleConns())
	stats["acquired_connections"] = fmt.Sprintf("%d", poolStats.AcquiredConns())
	stats["max_connections"] = fmt.Sprintf("%d", poolStats.MaxConns())

	if poolStats.AcquiredConns() >= poolStats.MaxConns() {
		stats["message"] = "The database is experiencing heavy load."
	}
	return stats
}

func (s *service) RecordMatch(ctx context.Context, match internal.MatchRecord) error {
	players, err := json.Marshal(match.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO matches (room_id, winner_id, winner_name, players, rounds_played, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		match.RoomID, match.WinnerID, match.WinnerName, string(players),
		match.RoundsPlayed, match.StartedAt, match.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match for room %s: %w", match.RoomID, err)
	}
	return nil
}

// RecentMatches returns up to limit matches, newest first.
func (s *service) RecentMatches(ctx context.Context, limit int) ([]internal.MatchRecord, error) {
	if limit <= 0 || limit > maxRecentMatches {
		limit = maxRecentMatches
	}

	rows, err := s.pool.Query(ctx, `
		SELECT room_id, winner_id, winner_name, players, rounds_played, started_at, finished_at
		FROM matches
		ORDER BY finished_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]internal.MatchRecord, 0, limit)
	for rows.Next() {
		var (
			match   internal.MatchRecord
			players []byte
		)
		if err := rows.Scan(
			&match.RoomID, &match.WinnerID, &match.WinnerName, &players,
			&match.RoundsPlayed, &match.StartedAt, &match.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if err := json.Unmarshal(players, &match.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players for room %s: %w", match.RoomID, err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	return matches, nil
}

// Close closes the connection pool.
func (s *service) Close() {
	log.Info().Msg("disconnected from database")
	s.pool.Close()
}
