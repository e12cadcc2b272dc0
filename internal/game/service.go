package game

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal"
)

// MatchRecorder stores finished matches. It is optional.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, match internal.MatchRecord) error
}

type Options struct {
	Clock clockwork.Clock
	Rand  *rand.Rand

	// ResolutionDelay is the pause between a round result and the next
	// round. Zero means internal.ResolutionDelay.
	ResolutionDelay time.Duration

	// StrictRoles ignores drops that do not come from the Dropper and
	// checks that do not come from the Checker.
	StrictRoles bool

	Recorder MatchRecorder
}

// Service applies inbound game events to the rooms in its Registry and
// sends the resulting notifications through its Notifier.
type Service struct {
	registry *Registry
	notifier Notifier
	timer    *RoundTimer
	clock    clockwork.Clock

	resolutionDelay time.Duration
	strictRoles     bool
	recorder        MatchRecorder
}

func NewService(notifier Notifier, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ResolutionDelay <= 0 {
		opts.ResolutionDelay = internal.ResolutionDelay
	}
	return &Service{
		registry:        NewRegistry(opts.Clock, opts.Rand),
		notifier:        notifier,
		timer:           NewRoundTimer(opts.Clock),
		clock:           opts.Clock,
		resolutionDelay: opts.ResolutionDelay,
		strictRoles:     opts.StrictRoles,
		recorder:        opts.Recorder,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Stop abandons all pending round timers.
func (s *Service) Stop() {
	s.timer.Stop()
	log.Info().Int("rooms", s.registry.Count()).Msg("game service stopped")
}

func (s *Service) nowMs() int64 {
	return s.clock.Now().UnixMilli()
}
