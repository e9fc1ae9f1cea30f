package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Reaper abandons games in rooms nobody has touched for a while. The
// engine has no timeouts of its own; a stalled round sits until this
// sweeper clears it. The quartz clock lets tests drive time explicitly.
type Reaper struct {
	service  *GameService
	clock    quartz.Clock
	idle     time.Duration
	interval time.Duration
	logger   *log.Logger
}

// NewReaper creates a reaper that sweeps every interval and abandons
// games idle longer than idle.
func NewReaper(service *GameService, clock quartz.Clock, idle, interval time.Duration, logger *log.Logger) *Reaper {
	return &Reaper{
		service:  service,
		clock:    clock,
		idle:     idle,
		interval: interval,
		logger:   logger.WithPrefix("reaper"),
	}
}

// Run sweeps until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if reaped := r.service.reapIdle(r.idle); reaped > 0 {
				r.logger.Info("Abandoned idle games", "count", reaped)
			}
		}
	}
}

// reapIdle abandons games in rooms idle beyond the cutoff and removes
// rooms that are both empty and gameless. Returns how many games were
// abandoned.
func (s *GameService) reapIdle(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	now := s.clock.Now()
	for name, room := range s.rooms {
		if now.Sub(room.lastActive) < idle {
			continue
		}
		if room.game != nil {
			s.notice(room, "The game was abandoned after sitting idle too long.")
			room.game = nil
			reaped++
			s.logger.Info("Reaped idle game", "room", name)
		}
		if len(room.members) == 0 {
			delete(s.rooms, name)
		}
	}
	return reaped
}
