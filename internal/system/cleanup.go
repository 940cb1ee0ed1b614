package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/blockbots/server/internal/core/ecs"
	coresys "github.com/blockbots/server/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.Pending(); n > 0 {
		s.log.Debug("destroying entities", zap.Int("count", n))
	}
	s.world.FlushDestroyQueue()
}
