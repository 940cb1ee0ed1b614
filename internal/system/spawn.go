package system

import (
	"time"

	coresys "github.com/blockbots/server/internal/core/system"
)

// Drainer answers queued spawn requests. *spawn.Deferred implements it.
type Drainer interface {
	Drain() int
}

// SpawnSystem delivers spawn completions at the start of each tick so new
// entities join the world before anything else runs. Phase 0 (Input).
type SpawnSystem struct {
	spawner Drainer
}

func NewSpawnSystem(spawner Drainer) *SpawnSystem {
	return &SpawnSystem{spawner: spawner}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *SpawnSystem) Update(_ time.Duration) {
	s.spawner.Drain()
}
