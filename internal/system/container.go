package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/blockbots/server/internal/audio"
	"github.com/blockbots/server/internal/core/ecs"
	"github.com/blockbots/server/internal/core/event"
	coresys "github.com/blockbots/server/internal/core/system"
	"github.com/blockbots/server/internal/world"
)

// ContainerSystem processes each container's queue one block at a time and
// returns finished blocks to circulation. Phase 3 (PostUpdate).
type ContainerSystem struct {
	deps *Deps
}

func NewContainerSystem(deps *Deps) *ContainerSystem {
	return &ContainerSystem{deps: deps}
}

func (s *ContainerSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ContainerSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	s.deps.World.Containers.Each(func(_ ecs.EntityID, c *world.Container) {
		c.FadeIndicators(sec)
		if c.IsProcessingBlock {
			s.advance(c, sec)
		}
		if !c.IsProcessingBlock {
			s.startNext(c)
		}
	})
}

func (s *ContainerSystem) startNext(c *world.Container) {
	ws := s.deps.World
	for {
		id, ok := c.Dequeue()
		if !ok {
			return
		}
		b := ws.Block(id)
		if b == nil {
			continue // destroyed by a reset
		}
		b.StartProcessing(c.RecyclePoint())
		c.Active = id
		c.IsProcessingBlock = true
		c.InProgressGlow = 1
		return
	}
}

func (s *ContainerSystem) advance(c *world.Container, dt float64) {
	ws := s.deps.World
	b := ws.Block(c.Active)
	if b == nil {
		c.Active = ecs.NoEntity
		c.IsProcessingBlock = false
		return
	}
	if !b.AdvanceProcessing(dt) {
		return
	}

	waited := b.ProcessTimer.Elapsed
	from := b.Color
	ws.RecycleBlock(b, s.deps.Rand)
	c.Processed++
	c.Active = ecs.NoEntity
	c.IsProcessingBlock = false
	c.CompleteGlow = 1
	s.deps.play(audio.ScannerBeep)

	event.Emit(s.deps.Bus, event.BlockProcessed{
		Container: c.ID,
		Block:     b.ID,
		Color:     from.String(),
		NewColor:  b.Color.String(),
		Waited:    waited,
	})
	s.deps.Log.Debug("block processed",
		zap.Uint64("container", uint64(c.ID)),
		zap.Stringer("color", from),
		zap.Stringer("new_color", b.Color),
		zap.Int("queue", len(c.Queue)))
}
