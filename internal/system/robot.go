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

// RobotSystem drives every robot through its delivery cycle. Phase 2
// (Update), so robots always act before containers within a tick.
type RobotSystem struct {
	deps *Deps
}

func NewRobotSystem(deps *Deps) *RobotSystem {
	return &RobotSystem{deps: deps}
}

func (s *RobotSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *RobotSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	s.deps.World.Robots.Each(func(_ ecs.EntityID, r *world.Robot) {
		s.tickRobot(r, sec)
	})
}

func (s *RobotSystem) tickRobot(r *world.Robot, dt float64) {
	// A turn in flight completes regardless of what the robot is doing.
	r.AdvanceTurn(dt)

	switch r.State {
	case world.BootingUp:
		s.bootingUp(r, dt)
	case world.SearchForBlock:
		s.searchForBlock(r)
	case world.GoToTargetBlock:
		s.goToTargetBlock(r, dt)
	case world.PickUpBlock:
		if r.StateTimer.Advance(dt) {
			s.enter(r, world.FindContainer)
		}
	case world.FindContainer:
		// Evaluated on entry only. Still here means no container exists for
		// the held color: idle hold.
	case world.PrepareToDeliverBlock:
		s.prepareToDeliver(r, dt)
	case world.DeliverBlock:
		s.deliverBlock(r, dt)
	default:
		panic("system: unknown robot state " + r.State.String())
	}
}

func (s *RobotSystem) bootingUp(r *world.Robot, dt float64) {
	if !r.StateTimer.Running() {
		r.BootDelay = s.bootDelay()
		r.StateTimer.Start(r.BootDelay)
		s.deps.Log.Debug("robot booting", zap.Uint64("robot", uint64(r.ID)), zap.Float64("delay", r.BootDelay))
	}
	if r.StateTimer.Advance(dt) {
		s.enter(r, world.SearchForBlock)
	}
}

func (s *RobotSystem) bootDelay() float64 {
	roll := s.deps.Rand.Float64()
	if s.deps.Scripts != nil {
		if d, ok := s.deps.Scripts.BootDelay(world.BootDelayMin, world.BootDelayMax, roll); ok {
			return d
		}
	}
	return world.BootDelayMin + (world.BootDelayMax-world.BootDelayMin)*roll
}

func (s *RobotSystem) searchForBlock(r *world.Robot) {
	ws := s.deps.World
	id, _, ok := ws.Index.RayNearest(world.KindBlock, r.Pos.X, r.Facing, r.VisionRange)
	if ok {
		if b := ws.Block(id); b != nil && !b.Targeted {
			b.Targeted = true
			r.TargetBlock = id
			event.Emit(s.deps.Bus, event.BlockClaimed{Robot: r.ID, Block: id, Color: b.Color.String()})
			s.enter(r, world.GoToTargetBlock)
			return
		}
	}
	// Nothing claimable ahead: look the other way. Ignored while turning.
	r.BeginTurn()
}

func (s *RobotSystem) goToTargetBlock(r *world.Robot, dt float64) {
	b := s.deps.World.Block(r.TargetBlock)
	if b == nil {
		s.abandon(r)
		return
	}
	if !s.moveTo(r, b.Pos.X, dt) {
		return
	}
	s.deps.World.DisableBlockPhysics(b)
	s.enter(r, world.PickUpBlock)
}

func (s *RobotSystem) prepareToDeliver(r *world.Robot, dt float64) {
	c := s.deps.World.Container(r.TargetContainer)
	if c == nil {
		s.abandon(r)
		return
	}
	if s.moveTo(r, c.PrepareToDropOffPoint().X, dt) {
		s.enter(r, world.DeliverBlock)
	}
}

func (s *RobotSystem) deliverBlock(r *world.Robot, dt float64) {
	ws := s.deps.World
	c := ws.Container(r.TargetContainer)
	b := ws.Block(r.TargetBlock)
	if c == nil || b == nil {
		s.abandon(r)
		return
	}

	if !r.Dropping {
		if !s.moveTo(r, c.DropOffPoint().X, dt) {
			return
		}
		b.CarriedBy = ecs.NoEntity
		b.Pos = c.DropOffPoint()
		s.deps.play(audio.RobotBlip02)
		r.Score++
		r.Dropping = true
		r.StateTimer.Start(world.DropDuration)
		return
	}

	if !r.StateTimer.Advance(dt) {
		return
	}
	c.Receive(b)
	r.Dropping = false
	event.Emit(s.deps.Bus, event.BlockDelivered{
		Robot:     r.ID,
		Block:     b.ID,
		Container: c.ID,
		Color:     b.Color.String(),
		Score:     r.Score,
	})
	s.deps.Log.Info("block delivered",
		zap.Uint64("robot", uint64(r.ID)),
		zap.String("color", b.Color.String()),
		zap.Int("score", r.Score),
		zap.Int("queue", len(c.Queue)))
	r.TargetBlock = ecs.NoEntity
	r.TargetContainer = ecs.NoEntity
	s.enter(r, world.SearchForBlock)
}

// enter switches state and runs the new state's entry action.
func (s *RobotSystem) enter(r *world.Robot, next world.RobotState) {
	prev := r.State
	r.State = next
	r.StateTimer.Stop()
	event.Emit(s.deps.Bus, event.RobotStateChanged{Robot: r.ID, From: prev.String(), To: next.String()})
	s.deps.Log.Debug("robot state",
		zap.Uint64("robot", uint64(r.ID)),
		zap.Stringer("from", prev),
		zap.Stringer("to", next))

	switch next {
	case world.PickUpBlock:
		if b := s.deps.World.Block(r.TargetBlock); b != nil {
			b.CarriedBy = r.ID
		}
		s.deps.play(audio.RobotBlip01)
		r.StateTimer.Start(world.PickUpDuration)
	case world.FindContainer:
		s.findContainer(r)
	}
}

func (s *RobotSystem) findContainer(r *world.Robot) {
	ws := s.deps.World
	b := ws.Block(r.TargetBlock)
	if b == nil {
		s.abandon(r)
		return
	}
	c := ws.ContainerForColor(b.Color)
	if c == nil {
		s.deps.Log.Warn("no container for held block, holding",
			zap.Uint64("robot", uint64(r.ID)),
			zap.String("color", b.Color.String()))
		return
	}
	r.TargetContainer = c.ID
	if c.IsBehind(r.Pos.X) {
		s.enter(r, world.PrepareToDeliverBlock)
		return
	}
	s.enter(r, world.DeliverBlock)
}

// abandon drops a target that vanished under a scene reset and returns to
// searching.
func (s *RobotSystem) abandon(r *world.Robot) {
	r.TargetBlock = ecs.NoEntity
	r.TargetContainer = ecs.NoEntity
	r.Dropping = false
	s.enter(r, world.SearchForBlock)
}

// moveTo steps the robot toward x and reports arrival.
func (s *RobotSystem) moveTo(r *world.Robot, x, dt float64) bool {
	nx, heading, arrived := r.Mover.Step(r.Pos.X, x, dt)
	if heading.Valid() && !r.Turning {
		r.Facing = heading
	}
	s.deps.World.MoveRobot(r, nx)
	return arrived
}
