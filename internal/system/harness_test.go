package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blockbots/server/internal/audio"
	"github.com/blockbots/server/internal/core/ecs"
	"github.com/blockbots/server/internal/core/event"
	coresys "github.com/blockbots/server/internal/core/system"
	"github.com/blockbots/server/internal/data"
	"github.com/blockbots/server/internal/scene"
	"github.com/blockbots/server/internal/spawn"
	"github.com/blockbots/server/internal/world"
)

const step = 20 * time.Millisecond

// sim wires the full tick pipeline the way main does.
type sim struct {
	ecs     *ecs.World
	state   *world.State
	bus     *event.Bus
	audio   *audio.Recorder
	spawner *spawn.Deferred
	runner  *coresys.Runner
	mgr     *scene.Manager
	deps    *Deps
}

func newSim(t *testing.T, sc data.Scene, seed int64) *sim {
	t.Helper()
	w := ecs.NewWorld()
	s := &sim{
		ecs:     w,
		state:   world.NewState(w),
		bus:     event.NewBus(),
		audio:   &audio.Recorder{},
		spawner: spawn.NewDeferred(w, 1),
		runner:  coresys.NewRunner(),
	}
	rnd := rand.New(rand.NewSource(seed))
	s.deps = &Deps{World: s.state, Bus: s.bus, Audio: s.audio, Rand: rnd, Log: zap.NewNop()}
	s.mgr = scene.NewManager(scene.Deps{
		World:   s.state,
		Spawner: s.spawner,
		Bus:     s.bus,
		Audio:   s.audio,
		Rand:    rnd,
		Log:     zap.NewNop(),
	})

	s.runner.Register(NewCleanupSystem(w, zap.NewNop()))
	s.runner.Register(NewContainerSystem(s.deps))
	s.runner.Register(NewRobotSystem(s.deps))
	s.runner.Register(NewEventDispatchSystem(s.bus))
	s.runner.Register(NewSpawnSystem(s.spawner))

	require.NoError(t, s.mgr.Configure(sc))
	require.NoError(t, s.mgr.Start())
	return s
}

func (s *sim) tick() { s.runner.Tick(step) }

// bareWorld is a hand-placed world without the scene manager, for tests
// that need exact geometry.
type bareWorld struct {
	ecs   *ecs.World
	state *world.State
	bus   *event.Bus
	audio *audio.Recorder
	deps  *Deps
}

func newBareWorld(colors ...world.Color) *bareWorld {
	w := ecs.NewWorld()
	b := &bareWorld{
		ecs:   w,
		state: world.NewState(w),
		bus:   event.NewBus(),
		audio: &audio.Recorder{},
	}
	b.state.Configure(world.Workspace{Width: 12, Height: 12 * world.DefaultAspect}, colors)
	b.deps = &Deps{
		World: b.state,
		Bus:   b.bus,
		Audio: b.audio,
		Rand:  rand.New(rand.NewSource(7)),
		Log:   zap.NewNop(),
	}
	return b
}

func (b *bareWorld) container(c world.Color, fraction float64, dir world.Direction) *world.Container {
	ws := b.state.Workspace
	ct := &world.Container{
		ID:          b.ecs.CreateEntity(),
		Color:       c,
		Pos:         ws.GroundedPosition(fraction),
		Orientation: world.ResolveOrientation(ws, fraction, dir),
	}
	b.state.AddContainer(ct)
	return ct
}

func (b *bareWorld) block(c world.Color, x float64) *world.Block {
	bl := &world.Block{
		ID:       b.ecs.CreateEntity(),
		Color:    c,
		Pos:      world.Vec2{X: x, Y: 1},
		Physical: true,
	}
	b.state.AddBlock(bl)
	return bl
}

// searchingRobot places a robot that has finished booting.
func (b *bareWorld) searchingRobot(x float64, facing world.Direction) *world.Robot {
	ws := b.state.Workspace
	r := world.NewRobot(b.ecs.CreateEntity(), world.Vec2{X: x, Y: ws.GroundY()}, facing, 1, ws.InsetSize().X)
	r.State = world.SearchForBlock
	b.state.AddRobot(r)
	return r
}
