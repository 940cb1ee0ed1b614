// Package scene turns a scene descriptor into live entities and owns the
// scene lifecycle: configure, start, reset.
package scene

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/blockbots/server/internal/audio"
	"github.com/blockbots/server/internal/core/ecs"
	"github.com/blockbots/server/internal/core/event"
	"github.com/blockbots/server/internal/data"
	"github.com/blockbots/server/internal/scripting"
	"github.com/blockbots/server/internal/spawn"
	"github.com/blockbots/server/internal/world"
)

// MinWidth is the exclusive lower bound on workspace width.
const MinWidth = 10.0

var (
	// ErrInvalidScene wraps every descriptor rejection. The caller may fix
	// the descriptor and Configure again.
	ErrInvalidScene = errors.New("invalid scene")
	// ErrNotConfigured is returned by Start and Reset before a successful
	// Configure.
	ErrNotConfigured = errors.New("scene not configured")
)

// Preloader is implemented by audio players that load cues ahead of use.
type Preloader interface {
	PreloadList(keys ...string)
}

type Deps struct {
	World   *world.State
	Spawner spawn.Spawner
	Bus     *event.Bus
	Audio   audio.Player
	Scripts *scripting.Engine // optional
	Rand    *rand.Rand
	Log     *zap.Logger
}

// Manager owns the running scene. Single goroutine (tick loop).
type Manager struct {
	deps       Deps
	scene      data.Scene
	configured bool
	generation int

	requested map[spawn.Kind]int
	spawned   map[spawn.Kind]int
	failed    map[spawn.Kind]int
}

func NewManager(deps Deps) *Manager {
	if deps.Audio == nil {
		deps.Audio = audio.Nop{}
	}
	return &Manager{deps: deps}
}

// Validate checks a descriptor without touching the manager.
func Validate(sc data.Scene) error {
	switch {
	case sc.Robots < 1:
		return fmt.Errorf("%w: need at least one robot, got %d", ErrInvalidScene, sc.Robots)
	case sc.Blocks < 1:
		return fmt.Errorf("%w: need at least one block, got %d", ErrInvalidScene, sc.Blocks)
	case len(sc.Colors) == 0:
		return fmt.Errorf("%w: no allowed colors", ErrInvalidScene)
	case sc.Width <= MinWidth:
		return fmt.Errorf("%w: width %.2f must exceed %.0f", ErrInvalidScene, sc.Width, MinWidth)
	case sc.Height < 0:
		return fmt.Errorf("%w: negative height %.2f", ErrInvalidScene, sc.Height)
	}
	seen := make(map[world.Color]bool, len(sc.Colors))
	for _, c := range sc.Colors {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown color %d", ErrInvalidScene, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: color %s listed twice", ErrInvalidScene, c)
		}
		seen[c] = true
		p, ok := sc.Placement(c)
		if !ok {
			return fmt.Errorf("%w: no container placement for %s", ErrInvalidScene, c)
		}
		if p.Position < 0 || p.Position > 1 {
			return fmt.Errorf("%w: %s container position %.2f outside [0, 1]", ErrInvalidScene, c, p.Position)
		}
	}
	return nil
}

// Configure accepts a descriptor for the next Start. A rejected descriptor
// leaves the previous one in place.
func (m *Manager) Configure(sc data.Scene) error {
	if err := Validate(sc); err != nil {
		m.deps.Log.Warn("scene rejected", zap.String("scene", sc.Name), zap.Error(err))
		return err
	}
	if sc.SpeedMultiplier <= 0 {
		sc.SpeedMultiplier = 1
	}
	sc.Colors = append([]world.Color(nil), sc.Colors...)
	m.scene = sc
	m.configured = true
	return nil
}

// Start begins a new scene generation and requests every entity. Entities
// arrive on later ticks as the spawner answers.
func (m *Manager) Start() error {
	if !m.configured {
		return ErrNotConfigured
	}
	m.generation++
	m.requested = make(map[spawn.Kind]int)
	m.spawned = make(map[spawn.Kind]int)
	m.failed = make(map[spawn.Kind]int)

	sc := m.scene
	m.deps.World.Configure(sc.Workspace(), sc.Colors)

	if p, ok := m.deps.Audio.(Preloader); ok {
		p.PreloadList(audio.Preload...)
	}
	m.deps.Audio.Play(audio.TinyButton)

	for _, c := range sc.Colors {
		p, _ := sc.Placement(c)
		m.request(spawn.KindContainer, m.containerSpawned(p))
	}
	for i := 0; i < sc.Robots; i++ {
		m.request(spawn.KindRobot, m.robotSpawned(i))
	}
	for i := 0; i < sc.Blocks; i++ {
		m.request(spawn.KindBlock, m.blockSpawned())
	}

	m.deps.Log.Info("scene started",
		zap.String("scene", sc.Name),
		zap.Int("generation", m.generation),
		zap.Float64("width", sc.Width),
		zap.Int("robots", sc.Robots),
		zap.Int("blocks", sc.Blocks),
		zap.Int("colors", len(sc.Colors)))
	return nil
}

// Reset discards every entity and starts the scene again. Call it between
// ticks.
func (m *Manager) Reset() error {
	if m.generation == 0 {
		return ErrNotConfigured
	}
	m.deps.World.Clear()
	m.deps.Log.Info("scene reset", zap.String("scene", m.scene.Name))
	return m.Start()
}

func (m *Manager) request(kind spawn.Kind, build func(ecs.EntityID)) {
	gen := m.generation
	m.requested[kind]++
	m.deps.Spawner.Request(kind, func(id ecs.EntityID, err error) {
		if gen != m.generation {
			// Answer for a scene that no longer exists.
			if err == nil {
				m.deps.World.ECS().MarkForDestruction(id)
			}
			return
		}
		if err != nil {
			m.failed[kind]++
			m.deps.Log.Warn("spawn failed", zap.String("kind", string(kind)), zap.Error(err))
			event.Emit(m.deps.Bus, event.SpawnFailed{Kind: string(kind), Err: err.Error()})
			return
		}
		build(id)
		m.spawned[kind]++
		event.Emit(m.deps.Bus, event.EntitySpawned{Kind: string(kind), ID: id})
	})
}

func (m *Manager) containerSpawned(p data.ContainerPlacement) func(ecs.EntityID) {
	return func(id ecs.EntityID) {
		ws := m.deps.World.Workspace
		m.deps.World.AddContainer(&world.Container{
			ID:          id,
			Color:       p.Color,
			Pos:         ws.GroundedPosition(p.Position),
			Orientation: world.ResolveOrientation(ws, p.Position, p.Orientation),
		})
	}
}

func (m *Manager) robotSpawned(index int) func(ecs.EntityID) {
	return func(id ecs.EntityID) {
		ws := m.deps.World.Workspace
		roll := m.deps.Rand.Float64()
		place := scripting.RobotSpawn{
			Position:        float64(index+1) / float64(m.scene.Robots+1),
			Facing:          world.Right,
			SpeedMultiplier: m.scene.SpeedMultiplier,
		}
		if roll < 0.5 {
			place.Facing = world.Left
		}
		if m.deps.Scripts != nil {
			place, _ = m.deps.Scripts.RobotSpawn(index, m.scene.Robots, roll, place)
		}
		m.deps.World.AddRobot(world.NewRobot(id, ws.GroundedPosition(place.Position),
			place.Facing, place.SpeedMultiplier, ws.InsetSize().X))
	}
}

func (m *Manager) blockSpawned() func(ecs.EntityID) {
	return func(id ecs.EntityID) {
		b := &world.Block{ID: id}
		b.Reinitialize(m.deps.World.BlockRule, m.deps.Rand)
		m.deps.World.AddBlock(b)
	}
}

// Name returns the configured scene name.
func (m *Manager) Name() string { return m.scene.Name }

// Generation counts Starts; 0 before the first.
func (m *Manager) Generation() int { return m.generation }

// Scene returns the configured descriptor.
func (m *Manager) Scene() data.Scene { return m.scene }

// Spawned returns how many entities of kind joined the current generation.
func (m *Manager) Spawned(kind spawn.Kind) int { return m.spawned[kind] }

// Failed returns how many spawns of kind failed in the current generation.
func (m *Manager) Failed(kind spawn.Kind) int { return m.failed[kind] }

// Ready reports whether every request of the current generation has been
// answered.
func (m *Manager) Ready() bool {
	if m.generation == 0 {
		return false
	}
	for kind, n := range m.requested {
		if m.spawned[kind]+m.failed[kind] < n {
			return false
		}
	}
	return true
}

// Score sums every robot's score.
func (m *Manager) Score() int {
	total := 0
	m.deps.World.Robots.Each(func(_ ecs.EntityID, r *world.Robot) {
		total += r.Score
	})
	return total
}
