package world

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/rand"

	"github.com/blockbots/server/internal/core/ecs"
	"golang.org/x/crypto/blake2b"
)

// State holds every scene entity in memory.
// Accessed only from the tick goroutine, no locks needed.
type State struct {
	ecs        *ecs.World
	Blocks     *ecs.PtrComponentStore[Block]
	Containers *ecs.PtrComponentStore[Container]
	Robots     *ecs.PtrComponentStore[Robot]
	Index      *SpatialIndex

	Workspace Workspace
	BlockRule BlockConfig
}

func NewState(w *ecs.World) *State {
	s := &State{
		ecs:        w,
		Blocks:     ecs.NewPtrComponentStore[Block](),
		Containers: ecs.NewPtrComponentStore[Container](),
		Robots:     ecs.NewPtrComponentStore[Robot](),
		Index:      NewSpatialIndex(defaultCellSize),
	}
	w.Registry().Register(s.Blocks)
	w.Registry().Register(s.Containers)
	w.Registry().Register(s.Robots)
	w.Registry().Register(indexRemover{s.Index})
	return s
}

// indexRemover lets the ECS registry drop destroyed entities from the index.
type indexRemover struct{ g *SpatialIndex }

func (r indexRemover) Remove(id ecs.EntityID) { r.g.Remove(id) }

// ECS exposes the underlying entity world.
func (s *State) ECS() *ecs.World { return s.ecs }

// Configure sets the workspace and block spawn rule for a new scene.
func (s *State) Configure(ws Workspace, colors []Color) {
	s.Workspace = ws
	s.BlockRule = BlockConfig{
		AllowedColors: append([]Color(nil), colors...),
		Workspace:     ws,
	}
}

func (s *State) AddBlock(b *Block) {
	s.Blocks.Set(b.ID, b)
	if b.Physical {
		s.Index.Add(b.ID, KindBlock, b.Pos.X)
	}
}

func (s *State) AddContainer(c *Container) {
	s.Containers.Set(c.ID, c)
	s.Index.Add(c.ID, KindContainer, c.Pos.X)
}

func (s *State) AddRobot(r *Robot) {
	s.Robots.Set(r.ID, r)
	s.Index.Add(r.ID, KindRobot, r.Pos.X)
}

func (s *State) Block(id ecs.EntityID) *Block {
	b, _ := s.Blocks.Get(id)
	return b
}

func (s *State) Container(id ecs.EntityID) *Container {
	c, _ := s.Containers.Get(id)
	return c
}

func (s *State) Robot(id ecs.EntityID) *Robot {
	r, _ := s.Robots.Get(id)
	return r
}

// ContainerForColor returns the first container of the color, or nil.
func (s *State) ContainerForColor(c Color) *Container {
	var found *Container
	s.Containers.Each(func(_ ecs.EntityID, ct *Container) {
		if found == nil && ct.Color == c {
			found = ct
		}
	})
	return found
}

// MoveRobot sets a robot's x and keeps the index current.
func (s *State) MoveRobot(r *Robot, x float64) {
	r.Pos.X = x
	s.Index.Move(r.ID, x)
}

// DisableBlockPhysics hides a block from robot vision.
func (s *State) DisableBlockPhysics(b *Block) {
	b.Physical = false
	s.Index.Remove(b.ID)
}

// RecycleBlock re-applies the spawn rule and returns the block to vision.
func (s *State) RecycleBlock(b *Block, rnd *rand.Rand) {
	b.Reinitialize(s.BlockRule, rnd)
	s.Index.Add(b.ID, KindBlock, b.Pos.X)
}

// BlockPosition is a block's effective position: the carrier's anchor while
// carried, its own position otherwise.
func (s *State) BlockPosition(b *Block) Vec2 {
	if !b.CarriedBy.IsZero() {
		if r := s.Robot(b.CarriedBy); r != nil {
			return r.CarryAnchor()
		}
	}
	return b.Pos
}

// Destroy queues an entity for removal at the end of the tick.
func (s *State) Destroy(id ecs.EntityID) {
	s.Index.Remove(id)
	s.ecs.MarkForDestruction(id)
}

// Clear destroys every scene entity immediately. Only call it between ticks.
func (s *State) Clear() {
	for _, id := range s.Robots.IDs() {
		s.ecs.MarkForDestruction(id)
	}
	for _, id := range s.Containers.IDs() {
		s.ecs.MarkForDestruction(id)
	}
	for _, id := range s.Blocks.IDs() {
		s.ecs.MarkForDestruction(id)
	}
	s.ecs.FlushDestroyQueue()
	s.Index.Clear()
}

// TargetedBy returns, per block, the robots currently targeting it.
func (s *State) TargetedBy() map[ecs.EntityID][]ecs.EntityID {
	out := make(map[ecs.EntityID][]ecs.EntityID)
	s.Robots.Each(func(id ecs.EntityID, r *Robot) {
		if !r.TargetBlock.IsZero() {
			out[r.TargetBlock] = append(out[r.TargetBlock], id)
		}
	})
	return out
}

// Digest hashes the simulation-relevant state. Two runs with the same seed
// and tick sequence produce the same digest.
func (s *State) Digest() string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails for an oversized key
	}
	var buf [8]byte
	putU := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putF := func(v float64) { putU(math.Float64bits(v)) }
	putB := func(v bool) {
		if v {
			putU(1)
		} else {
			putU(0)
		}
	}

	s.Robots.Each(func(id ecs.EntityID, r *Robot) {
		putU(uint64(id))
		putF(r.Pos.X)
		putF(r.Mover.Velocity)
		putU(uint64(r.State))
		putU(uint64(int64(r.Facing)))
		putU(uint64(r.TargetBlock))
		putU(uint64(r.TargetContainer))
		putU(uint64(r.Score))
	})
	s.Containers.Each(func(id ecs.EntityID, c *Container) {
		putU(uint64(id))
		putU(uint64(c.Received))
		putU(uint64(c.Processed))
		putU(uint64(len(c.Queue)))
		putU(uint64(c.Active))
	})
	s.Blocks.Each(func(id ecs.EntityID, b *Block) {
		putU(uint64(id))
		putU(uint64(b.Color))
		putF(b.Pos.X)
		putF(b.Pos.Y)
		putB(b.Targeted)
		putB(b.Physical)
		putB(b.Processing)
	})
	return hex.EncodeToString(h.Sum(nil))
}
