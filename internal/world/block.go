package world

import (
	"math/rand"

	"github.com/blockbots/server/internal/core/ecs"
)

// ProcessingDuration is how long a container takes to recycle one block.
const ProcessingDuration = 5.0

// BlockConfig is the spawn rule shared by every block of a scene. It is
// re-applied each time a block is recycled.
type BlockConfig struct {
	AllowedColors []Color
	Workspace     Workspace
}

// Block is a colored unit robots collect and deliver. Blocks are never
// destroyed during a scene; containers return them to the pool.
type Block struct {
	ID    ecs.EntityID
	Color Color
	Pos   Vec2

	// Targeted is set while exactly one robot has claimed the block.
	Targeted bool
	// Physical blocks are visible to robot vision. Carried, queued and
	// processing blocks are not.
	Physical bool
	// CarriedBy is the robot holding the block, NoEntity otherwise.
	CarriedBy ecs.EntityID

	Processing   bool
	ProcessTimer Timer
	processFrom  Vec2
	processTo    Vec2

	// Cycles counts completed container passes.
	Cycles int
}

// Reinitialize applies the spawn rule: random position in the upper half
// of the inset workspace, random allowed color, physics on, claim cleared.
func (b *Block) Reinitialize(cfg BlockConfig, r *rand.Rand) {
	if len(cfg.AllowedColors) == 0 {
		panic("world: block spawn rule has no colors")
	}
	b.Pos = cfg.Workspace.RandomBlockPosition(r)
	b.Color = cfg.AllowedColors[r.Intn(len(cfg.AllowedColors))]
	b.Targeted = false
	b.Physical = true
	b.CarriedBy = ecs.NoEntity
	b.Processing = false
	b.ProcessTimer.Stop()
}

// StartProcessing begins the timed move toward dest.
func (b *Block) StartProcessing(dest Vec2) {
	b.Physical = false
	b.processFrom = b.Pos
	b.processTo = dest
	b.Processing = true
	b.ProcessTimer.Start(ProcessingDuration)
}

// AdvanceProcessing moves the block along its processing path and reports
// completion. The block lands exactly on the destination when it completes.
func (b *Block) AdvanceProcessing(dt float64) bool {
	if !b.Processing {
		return false
	}
	if b.ProcessTimer.Advance(dt) {
		b.Pos = b.processTo
		b.Processing = false
		b.Cycles++
		return true
	}
	b.Pos = b.processFrom.Lerp(b.processTo, b.ProcessTimer.Progress())
	return false
}
