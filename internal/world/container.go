package world

import (
	"math"

	"github.com/blockbots/server/internal/core/ecs"
)

// Container geometry, in units along the container's orientation.
const (
	dropOffOffset        = 1.0
	prepareDropOffOffset = 3.0
	recycleOffsetX       = -0.6
	recycleOffsetY       = 0.8

	// indicatorFadeRate is intensity lost per second.
	indicatorFadeRate = 0.5

	// edgeSnap is the grid distance from a wall within which a container's
	// orientation is forced to face into the workspace.
	edgeSnap = 2.0
)

// Container accepts blocks of one color and processes them one at a time.
type Container struct {
	ID          ecs.EntityID
	Color       Color
	Pos         Vec2
	Orientation Direction

	Queue             []ecs.EntityID
	Active            ecs.EntityID
	IsProcessingBlock bool

	Received  int
	Processed int

	// Cosmetic indicator intensities in [0, 1].
	InProgressGlow float64
	CompleteGlow   float64
}

// ResolveOrientation applies edge snapping: a container hugging the left
// wall must accept from the right and vice versa.
func ResolveOrientation(ws Workspace, fraction float64, requested Direction) Direction {
	gx := ws.GridX(fraction)
	switch {
	case gx < edgeSnap:
		return Right
	case gx > ws.InsetSize().X-edgeSnap:
		return Left
	case requested.Valid():
		return requested
	}
	return Left
}

// DropOffPoint is where a robot stands to hand over a block.
func (c *Container) DropOffPoint() Vec2 {
	return Vec2{c.Pos.X + dropOffOffset*c.Orientation.Sign(), c.Pos.Y}
}

// PrepareToDropOffPoint is the waypoint used when a robot approaches from
// the wrong side.
func (c *Container) PrepareToDropOffPoint() Vec2 {
	return Vec2{c.Pos.X + prepareDropOffOffset*c.Orientation.Sign(), c.Pos.Y}
}

// RecyclePoint is where processed blocks end up before re-initialization.
func (c *Container) RecyclePoint() Vec2 {
	return Vec2{c.Pos.X + recycleOffsetX*c.Orientation.Sign(), c.Pos.Y + recycleOffsetY}
}

// IsBehind reports whether a robot at x must detour through the
// pre-drop-off waypoint to approach from the receptacle side.
func (c *Container) IsBehind(x float64) bool {
	d := c.DropOffPoint().X - x
	sign := 1.0
	if d < 0 {
		sign = -1
	}
	return math.Abs(sign-c.Orientation.Sign()) < 1e-4
}

// Receive places a block on the drop-off point and appends it to the queue.
func (c *Container) Receive(b *Block) {
	b.Pos = c.DropOffPoint()
	b.Physical = false
	b.CarriedBy = ecs.NoEntity
	c.Queue = append(c.Queue, b.ID)
	c.Received++
}

// Dequeue pops the oldest queued block.
func (c *Container) Dequeue() (ecs.EntityID, bool) {
	if len(c.Queue) == 0 {
		return ecs.NoEntity, false
	}
	id := c.Queue[0]
	c.Queue[0] = ecs.NoEntity
	c.Queue = c.Queue[1:]
	return id, true
}

// FadeIndicators decays both glows. The in-progress glow holds while a
// block is being processed.
func (c *Container) FadeIndicators(dt float64) {
	c.CompleteGlow = math.Max(0, c.CompleteGlow-indicatorFadeRate*dt)
	if !c.IsProcessingBlock {
		c.InProgressGlow = math.Max(0, c.InProgressGlow-indicatorFadeRate*dt)
	}
}
