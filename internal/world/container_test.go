package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockbots/server/internal/core/ecs"
)

var defaultWorkspace = Workspace{Width: 12, Height: 12 * DefaultAspect}

func TestContainerQueueIsFIFO(t *testing.T) {
	c := &Container{ID: id(100), Orientation: Right}
	blocks := []*Block{{ID: id(1)}, {ID: id(2)}, {ID: id(3)}}
	for _, b := range blocks {
		c.Receive(b)
		assert.Equal(t, c.DropOffPoint(), b.Pos)
		assert.False(t, b.Physical)
	}
	assert.Equal(t, 3, c.Received)

	var order []ecs.EntityID
	for {
		got, ok := c.Dequeue()
		if !ok {
			break
		}
		order = append(order, got)
	}
	assert.Equal(t, []ecs.EntityID{id(1), id(2), id(3)}, order)
}

func TestResolveOrientationSnapsAtWalls(t *testing.T) {
	ws := defaultWorkspace
	assert.Equal(t, Right, ResolveOrientation(ws, 0, Left))
	assert.Equal(t, Left, ResolveOrientation(ws, 1, Right))
	assert.Equal(t, Right, ResolveOrientation(ws, 0.5, Right))
	assert.Equal(t, Left, ResolveOrientation(ws, 0.5, Left))
	assert.Equal(t, Left, ResolveOrientation(ws, 0.5, 0))
}

func TestContainerGeometryMirrors(t *testing.T) {
	right := &Container{Pos: Vec2{X: -5}, Orientation: Right}
	left := &Container{Pos: Vec2{X: 5}, Orientation: Left}

	assert.Equal(t, -4.0, right.DropOffPoint().X)
	assert.Equal(t, -2.0, right.PrepareToDropOffPoint().X)
	assert.Equal(t, 4.0, left.DropOffPoint().X)
	assert.Equal(t, 2.0, left.PrepareToDropOffPoint().X)
	assert.Less(t, right.RecyclePoint().X, right.Pos.X)
	assert.Greater(t, left.RecyclePoint().X, left.Pos.X)
}

func TestContainerIsBehind(t *testing.T) {
	c := &Container{Pos: Vec2{X: -5}, Orientation: Right}
	assert.False(t, c.IsBehind(0), "robot on the receptacle side delivers directly")
	assert.True(t, c.IsBehind(-4.5), "robot between container and drop-off detours")
	assert.True(t, c.IsBehind(-4), "exactly on the drop-off counts as behind")
}

func TestBlockProcessingLandsOnDestination(t *testing.T) {
	b := &Block{ID: id(1), Pos: Vec2{X: 0, Y: 0}, Physical: true}
	dest := Vec2{X: 2, Y: 1}
	b.StartProcessing(dest)
	require.True(t, b.Processing)
	assert.False(t, b.Physical)

	assert.False(t, b.AdvanceProcessing(ProcessingDuration/2))
	assert.InDelta(t, 1.0, b.Pos.X, 1e-9)
	assert.False(t, b.AdvanceProcessing(ProcessingDuration/2), "strict threshold")
	assert.True(t, b.AdvanceProcessing(0.001))
	assert.Equal(t, dest, b.Pos)
	assert.Equal(t, 1, b.Cycles)
	assert.False(t, b.AdvanceProcessing(1))
}

func TestIndicatorsFade(t *testing.T) {
	c := &Container{InProgressGlow: 1, CompleteGlow: 1, IsProcessingBlock: true}
	c.FadeIndicators(1)
	assert.Equal(t, 1.0, c.InProgressGlow, "held while processing")
	assert.InDelta(t, 0.5, c.CompleteGlow, 1e-12)
	c.IsProcessingBlock = false
	c.FadeIndicators(4)
	assert.Equal(t, 0.0, c.InProgressGlow)
	assert.Equal(t, 0.0, c.CompleteGlow)
}
