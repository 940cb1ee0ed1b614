package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockbots/server/internal/audio"
	"github.com/blockbots/server/internal/core/ecs"
	"github.com/blockbots/server/internal/world"
)

func TestRobotDeliveryCycleClosesWithOneQueuedBlock(t *testing.T) {
	w := newBareWorld(world.Red)
	red := w.container(world.Red, 0, world.Right)
	blk := w.block(world.Red, -2.5)
	r := w.searchingRobot(0, world.Left)
	sys := NewRobotSystem(w.deps)

	queued := len(red.Queue)
	seen := map[world.RobotState]bool{}
	for i := 0; i < 2000; i++ {
		sys.Update(step)
		seen[r.State] = true
		if r.Score == 1 && r.State == world.SearchForBlock {
			break
		}
	}

	require.Equal(t, world.SearchForBlock, r.State)
	assert.True(t, r.TargetBlock.IsZero())
	assert.True(t, r.TargetContainer.IsZero())
	assert.Equal(t, queued+1, len(red.Queue))
	assert.Equal(t, []ecs.EntityID{blk.ID}, red.Queue)
	assert.Equal(t, 1, red.Received)

	for _, st := range []world.RobotState{world.GoToTargetBlock, world.PickUpBlock, world.DeliverBlock} {
		assert.True(t, seen[st], "visited %s", st)
	}
	assert.False(t, seen[world.PrepareToDeliverBlock], "robot already on the receptacle side")
	assert.Equal(t, 1, w.audio.Count(audio.RobotBlip01))
	assert.Equal(t, 1, w.audio.Count(audio.RobotBlip02))

	assert.Equal(t, red.DropOffPoint(), blk.Pos)
	assert.False(t, blk.Physical)
	assert.False(t, w.state.Index.Has(blk.ID))
}

func TestRobotDetoursWhenBehindContainer(t *testing.T) {
	w := newBareWorld(world.Red)
	red := w.container(world.Red, 0, world.Right)
	// Between the wall and the drop-off point: the wrong side.
	w.block(world.Red, red.Pos.X+0.3)
	r := w.searchingRobot(red.Pos.X+0.3, world.Left)
	sys := NewRobotSystem(w.deps)

	var visited []world.RobotState
	for i := 0; i < 2000 && r.Score == 0; i++ {
		sys.Update(step)
		if len(visited) == 0 || visited[len(visited)-1] != r.State {
			visited = append(visited, r.State)
		}
	}
	assert.Contains(t, visited, world.PrepareToDeliverBlock)
	assert.Equal(t, 1, r.Score)
}

func TestRobotTurnsWhenNothingIsVisible(t *testing.T) {
	w := newBareWorld(world.Red)
	r := w.searchingRobot(0, world.Right)
	sys := NewRobotSystem(w.deps)

	flips := 0
	facing := r.Facing
	for i := 0; i < 25; i++ {
		sys.Update(100 * time.Millisecond)
		if r.Facing != facing {
			flips++
			facing = r.Facing
		}
	}
	// One flip per completed one-second turn; repeated requests while
	// turning change nothing.
	assert.Equal(t, 2, r.Turns)
	assert.Equal(t, r.Turns, flips)
	assert.Equal(t, world.SearchForBlock, r.State)
}

func TestRobotIgnoresTargetedBlocks(t *testing.T) {
	w := newBareWorld(world.Red)
	w.container(world.Red, 0, world.Right)
	claimed := w.block(world.Red, -2)
	claimed.Targeted = true
	r := w.searchingRobot(0, world.Left)
	sys := NewRobotSystem(w.deps)

	sys.Update(step)
	assert.Equal(t, world.SearchForBlock, r.State)
	assert.True(t, r.Turning, "a claimed block counts as not found")
	assert.True(t, r.TargetBlock.IsZero())
}

func TestRobotSeesOnlyNearestBlock(t *testing.T) {
	w := newBareWorld(world.Red)
	near := w.block(world.Red, -1)
	near.Targeted = true
	w.block(world.Red, -3) // hidden behind the claimed one
	r := w.searchingRobot(0, world.Left)

	NewRobotSystem(w.deps).Update(step)
	assert.True(t, r.TargetBlock.IsZero())
}

// The held block's color has no container. The robot parks in
// FindContainer with its block forever; nothing moves it out. This is a
// known gap kept on purpose.
func TestRobotIdleHoldsWithoutContainer(t *testing.T) {
	w := newBareWorld(world.Red, world.Green)
	w.container(world.Red, 0, world.Right)
	green := w.block(world.Green, 2)
	r := w.searchingRobot(0, world.Right)
	sys := NewRobotSystem(w.deps)

	for i := 0; i < 2000 && r.State != world.FindContainer; i++ {
		sys.Update(step)
	}
	require.Equal(t, world.FindContainer, r.State)
	x := r.Pos.X

	for i := 0; i < 3000; i++ { // one simulated minute
		sys.Update(step)
	}
	assert.True(t, r.IdleHolding())
	assert.Equal(t, world.FindContainer, r.State)
	assert.Equal(t, green.ID, r.TargetBlock)
	assert.Equal(t, x, r.Pos.X)
	assert.Zero(t, r.Score)
}

func TestRobotBootDelayInRange(t *testing.T) {
	w := newBareWorld(world.Red)
	ws := w.state.Workspace
	r := world.NewRobot(w.ecs.CreateEntity(), world.Vec2{Y: ws.GroundY()}, world.Left, 1, ws.InsetSize().X)
	w.state.AddRobot(r)
	sys := NewRobotSystem(w.deps)

	sys.Update(step)
	require.Equal(t, world.BootingUp, r.State)
	assert.GreaterOrEqual(t, r.BootDelay, world.BootDelayMin)
	assert.Less(t, r.BootDelay, world.BootDelayMax)

	ticks := 1
	for r.State == world.BootingUp {
		sys.Update(step)
		ticks++
	}
	elapsed := float64(ticks) * step.Seconds()
	assert.GreaterOrEqual(t, elapsed, r.BootDelay-1e-9)
	assert.LessOrEqual(t, elapsed, r.BootDelay+2*step.Seconds())
}
