package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeginTurnIsIdempotentWhileTurning(t *testing.T) {
	r := NewRobot(id(1), Vec2{}, Right, 1, 10)

	assert.True(t, r.BeginTurn())
	assert.False(t, r.BeginTurn())
	assert.False(t, r.BeginTurn())
	assert.Equal(t, Right, r.Facing, "facing changes only when the turn completes")

	assert.False(t, r.AdvanceTurn(TurnDuration/2))
	assert.False(t, r.BeginTurn())
	assert.True(t, r.AdvanceTurn(TurnDuration/2+0.01))
	assert.Equal(t, Left, r.Facing)
	assert.Equal(t, 1, r.Turns)

	assert.False(t, r.AdvanceTurn(5), "no further flips without a new turn")
	assert.Equal(t, Left, r.Facing)
}

func TestTurnTargetCapturedAtStart(t *testing.T) {
	r := NewRobot(id(1), Vec2{}, Right, 1, 10)
	r.BeginTurn()
	r.Facing = Left // movement may re-face the robot mid-turn
	r.AdvanceTurn(TurnDuration + 0.1)
	assert.Equal(t, Left, r.Facing, "turn completes toward the direction chosen at start")
}

func TestCarryAnchorFollowsFacing(t *testing.T) {
	r := NewRobot(id(1), Vec2{X: 2, Y: 1}, Right, 1, 10)
	right := r.CarryAnchor()
	r.Facing = Left
	left := r.CarryAnchor()
	assert.Greater(t, right.X, 2.0)
	assert.Less(t, left.X, 2.0)
	assert.Equal(t, right.Y, left.Y)
}

func TestNewRobotDefaults(t *testing.T) {
	r := NewRobot(id(1), Vec2{}, 0, 0, 10)
	assert.Equal(t, Left, r.Facing)
	assert.Equal(t, BootingUp, r.State)
	assert.Equal(t, BaseMaxVelocity, r.Mover.MaxVelocity)
	assert.Equal(t, "DeliverBlock", DeliverBlock.String())
}
