package world

import "github.com/blockbots/server/internal/core/ecs"

// RobotState is the closed set of robot behaviors.
type RobotState uint8

const (
	BootingUp RobotState = iota
	SearchForBlock
	GoToTargetBlock
	PickUpBlock
	FindContainer
	PrepareToDeliverBlock
	DeliverBlock
)

var robotStateNames = [...]string{
	"BootingUp",
	"SearchForBlock",
	"GoToTargetBlock",
	"PickUpBlock",
	"FindContainer",
	"PrepareToDeliverBlock",
	"DeliverBlock",
}

func (s RobotState) String() string {
	if int(s) >= len(robotStateNames) {
		return "Unknown"
	}
	return robotStateNames[s]
}

// Robot timings in seconds.
const (
	BootDelayMin   = 2.0
	BootDelayMax   = 5.0
	TurnDuration   = 1.0
	PickUpDuration = 1.2
	DropDuration   = 0.5
)

// carryOffset is the block anchor relative to the robot, mirrored by facing.
var carryOffset = Vec2{X: 0.35, Y: 0.9}

// Robot is an autonomous agent. All state is plain data; RobotSystem owns
// the transitions.
type Robot struct {
	ID     ecs.EntityID
	Pos    Vec2
	Facing Direction
	Mover  Mover

	State RobotState
	// StateTimer backs the timed states: boot delay, pickup and drop.
	StateTimer Timer
	BootDelay  float64
	// Dropping is set from arrival at the drop-off until the hand-over.
	Dropping bool

	// Turning flips Facing to TurnTo when TurnTimer fires.
	Turning   bool
	TurnTimer Timer
	TurnTo    Direction
	Turns     int

	TargetBlock     ecs.EntityID
	TargetContainer ecs.EntityID

	Score           int
	VisionRange     float64
	SpeedMultiplier float64
}

// NewRobot builds a robot in BootingUp at pos.
func NewRobot(id ecs.EntityID, pos Vec2, facing Direction, speedMultiplier, visionRange float64) *Robot {
	if !facing.Valid() {
		facing = Left
	}
	if speedMultiplier <= 0 {
		speedMultiplier = 1
	}
	return &Robot{
		ID:              id,
		Pos:             pos,
		Facing:          facing,
		Mover:           NewMover(speedMultiplier),
		State:           BootingUp,
		VisionRange:     visionRange,
		SpeedMultiplier: speedMultiplier,
	}
}

// BeginTurn starts a timed turn toward the opposite of the current facing.
// It reports false, and changes nothing, while a turn is in progress.
func (r *Robot) BeginTurn() bool {
	if r.Turning {
		return false
	}
	r.Turning = true
	r.TurnTo = r.Facing.Opposite()
	r.TurnTimer.Start(TurnDuration)
	return true
}

// AdvanceTurn progresses an in-flight turn and reports whether it completed.
func (r *Robot) AdvanceTurn(dt float64) bool {
	if !r.Turning || !r.TurnTimer.Advance(dt) {
		return false
	}
	r.Turning = false
	r.Facing = r.TurnTo
	r.Turns++
	return true
}

// CarryAnchor is where a held block sits.
func (r *Robot) CarryAnchor() Vec2 {
	return Vec2{r.Pos.X + carryOffset.X*r.Facing.Sign(), r.Pos.Y + carryOffset.Y}
}

// Holding reports whether the robot has picked up its target block.
func (r *Robot) Holding() bool {
	switch r.State {
	case FindContainer, PrepareToDeliverBlock, DeliverBlock:
		return !r.TargetBlock.IsZero()
	case PickUpBlock:
		return true
	}
	return false
}

// IdleHolding reports the robot is stuck in FindContainer because no
// container accepts its block's color. Nothing moves it out of this state.
func (r *Robot) IdleHolding() bool {
	return r.State == FindContainer && r.TargetContainer.IsZero() && !r.TargetBlock.IsZero()
}
