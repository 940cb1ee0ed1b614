package event

import "github.com/blockbots/server/internal/core/ecs"

// RobotStateChanged fires on every robot state transition.
type RobotStateChanged struct {
	Robot ecs.EntityID
	From  string
	To    string
}

// BlockClaimed fires when a robot marks a block as its target.
type BlockClaimed struct {
	Robot ecs.EntityID
	Block ecs.EntityID
	Color string
}

// BlockDelivered fires when a robot hands a block to a container queue.
type BlockDelivered struct {
	Robot     ecs.EntityID
	Block     ecs.EntityID
	Container ecs.EntityID
	Color     string
	Score     int
}

// BlockProcessed fires when a container finishes recycling a block.
type BlockProcessed struct {
	Container ecs.EntityID
	Block     ecs.EntityID
	Color     string // color the block was delivered as
	NewColor  string // color after re-initialization
	Waited    float64
}

// EntitySpawned fires when a spawn request materialized into a scene entity.
type EntitySpawned struct {
	Kind string
	ID   ecs.EntityID
}

// SpawnFailed fires when the spawner reported a failure.
type SpawnFailed struct {
	Kind string
	Err  string
}
