// Package spawn produces scene entities on request. Completion is always
// asynchronous: a request made during tick N is answered on a later tick.
package spawn

import (
	"errors"

	"github.com/blockbots/server/internal/core/ecs"
)

// Kind is the logical identifier of what to instantiate.
type Kind string

const (
	KindBlock     Kind = "Block"
	KindContainer Kind = "Container"
	KindRobot     Kind = "Robot"
)

// Done receives the new entity, or an error when the instance could not be
// produced. It runs on the tick goroutine.
type Done func(id ecs.EntityID, err error)

// Spawner is the entity factory the scene consumes.
type Spawner interface {
	Request(kind Kind, done Done)
}

// ErrRejected is returned through Done when a FailFunc refuses a request.
var ErrRejected = errors.New("spawn rejected")

// FailFunc decides whether the n-th request (1-based) of a kind fails.
type FailFunc func(kind Kind, n int) error

type pendingSpawn struct {
	kind      Kind
	n         int
	ticksLeft int
	done      Done
}

// Deferred allocates entity IDs from an ECS world and answers requests
// after a fixed number of drains.
type Deferred struct {
	world   *ecs.World
	delay   int
	fail    FailFunc
	pending []pendingSpawn
	counts  map[Kind]int
}

// NewDeferred answers each request on the delay-th Drain after it was made.
// delay below 1 is raised to 1.
func NewDeferred(w *ecs.World, delay int) *Deferred {
	if delay < 1 {
		delay = 1
	}
	return &Deferred{
		world:  w,
		delay:  delay,
		counts: make(map[Kind]int),
	}
}

// WithFailures installs a failure policy.
func (d *Deferred) WithFailures(fn FailFunc) *Deferred {
	d.fail = fn
	return d
}

func (d *Deferred) Request(kind Kind, done Done) {
	d.counts[kind]++
	d.pending = append(d.pending, pendingSpawn{
		kind:      kind,
		n:         d.counts[kind],
		ticksLeft: d.delay,
		done:      done,
	})
}

// Pending returns the number of unanswered requests.
func (d *Deferred) Pending() int { return len(d.pending) }

// Drain ages every pending request by one tick and answers the ones that
// are due, in request order. Requests made from inside a callback wait for a
// later Drain. It returns how many requests were answered.
func (d *Deferred) Drain() int {
	if len(d.pending) == 0 {
		return 0
	}
	batch := d.pending
	d.pending = nil

	answered := 0
	var keep []pendingSpawn
	for _, p := range batch {
		p.ticksLeft--
		if p.ticksLeft > 0 {
			keep = append(keep, p)
			continue
		}
		answered++
		if d.fail != nil {
			if err := d.fail(p.kind, p.n); err != nil {
				p.done(ecs.NoEntity, err)
				continue
			}
		}
		p.done(d.world.CreateEntity(), nil)
	}
	d.pending = append(keep, d.pending...)
	return answered
}
