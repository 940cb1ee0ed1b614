package trace

import (
	"go.uber.org/zap"

	"github.com/blockbots/server/internal/core/event"
)

// Record is one trace line.
type Record struct {
	Tick  uint64 `json:"tick"`
	Type  string `json:"type"`
	Event any    `json:"event"`
}

// Recorder copies bus events into a Writer. Write failures are logged once
// per segment and otherwise ignored; tracing never stops the simulation.
type Recorder struct {
	w      *Writer
	tick   func() uint64
	log    *zap.Logger
	failed bool
	count  int
}

// NewRecorder subscribes to every domain event on bus. tick reports the
// current tick number for each record.
func NewRecorder(bus *event.Bus, w *Writer, tick func() uint64, log *zap.Logger) *Recorder {
	r := &Recorder{w: w, tick: tick, log: log}
	event.Subscribe(bus, func(e event.RobotStateChanged) { r.write("robot_state", e) })
	event.Subscribe(bus, func(e event.BlockClaimed) { r.write("block_claimed", e) })
	event.Subscribe(bus, func(e event.BlockDelivered) { r.write("block_delivered", e) })
	event.Subscribe(bus, func(e event.BlockProcessed) { r.write("block_processed", e) })
	event.Subscribe(bus, func(e event.EntitySpawned) { r.write("entity_spawned", e) })
	event.Subscribe(bus, func(e event.SpawnFailed) { r.write("spawn_failed", e) })
	return r
}

// Begin starts a new segment, typically one per scene generation.
func (r *Recorder) Begin(segment string) error {
	r.failed = false
	r.count = 0
	return r.w.Rotate(segment)
}

// Count returns the records written to the current segment.
func (r *Recorder) Count() int { return r.count }

func (r *Recorder) write(typ string, ev any) {
	if err := r.w.Write(Record{Tick: r.tick(), Type: typ, Event: ev}); err != nil {
		if !r.failed {
			r.log.Error("trace write failed", zap.String("type", typ), zap.Error(err))
			r.failed = true
		}
		return
	}
	r.count++
}
