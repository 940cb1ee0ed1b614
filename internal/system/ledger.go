package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blockbots/server/internal/core/event"
	coresys "github.com/blockbots/server/internal/core/system"
	"github.com/blockbots/server/internal/persist"
)

// SceneInfo labels ledger entries with the running scene.
type SceneInfo interface {
	Name() string
	Generation() int
}

// LedgerSystem batches delivery and processing events and writes them to
// the ledger every interval ticks. Phase 4 (Persist).
type LedgerSystem struct {
	ledger   persist.Ledger
	scene    SceneInfo
	tick     func() uint64
	log      *zap.Logger
	timeout  time.Duration
	interval int

	tickCount int
	pending   []persist.Entry
	written   int
}

func NewLedgerSystem(bus *event.Bus, ledger persist.Ledger, scene SceneInfo, tick func() uint64, log *zap.Logger, intervalTicks int) *LedgerSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &LedgerSystem{
		ledger:   ledger,
		scene:    scene,
		tick:     tick,
		log:      log,
		timeout:  5 * time.Second,
		interval: intervalTicks,
	}
	event.Subscribe(bus, func(e event.BlockDelivered) {
		s.pending = append(s.pending, persist.Entry{
			Kind:      persist.KindDelivered,
			Robot:     uint64(e.Robot),
			Block:     uint64(e.Block),
			Container: uint64(e.Container),
			Color:     e.Color,
			Score:     e.Score,
		})
		s.stamp()
	})
	event.Subscribe(bus, func(e event.BlockProcessed) {
		s.pending = append(s.pending, persist.Entry{
			Kind:      persist.KindProcessed,
			Block:     uint64(e.Block),
			Container: uint64(e.Container),
			Color:     e.Color,
			NewColor:  e.NewColor,
		})
		s.stamp()
	})
	return s
}

// stamp fills the scene and tick of the entry just appended.
func (s *LedgerSystem) stamp() {
	e := &s.pending[len(s.pending)-1]
	e.Scene = s.scene.Name()
	e.Generation = s.scene.Generation()
	e.Tick = s.tick()
}

func (s *LedgerSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *LedgerSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.Flush(ctx)
}

// Flush writes everything pending now. Called at shutdown so no entries
// are lost. A failed batch is logged and dropped.
func (s *LedgerSystem) Flush(ctx context.Context) {
	if len(s.pending) == 0 {
		return
	}
	batch := s.pending
	s.pending = nil
	if err := s.ledger.Record(ctx, batch); err != nil {
		s.log.Error("ledger flush failed", zap.Int("entries", len(batch)), zap.Error(err))
		return
	}
	s.written += len(batch)
}

// Pending returns the number of buffered entries.
func (s *LedgerSystem) Pending() int { return len(s.pending) }

// Written returns the number of entries successfully recorded.
func (s *LedgerSystem) Written() int { return s.written }
