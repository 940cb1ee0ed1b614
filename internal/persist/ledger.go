package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/blockbots/server/internal/config"
)

// Entry kinds.
const (
	KindDelivered = "delivered"
	KindProcessed = "processed"
)

// Entry is one row of the block ledger: a delivery into a container queue
// or a block leaving a container recolored.
type Entry struct {
	Kind       string
	Scene      string
	Generation int
	Tick       uint64
	Robot      uint64 // 0 for processed entries
	Block      uint64
	Container  uint64
	Color      string
	NewColor   string // processed entries only
	Score      int    // robot score after the delivery
}

// Ledger appends entries in batches. A batch is written atomically.
type Ledger interface {
	Record(ctx context.Context, entries []Entry) error
	Close() error
}

// Open connects the configured ledger backend and applies its migrations.
func Open(ctx context.Context, cfg config.LedgerConfig, log *zap.Logger) (Ledger, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, err
		}
		return NewPGLedger(db), nil
	case "sqlite":
		return OpenSQLiteLedger(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
}

const insertEntrySQLite = `INSERT INTO block_ledger
	(kind, scene, generation, tick, robot_id, block_id, container_id, color, new_color, score)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertEntryPG = `INSERT INTO block_ledger
	(kind, scene, generation, tick, robot_id, block_id, container_id, color, new_color, score)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
