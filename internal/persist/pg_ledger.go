package persist

import (
	"context"
	"fmt"
)

// PGLedger writes ledger batches to postgres through the pgx pool.
type PGLedger struct {
	db *DB
}

func NewPGLedger(db *DB) *PGLedger {
	return &PGLedger{db: db}
}

// Record writes a batch of entries in a single transaction.
func (l *PGLedger) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := l.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx, insertEntryPG,
			e.Kind, e.Scene, e.Generation, int64(e.Tick), int64(e.Robot), int64(e.Block),
			int64(e.Container), e.Color, e.NewColor, e.Score,
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (l *PGLedger) Close() error {
	l.db.Close()
	return nil
}
