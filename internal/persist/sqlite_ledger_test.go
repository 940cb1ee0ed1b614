package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blockbots/server/internal/config"
)

func TestSQLiteLedgerRecordsBatches(t *testing.T) {
	ctx := context.Background()
	l, err := OpenSQLiteLedger(ctx, filepath.Join(t.TempDir(), "ledger", "blockbots.db"))
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Record(ctx, nil))
	require.NoError(t, l.Record(ctx, []Entry{
		{Kind: KindDelivered, Scene: "default", Generation: 1, Tick: 10, Robot: 3, Block: 5, Container: 1, Color: "red", Score: 1},
		{Kind: KindDelivered, Scene: "default", Generation: 1, Tick: 40, Robot: 3, Block: 6, Container: 2, Color: "blue", Score: 2},
		{Kind: KindProcessed, Scene: "default", Generation: 1, Tick: 300, Block: 5, Container: 1, Color: "red", NewColor: "blue"},
		{Kind: KindDelivered, Scene: "default", Generation: 2, Tick: 12, Robot: 9, Block: 11, Container: 7, Color: "red", Score: 1},
	}))

	totals, err := l.Totals(ctx, "default", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KindDelivered: 2, KindProcessed: 1}, totals)

	totals, err = l.Totals(ctx, "default", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, totals[KindDelivered])
}

func TestSQLiteLedgerReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blockbots.db")

	l, err := OpenSQLiteLedger(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, []Entry{{Kind: KindDelivered, Scene: "busy", Generation: 1, Block: 1, Container: 2, Color: "green", Score: 1}}))
	require.NoError(t, l.Close())

	l, err = OpenSQLiteLedger(ctx, path)
	require.NoError(t, err, "migrations must be idempotent")
	defer l.Close()
	totals, err := l.Totals(ctx, "busy", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, totals[KindDelivered])
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.LedgerConfig{Driver: "mysql"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown ledger driver")
}

func TestOpenSQLiteFromConfig(t *testing.T) {
	cfg := config.Default().Ledger
	cfg.DSN = filepath.Join(t.TempDir(), "cfg.db")
	l, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteLedger{}, l)
	require.NoError(t, l.Close())
}
