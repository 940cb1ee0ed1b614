package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteLedger writes ledger batches to a local sqlite file.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLiteLedger opens (creating if needed) the sqlite file at path and
// applies migrations.
func OpenSQLiteLedger(ctx context.Context, path string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("empty ledger path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger pragma: %w", err)
		}
	}
	if err := RunSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteLedger{db: db}, nil
}

// Record writes a batch of entries in a single transaction.
func (l *SQLiteLedger) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEntrySQLite)
	if err != nil {
		return fmt.Errorf("ledger prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.Kind, e.Scene, e.Generation, int64(e.Tick), int64(e.Robot), int64(e.Block),
			int64(e.Container), e.Color, e.NewColor, e.Score,
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}
	return tx.Commit()
}

// Totals returns the number of entries per kind for a scene generation.
func (l *SQLiteLedger) Totals(ctx context.Context, scene string, generation int) (map[string]int, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM block_ledger WHERE scene = ? AND generation = ? GROUP BY kind`,
		scene, generation)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("ledger totals: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
