package storage

import (
	"context"
	"fmt"

	"github.com/pable/rlstats/internal/filter"
)

// LoadState returns the persisted query for view. A view with nothing saved
// yields an empty query, which decodes to the view's defaults.
func (db *DB) LoadState(ctx context.Context, view string) (filter.Query, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT key, value FROM filter_state WHERE view = ?", view)
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", view, err)
	}
	defer rows.Close()

	q := filter.Query{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		q[k] = v
	}
	return q, rows.Err()
}

// SaveState replaces the persisted query for view.
func (db *DB) SaveState(ctx context.Context, view string, q filter.Query) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM filter_state WHERE view = ?", view); err != nil {
		return fmt.Errorf("clear state %s: %w", view, err)
	}
	for k, v := range q {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO filter_state(view, key, value) VALUES (?, ?, ?)", view, k, v); err != nil {
			return fmt.Errorf("save state %s.%s: %w", view, k, err)
		}
	}
	return tx.Commit()
}
