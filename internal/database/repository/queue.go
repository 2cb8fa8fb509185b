package repository

import (
	"context"
	"database/sql"
	"strings"
)

// QueueRepo handles the ordered data collection queue.
type QueueRepo struct {
	db *sql.DB
}

func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{db: db} }

// Append adds sample ids to the end of the queue in order.
func (r *QueueRepo) Append(ctx context.Context, sampleIDs ...string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range sampleIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO queue(sample_id) VALUES (?)`, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *QueueRepo) List(ctx context.Context) ([]QueueEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT q.position, `+prefixed("s", sampleColumns)+`
	FROM queue q JOIN samples s ON s.id = q.sample_id
	ORDER BY q.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QueueEntry
	for rows.Next() {
		var pos int64
		s, err := scanSample(prefixScanner{rows: rows, first: &pos})
		if err != nil {
			return nil, err
		}
		out = append(out, QueueEntry{Position: pos, Sample: s.Record})
	}
	return out, rows.Err()
}

// prefixScanner scans a leading column before the sample columns.
type prefixScanner struct {
	rows  *sql.Rows
	first any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.rows.Scan(append([]any{p.first}, dest...)...)
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
