package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/mxdesk/internal/sample"
)

// SampleRepo handles the sample tracking list.
type SampleRepo struct {
	db *sql.DB
}

func NewSampleRepo(db *sql.DB) *SampleRepo { return &SampleRepo{db: db} }

// Add stores recs in one transaction and returns them with SampleID set.
// Records that already carry an id keep it.
func (r *SampleRepo) Add(ctx context.Context, recs []sample.Record) ([]sample.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]sample.Record, 0, len(recs))
	for _, rec := range recs {
		if rec.SampleID == "" {
			rec.SampleID = uuid.NewString()
		}
		tasks, err := json.Marshal(nonNilTasks(rec.Tasks))
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("encode tasks: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO samples(id, sample_name, protein_acronym, type, default_prefix, location, loadable, tasks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET sample_name=excluded.sample_name, protein_acronym=excluded.protein_acronym,
			default_prefix=excluded.default_prefix, tasks=excluded.tasks;
		`, rec.SampleID, rec.SampleName, rec.ProteinAcronym, rec.Type, rec.DefaultPrefix, rec.Location, rec.Loadable, string(tasks))
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		out = append(out, rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

const sampleColumns = `id, sample_name, protein_acronym, type, default_prefix, location, loadable, tasks, created_at`

func (r *SampleRepo) List(ctx context.Context) ([]Sample, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sampleColumns+` FROM samples ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns the sample with id, or nil when absent.
func (r *SampleRepo) Get(ctx context.Context, id string) (*Sample, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sampleColumns+` FROM samples WHERE id = ?`, id)
	s, err := scanSample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Names returns every tracked sample name.
func (r *SampleRepo) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT sample_name FROM samples ORDER BY sample_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (Sample, error) {
	var (
		s     Sample
		tasks string
	)
	if err := row.Scan(&s.SampleID, &s.SampleName, &s.ProteinAcronym, &s.Type, &s.DefaultPrefix,
		&s.Location, &s.Loadable, &tasks, &s.CreatedAt); err != nil {
		return Sample{}, err
	}
	if err := json.Unmarshal([]byte(tasks), &s.Tasks); err != nil {
		return Sample{}, fmt.Errorf("decode tasks for %s: %w", s.SampleID, err)
	}
	s.Tasks = nonNilTasks(s.Tasks)
	return s, nil
}

func nonNilTasks(t []sample.Task) []sample.Task {
	if t == nil {
		return []sample.Task{}
	}
	return t
}
