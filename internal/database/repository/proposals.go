package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jask/mxdesk/internal/proposal"
)

// ErrDuplicateDisplayID means another proposal already renders as the same
// code+number string, e.g. mx/2415 and mx2/415.
var ErrDuplicateDisplayID = errors.New("proposal display id already in use")

// ProposalRepo handles the proposals scheduled for this session.
type ProposalRepo struct {
	db *sql.DB
}

func NewProposalRepo(db *sql.DB) *ProposalRepo { return &ProposalRepo{db: db} }

// Upsert inserts or updates p. It refuses a proposal whose display id
// collides with a different stored proposal.
func (r *ProposalRepo) Upsert(ctx context.Context, p proposal.Item) error {
	var other string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM proposals WHERE code || number = ? AND id <> ? LIMIT 1`,
		p.DisplayID(), p.ProposalID).Scan(&other)
	switch {
	case err == nil:
		return fmt.Errorf("upsert %s: %w (held by %s)", p.DisplayID(), ErrDuplicateDisplayID, other)
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO proposals(id, code, number, title, person) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET code=excluded.code, number=excluded.number,
		title=excluded.title, person=excluded.person;
	`, p.ProposalID, p.Code, p.Number, p.Title, p.Person)
	return err
}

// List returns proposals in insertion order. Display ordering is the
// caller's concern.
func (r *ProposalRepo) List(ctx context.Context) ([]proposal.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, number, title, person FROM proposals ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []proposal.Item
	for rows.Next() {
		var p proposal.Item
		if err := rows.Scan(&p.ProposalID, &p.Code, &p.Number, &p.Title, &p.Person); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByDisplayID finds a proposal by code+number. It returns nil when absent.
func (r *ProposalRepo) ByDisplayID(ctx context.Context, id string) (*proposal.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, code, number, title, person FROM proposals WHERE code || number = ? ORDER BY rowid LIMIT 1`, id)
	var p proposal.Item
	if err := row.Scan(&p.ProposalID, &p.Code, &p.Number, &p.Title, &p.Person); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&n)
	return n, err
}
