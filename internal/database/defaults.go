package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/proposal"
)

// SeedDefaults ensures a demo proposal set exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewProposalRepo(db)
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	defaults := []proposal.Item{
		{Code: "mx", Number: "2415", Title: "Lysozyme soaking series", Person: "A. Blanc"},
		{Code: "mx", Number: "2522", Title: "Thaumatin ligand screen", Person: "K. Osei"},
		{Code: "ih", Number: "0042", Title: "In-house commissioning", Person: "Beamline staff"},
	}
	for _, p := range defaults {
		p.ProposalID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("proposal:"+p.DisplayID())).String()
		if err := repo.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
