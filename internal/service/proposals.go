package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/proposal"
)

// ProposalService manages which proposal the session is logged in to.
type ProposalService struct {
	Proposals *repository.ProposalRepo
	Session   *repository.SessionRepo
	Log       *zap.Logger
}

// List returns the proposals available to the user, unsorted.
func (s *ProposalService) List(ctx context.Context) ([]proposal.Item, error) {
	items, err := s.Proposals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return items, nil
}

// Select logs the session in to the proposal with the given display id.
func (s *ProposalService) Select(ctx context.Context, displayID string) (proposal.Item, error) {
	p, err := s.Proposals.ByDisplayID(ctx, displayID)
	if err != nil {
		return proposal.Item{}, fmt.Errorf("lookup proposal %s: %w", displayID, err)
	}
	if p == nil {
		s.logger().Warn("proposal not available", zap.String("proposal", displayID))
		return proposal.Item{}, &Error{
			Err:   fmt.Errorf("select %s: %w", displayID, ErrNotAuthorized),
			UIMsg: fmt.Sprintf("You are not authorized for proposal %s", displayID),
		}
	}
	if err := s.Session.Set(ctx, repository.KeySelectedProposal, displayID); err != nil {
		return proposal.Item{}, fmt.Errorf("store selected proposal: %w", err)
	}
	s.logger().Info("proposal selected", zap.String("proposal", displayID), zap.String("proposal_id", p.ProposalID))
	return *p, nil
}

// Selected returns the current proposal, if one was chosen.
func (s *ProposalService) Selected(ctx context.Context) (proposal.Item, bool, error) {
	id, ok, err := s.Session.Get(ctx, repository.KeySelectedProposal)
	if err != nil || !ok {
		return proposal.Item{}, false, err
	}
	p, err := s.Proposals.ByDisplayID(ctx, id)
	if err != nil {
		return proposal.Item{}, false, err
	}
	if p == nil {
		return proposal.Item{}, false, nil
	}
	return *p, true, nil
}

func (s *ProposalService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
