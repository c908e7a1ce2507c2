package governance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aegisai/civicchain/src/api/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProposalInput carries the caller-supplied fields of a new proposal.
// Everything else (id, status, tallies, timestamps) is assigned here.
type CreateProposalInput struct {
	Title       string
	Description string
	Category    string
	CreatorID   string
	QuorumVotes int
	EndAt       time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status         string
	Category       string
	CreatorID      string
	DeadlineBefore time.Time
}

// ProposalStore is the storage contract for proposals. WriteTally and
// WriteStatus are the only mutation paths after creation; there is no
// generic update.
type ProposalStore interface {
	Create(ctx context.Context, in CreateProposalInput) (*types.Proposal, error)
	Get(ctx context.Context, id string) (*types.Proposal, error)
	List(ctx context.Context, f Filter) ([]types.Proposal, error)
	WriteTally(ctx context.Context, id string, t Tally) error
	WriteStatus(ctx context.Context, id, status string) error
}

// VoteLedger holds at most one vote row per (proposal, voter). Cast replaces
// the existing row in place, keeping its id.
type VoteLedger interface {
	Cast(ctx context.Context, proposalID, voterID, choice string, weight int) (*types.Vote, error)
	GetVote(ctx context.Context, proposalID, voterID string) (*types.Vote, error)
	ListVotes(ctx context.Context, proposalID string) ([]types.Vote, error)
}

// GormStore backs both ProposalStore and VoteLedger with a gorm database.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Create(ctx context.Context, in CreateProposalInput) (*types.Proposal, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if !types.ValidCategory(in.Category) {
		return nil, &ValidationError{Field: "category", Reason: "unrecognized category"}
	}
	if in.QuorumVotes <= 0 {
		return nil, &ValidationError{Field: "quorumVotes", Reason: "must be positive"}
	}
	if !in.EndAt.After(s.now()) {
		return nil, &ValidationError{Field: "endAt", Reason: "must be in the future"}
	}

	p := types.Proposal{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		CreatorID:   in.CreatorID,
		Status:      types.StatusActive,
		QuorumVotes: in.QuorumVotes,
		EndAt:       in.EndAt,
		CreatedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, storageErr(err)
	}
	return &p, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*types.Proposal, error) {
	var p types.Proposal
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &p, nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]types.Proposal, error) {
	q := s.db.WithContext(ctx).Model(&types.Proposal{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.CreatorID != "" {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if !f.DeadlineBefore.IsZero() {
		q = q.Where("end_at <= ?", f.DeadlineBefore)
	}
	var out []types.Proposal
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func (s *GormStore) WriteTally(ctx context.Context, id string, t Tally) error {
	res := s.db.WithContext(ctx).Model(&types.Proposal{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"votes_for":     t.For,
			"votes_against": t.Against,
			"votes_abstain": t.Abstain,
			"support_pct":   t.SupportPct,
		})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) WriteStatus(ctx context.Context, id, status string) error {
	res := s.db.WithContext(ctx).Model(&types.Proposal{}).Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Cast replaces any existing vote by the voter on the proposal, keeping the
// original row id. The status/deadline guard runs inside the same
// transaction as the write so a late cast can never slip past a concurrent
// finalization.
func (s *GormStore) Cast(ctx context.Context, proposalID, voterID, choice string, weight int) (*types.Vote, error) {
	var vote types.Vote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p types.Proposal
		if err := tx.First(&p, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageErr(err)
		}
		if p.Status != types.StatusActive {
			return &VotingClosedError{Reason: "proposal is " + p.Status}
		}
		if !s.now().Before(p.EndAt) {
			return &VotingClosedError{Reason: "voting deadline has passed"}
		}

		replace := func() error {
			vote.Choice = choice
			vote.Weight = weight
			vote.CastAt = s.now()
			err := tx.Model(&types.Vote{}).Where("id = ?", vote.ID).
				Updates(map[string]interface{}{
					"choice":  vote.Choice,
					"weight":  vote.Weight,
					"cast_at": vote.CastAt,
				}).Error
			if err != nil {
				return storageErr(err)
			}
			return nil
		}

		err := tx.First(&vote, "proposal_id = ? AND voter_id = ?", proposalID, voterID).Error
		if err == nil {
			return replace()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageErr(err)
		}

		vote = types.Vote{
			ID:         uuid.NewString(),
			ProposalID: proposalID,
			VoterID:    voterID,
			Choice:     choice,
			Weight:     weight,
			CastAt:     s.now(),
		}
		if cerr := tx.Create(&vote).Error; cerr != nil {
			// Unique (proposal, voter) index tripped by a concurrent first
			// cast; the row exists now, so fall back to replacing it.
			if ferr := tx.First(&vote, "proposal_id = ? AND voter_id = ?", proposalID, voterID).Error; ferr != nil {
				return storageErr(cerr)
			}
			return replace()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetVote returns nil, nil when the voter has no vote on the proposal.
func (s *GormStore) GetVote(ctx context.Context, proposalID, voterID string) (*types.Vote, error) {
	var v types.Vote
	err := s.db.WithContext(ctx).First(&v, "proposal_id = ? AND voter_id = ?", proposalID, voterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &v, nil
}

func (s *GormStore) ListVotes(ctx context.Context, proposalID string) ([]types.Vote, error) {
	var out []types.Vote
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("cast_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}
