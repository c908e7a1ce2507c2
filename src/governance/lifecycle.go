package governance

import (
	"context"
	"sync"
	"time"

	"github.com/aegisai/civicchain/src/api/types"
)

// Controller orchestrates proposal creation, vote casting, deadline
// evaluation and cancellation. It is the only writer of derived proposal
// state (tallies and status).
type Controller struct {
	store  ProposalStore
	ledger VoteLedger
	tally  *TallyEngine

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

func NewController(store ProposalStore, ledger VoteLedger) *Controller {
	return &Controller{
		store:  store,
		ledger: ledger,
		tally:  NewTallyEngine(ledger),
		locks:  make(map[string]*sync.Mutex),
		now:    time.Now,
	}
}

// lockFor serializes cast-tally-status sequences per proposal. Votes on
// different proposals never contend.
func (c *Controller) lockFor(proposalID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[proposalID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[proposalID] = l
	}
	return l
}

func (c *Controller) CreateProposal(ctx context.Context, in CreateProposalInput) (*types.Proposal, error) {
	return c.store.Create(ctx, in)
}

// GetProposal reads a proposal, evaluating the deadline transition lazily so
// callers always see the settled status.
func (c *Controller) GetProposal(ctx context.Context, id string) (*types.Proposal, error) {
	p, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == types.StatusActive && !c.now().Before(p.EndAt) {
		return c.EvaluateDeadline(ctx, id)
	}
	return p, nil
}

func (c *Controller) ListProposals(ctx context.Context, f Filter) ([]types.Proposal, error) {
	return c.store.List(ctx, f)
}

// VoteWeight derives a vote's recorded weight from the voter's reputation.
func VoteWeight(reputation int) int {
	if reputation < 0 {
		reputation = 0
	}
	return reputation/100 + 1
}

// CastVote records or replaces the voter's vote, recomputes the tally from
// the ledger, and settles the deadline transition if the proposal expired in
// the meantime. Returns the updated proposal.
func (c *Controller) CastVote(ctx context.Context, proposalID, voterID, choice string, reputation int) (*types.Proposal, error) {
	switch choice {
	case types.ChoiceFor, types.ChoiceAgainst, types.ChoiceAbstain:
	default:
		return nil, &ValidationError{Field: "choice", Reason: "must be for, against or abstain"}
	}

	l := c.lockFor(proposalID)
	l.Lock()
	defer l.Unlock()

	if _, err := c.ledger.Cast(ctx, proposalID, voterID, choice, VoteWeight(reputation)); err != nil {
		return nil, err
	}
	t, err := c.tally.Recompute(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := c.store.WriteTally(ctx, proposalID, t); err != nil {
		return nil, err
	}

	p, err := c.store.Get(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status == types.StatusActive && !c.now().Before(p.EndAt) {
		status := settle(t, p.QuorumVotes)
		if err := c.store.WriteStatus(ctx, proposalID, status); err != nil {
			return nil, err
		}
		p.Status = status
	}
	return p, nil
}

// EvaluateDeadline transitions an active proposal whose deadline has passed
// to passed or rejected. It is idempotent: terminal proposals and active
// ones still inside their window are returned unchanged.
func (c *Controller) EvaluateDeadline(ctx context.Context, proposalID string) (*types.Proposal, error) {
	l := c.lockFor(proposalID)
	l.Lock()
	defer l.Unlock()

	p, err := c.store.Get(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status != types.StatusActive || c.now().Before(p.EndAt) {
		return p, nil
	}

	t, err := c.tally.Recompute(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := c.store.WriteTally(ctx, proposalID, t); err != nil {
		return nil, err
	}
	status := settle(t, p.QuorumVotes)
	if err := c.store.WriteStatus(ctx, proposalID, status); err != nil {
		return nil, err
	}
	p.VotesFor, p.VotesAgainst, p.VotesAbstain = t.For, t.Against, t.Abstain
	p.SupportPct = t.SupportPct
	p.Status = status
	return p, nil
}

// CancelProposal moves an active proposal to cancelled. Only the creator may
// cancel; terminal proposals reject the attempt.
func (c *Controller) CancelProposal(ctx context.Context, proposalID, actorID string) (*types.Proposal, error) {
	l := c.lockFor(proposalID)
	l.Lock()
	defer l.Unlock()

	p, err := c.store.Get(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if types.TerminalStatus(p.Status) {
		return nil, ErrInvalidState
	}
	if p.CreatorID != actorID {
		return nil, ErrForbidden
	}
	if err := c.store.WriteStatus(ctx, proposalID, types.StatusCancelled); err != nil {
		return nil, err
	}
	p.Status = types.StatusCancelled
	return p, nil
}

// ListVotes exposes the ledger rows for a proposal.
func (c *Controller) ListVotes(ctx context.Context, proposalID string) ([]types.Vote, error) {
	if _, err := c.store.Get(ctx, proposalID); err != nil {
		return nil, err
	}
	return c.ledger.ListVotes(ctx, proposalID)
}

// SweepDeadlines settles every active proposal whose deadline has passed.
// Safe to run concurrently with read-path evaluation. Returns the number of
// proposals transitioned.
func (c *Controller) SweepDeadlines(ctx context.Context) (int, error) {
	due, err := c.store.List(ctx, Filter{Status: types.StatusActive, DeadlineBefore: c.now()})
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range due {
		p, err := c.EvaluateDeadline(ctx, due[i].ID)
		if err != nil {
			return n, err
		}
		if p.Status != types.StatusActive {
			n++
		}
	}
	return n, nil
}

// settle decides the terminal outcome once the deadline has passed: passed
// needs a strict for-majority and quorum; everything else is rejected.
// A distinct expired outcome was folded into rejected.
func settle(t Tally, quorum int) string {
	if t.For > t.Against && t.Total() >= quorum {
		return types.StatusPassed
	}
	return types.StatusRejected
}
