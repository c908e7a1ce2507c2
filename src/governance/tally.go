package governance

import (
	"context"
	"math"

	"github.com/aegisai/civicchain/src/api/types"
)

// Tally is the aggregated per-choice vote count for a proposal. Each vote
// counts as one regardless of its recorded weight.
type Tally struct {
	For        int
	Against    int
	Abstain    int
	SupportPct int
}

// Total is the number of votes of any choice.
func (t Tally) Total() int { return t.For + t.Against + t.Abstain }

// TallyEngine recomputes tallies from the full vote list. It never trusts
// previously stored counts.
type TallyEngine struct {
	ledger VoteLedger
}

func NewTallyEngine(ledger VoteLedger) *TallyEngine {
	return &TallyEngine{ledger: ledger}
}

func (e *TallyEngine) Recompute(ctx context.Context, proposalID string) (Tally, error) {
	votes, err := e.ledger.ListVotes(ctx, proposalID)
	if err != nil {
		return Tally{}, err
	}
	return Count(votes), nil
}

// Count tallies a vote list. Support is for/(for+against) rounded to whole
// percent, and 0 when there are no for/against votes at all.
func Count(votes []types.Vote) Tally {
	var t Tally
	for _, v := range votes {
		switch v.Choice {
		case types.ChoiceFor:
			t.For++
		case types.ChoiceAgainst:
			t.Against++
		case types.ChoiceAbstain:
			t.Abstain++
		}
	}
	if decided := t.For + t.Against; decided > 0 {
		t.SupportPct = int(math.Round(float64(t.For) / float64(decided) * 100))
	}
	return t
}
