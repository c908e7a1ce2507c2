package governance

import (
	"testing"

	"github.com/aegisai/civicchain/src/api/types"
	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	cases := []struct {
		name    string
		choices []string
		want    Tally
	}{
		{name: "empty", choices: nil, want: Tally{}},
		{
			name:    "all abstain has zero support",
			choices: []string{types.ChoiceAbstain, types.ChoiceAbstain},
			want:    Tally{Abstain: 2, SupportPct: 0},
		},
		{
			name:    "unanimous for",
			choices: []string{types.ChoiceFor, types.ChoiceFor},
			want:    Tally{For: 2, SupportPct: 100},
		},
		{
			name:    "split",
			choices: []string{types.ChoiceFor, types.ChoiceAgainst},
			want:    Tally{For: 1, Against: 1, SupportPct: 50},
		},
		{
			name: "two thirds rounds to 67",
			choices: []string{
				types.ChoiceFor, types.ChoiceFor, types.ChoiceAgainst,
			},
			want: Tally{For: 2, Against: 1, SupportPct: 67},
		},
		{
			name: "abstain excluded from support",
			choices: []string{
				types.ChoiceFor, types.ChoiceAgainst, types.ChoiceAbstain,
			},
			want: Tally{For: 1, Against: 1, Abstain: 1, SupportPct: 50},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			votes := make([]types.Vote, 0, len(tc.choices))
			for _, c := range tc.choices {
				votes = append(votes, types.Vote{Choice: c})
			}
			assert.Equal(t, tc.want, Count(votes))
		})
	}
}

func TestVoteWeight(t *testing.T) {
	cases := []struct {
		reputation int
		want       int
	}{
		{reputation: 0, want: 1},
		{reputation: 50, want: 1},
		{reputation: 99, want: 1},
		{reputation: 100, want: 2},
		{reputation: 250, want: 3},
		{reputation: -5, want: 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, VoteWeight(tc.reputation), "reputation %d", tc.reputation)
	}
}
