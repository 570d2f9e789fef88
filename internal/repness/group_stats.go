package repness

import (
	"sort"

	"opinionmap/adapters/stats/proportion"
	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// VoteCounts are the raw tallies of one group on one statement
type VoteCounts struct {
	Agrees    int `json:"agrees"`
	Disagrees int `json:"disagrees"`
	Passes    int `json:"passes"`
	Total     int `json:"total"`
}

// GroupStats are the per-statement, per-group counts and smoothed scores.
// NA+ND+NP == NS; absent votes are not counted anywhere.
type GroupStats struct {
	NA  int     `json:"na"`
	ND  int     `json:"nd"`
	NP  int     `json:"np"`
	NS  int     `json:"ns"`
	PA  float64 `json:"pa"`
	PD  float64 `json:"pd"`
	PAT float64 `json:"pat"`
	PDT float64 `json:"pdt"`
}

// CountVotes tallies the present votes of a group on one statement
func CountVotes(matrix opinion.GroupVoteMatrix, tid core.StatementID) VoteCounts {
	var c VoteCounts
	for _, row := range matrix {
		vote, ok := row[tid]
		if !ok {
			continue
		}
		c.Total++
		switch vote {
		case opinion.VoteAgree:
			c.Agrees++
		case opinion.VoteDisagree:
			c.Disagrees++
		default:
			c.Passes++
		}
	}
	return c
}

// NewGroupStats derives smoothed probabilities and one-sample scores from raw counts.
// With no votes this yields pa = pd = 0.5 and pat = pdt = 0.
func NewGroupStats(c VoteCounts) GroupStats {
	return GroupStats{
		NA:  c.Agrees,
		ND:  c.Disagrees,
		NP:  c.Passes,
		NS:  c.Total,
		PA:  float64(c.Agrees+1) / float64(c.Total+2),
		PD:  float64(c.Disagrees+1) / float64(c.Total+2),
		PAT: proportion.OneSample(c.Agrees, c.Total),
		PDT: proportion.OneSample(c.Disagrees, c.Total),
	}
}

// StatementUniverse returns the statements to score: the explicit list in its given order,
// or, when none is given, the sorted union of statement IDs voted on in any matrix.
func StatementUniverse(statements []opinion.Statement, matrices map[opinion.GroupLabel]opinion.GroupVoteMatrix) []core.StatementID {
	if len(statements) > 0 {
		tids := make([]core.StatementID, 0, len(statements))
		seen := make(map[core.StatementID]bool, len(statements))
		for _, s := range statements {
			if seen[s.TID] {
				continue
			}
			seen[s.TID] = true
			tids = append(tids, s.TID)
		}
		return tids
	}

	seen := make(map[core.StatementID]bool)
	for _, matrix := range matrices {
		for _, row := range matrix {
			for tid := range row {
				seen[tid] = true
			}
		}
	}
	tids := make([]core.StatementID, 0, len(seen))
	for tid := range seen {
		tids = append(tids, tid)
	}
	sort.Slice(tids, func(i, j int) bool { return tids[i] < tids[j] })
	return tids
}

// BuildGroupStats computes stats[i][g] for statement tids[i] and groups[g]
func BuildGroupStats(tids []core.StatementID, groups []opinion.Group, matrices map[opinion.GroupLabel]opinion.GroupVoteMatrix) [][]GroupStats {
	table := make([][]GroupStats, len(tids))
	for i, tid := range tids {
		row := make([]GroupStats, len(groups))
		for g, group := range groups {
			row[g] = NewGroupStats(CountVotes(matrices[group.Label], tid))
		}
		table[i] = row
	}
	return table
}
