// Package repness computes which statements are statistically representative of each
// participant group relative to everyone else.
//
// A run is a pure function of its AnalysisContext: vote matrices are counted per statement
// and group, each group is compared against the pooled other groups, and a per-group fold
// over statements selects a bounded, ordered list of representative statements.
package repness

import (
	"sort"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// AnalysisContext is everything one run depends on. It is never mutated by the engine.
type AnalysisContext struct {
	// Groups in display order. When empty, groups are derived from the matrix labels.
	Groups []opinion.Group
	// Matrices holds one vote matrix per group label. Missing labels count as empty groups.
	Matrices map[opinion.GroupLabel]opinion.GroupVoteMatrix
	// Statements is optional; when empty the statement universe is inferred from the votes.
	Statements []opinion.Statement
	Settings   Settings
}

// StatementStats is the comparative statistics of one statement, aligned with the run's groups
type StatementStats struct {
	TID    core.StatementID   `json:"tid"`
	Groups []ComparativeStats `json:"groups"`
}

// OrderedGroups returns the run's groups sorted by index, with duplicate labels dropped
func (a AnalysisContext) OrderedGroups() []opinion.Group {
	if len(a.Groups) == 0 {
		labels := make([]string, 0, len(a.Matrices))
		for label := range a.Matrices {
			labels = append(labels, string(label))
		}
		sort.Strings(labels)
		groups := make([]opinion.Group, len(labels))
		for i, label := range labels {
			groups[i] = opinion.Group{Label: opinion.GroupLabel(label), Index: i}
		}
		return groups
	}

	groups := make([]opinion.Group, 0, len(a.Groups))
	seen := make(map[opinion.GroupLabel]bool, len(a.Groups))
	for _, g := range a.Groups {
		if seen[g.Label] {
			continue
		}
		seen[g.Label] = true
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Index < groups[j].Index })
	return groups
}

// ComputeStatistics runs the counting and comparative stages
func ComputeStatistics(a AnalysisContext) ([]opinion.Group, []StatementStats) {
	groups := a.OrderedGroups()
	tids := StatementUniverse(a.Statements, a.Matrices)
	table := BuildGroupStats(tids, groups, a.Matrices)

	out := make([]StatementStats, len(tids))
	for i, tid := range tids {
		out[i] = StatementStats{TID: tid, Groups: CompareRow(table[i])}
	}
	return groups, out
}

// Compute runs the full pipeline and returns each group's representative statements
func Compute(a AnalysisContext) opinion.RepnessResult {
	groups, stats := ComputeStatistics(a)
	sel := newSelector(a.Settings)

	removed := make(map[core.StatementID]bool)
	for _, s := range a.Statements {
		if s.IsRemoved() {
			removed[s.TID] = true
		}
	}

	accs := make([]accumulator, len(groups))
	for _, st := range stats {
		if removed[st.TID] && !sel.settings.IncludeModerated {
			continue
		}
		for g := range groups {
			accs[g] = sel.step(accs[g], st.TID, st.Groups[g])
		}
	}

	result := opinion.RepnessResult{Groups: make([]opinion.GroupRepness, len(groups))}
	for g, group := range groups {
		statements := []opinion.RepStatement{}
		if len(a.Matrices[group.Label]) > 0 {
			statements = sel.assemble(accs[g])
		}
		result.Groups[g] = opinion.GroupRepness{Group: group, Statements: statements}
	}
	return result
}
