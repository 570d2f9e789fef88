package repness

import (
	"math"
	"sort"

	"opinionmap/adapters/stats/proportion"
	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// slotKind says what, if anything, a selector slot currently holds
type slotKind int

const (
	slotNone slotKind = iota
	slotBestByTest
	slotBestAgree
)

// slot holds one selector candidate
type slot struct {
	kind  slotKind
	tid   core.StatementID
	stats ComparativeStats
	final opinion.RepStatement
}

func (s slot) filled() bool { return s.kind != slotNone }

// accumulator is the per-group selector state threaded through the statement fold
type accumulator struct {
	best       slot
	bestAgree  slot
	sufficient []opinion.RepStatement
}

// selector evaluates the decision rules under one set of settings
type selector struct {
	settings Settings
	tester   proportion.Tester
}

func newSelector(settings Settings) selector {
	settings = settings.normalized()
	return selector{settings: settings, tester: proportion.NewTester(settings.SignificanceZ)}
}

// passesByTest: within-group and between-group significance agree in one direction
func (s selector) passesByTest(c ComparativeStats) bool {
	return (s.tester.IsSignificant(c.RAT) && s.tester.IsSignificant(c.PAT)) ||
		(s.tester.IsSignificant(c.RDT) && s.tester.IsSignificant(c.PDT))
}

// beatsBestByTest: strictly greater wins, so the first-seen statement keeps ties
func (s selector) beatsBestByTest(c ComparativeStats, current slot) bool {
	if !current.filled() {
		return true
	}
	return math.Max(c.RAT, c.RDT) > current.final.RepnessTest
}

func (s selector) beatsBestAgree(c ComparativeStats, current slot) bool {
	if c.NA == 0 && c.ND == 0 {
		return false
	}
	if current.filled() {
		cur := current.stats
		if cur.RA > 1.0 {
			return c.RA*c.RAT*c.PA*c.PAT > cur.RA*cur.RAT*cur.PA*cur.PAT
		}
		return c.PA*c.PAT > cur.PA*cur.PAT
	}
	return s.tester.IsSignificant(c.PAT) || (c.RA > 1.0 && c.PA > 0.5)
}

// step folds one statement into a group's accumulator and returns the next state
func (s selector) step(acc accumulator, tid core.StatementID, c ComparativeStats) accumulator {
	next := acc

	if s.passesByTest(c) {
		next.sufficient = append(next.sufficient, Finalize(tid, c, s.settings.MinVotes))
	}

	if s.beatsBestByTest(c, acc.best) {
		next.best = slot{kind: slotBestByTest, tid: tid, stats: c, final: Finalize(tid, c, s.settings.MinVotes)}
	}

	if s.beatsBestAgree(c, acc.bestAgree) {
		next.bestAgree = slot{kind: slotBestAgree, tid: tid, stats: c}
	}

	return next
}

// assemble turns a finished accumulator into the group's ordered list
func (s selector) assemble(acc accumulator) []opinion.RepStatement {
	selected := make([]opinion.RepStatement, 0, len(acc.sufficient)+1)
	remaining := acc.sufficient

	if acc.bestAgree.filled() {
		exemplar := Finalize(acc.bestAgree.tid, acc.bestAgree.stats, s.settings.MinVotes)
		exemplar.BestAgree = true
		selected = append(selected, exemplar)

		filtered := make([]opinion.RepStatement, 0, len(remaining))
		for _, r := range remaining {
			if r.TID != exemplar.TID {
				filtered = append(filtered, r)
			}
		}
		remaining = filtered
	}

	sorted := make([]opinion.RepStatement, len(remaining))
	copy(sorted, remaining)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metric() > sorted[j].Metric()
	})
	selected = append(selected, sorted...)

	if len(selected) > s.settings.MaxResultsPerGroup {
		selected = selected[:s.settings.MaxResultsPerGroup]
	}

	if len(selected) == 0 && acc.best.filled() {
		return []opinion.RepStatement{acc.best.final}
	}

	return AgreesBeforeDisagrees(selected)
}

// Finalize restates a statement's stats in terms of its representative direction.
// Agree wins when it is the stronger comparative signal with enough votes, or whenever
// disagree has fewer than minVotes votes.
func Finalize(tid core.StatementID, c ComparativeStats, minVotes int) opinion.RepStatement {
	agree := (c.RAT > c.RDT && c.NA >= minVotes) || c.ND < minVotes

	r := opinion.RepStatement{
		TID:       tid,
		NAgree:    c.NA,
		NDisagree: c.ND,
		NPass:     c.NS - c.NA - c.ND,
		NTrials:   c.NS,
	}
	if agree {
		r.RepfulFor = opinion.DirectionAgree
		r.NSuccess = c.NA
		r.PSuccess = c.PA
		r.PTest = c.PAT
		r.Repness = c.RA
		r.RepnessTest = c.RAT
	} else {
		r.RepfulFor = opinion.DirectionDisagree
		r.NSuccess = c.ND
		r.PSuccess = c.PD
		r.PTest = c.PDT
		r.Repness = c.RD
		r.RepnessTest = c.RDT
	}
	r.PValue = proportion.OneTailedPValue(r.RepnessTest)
	return r
}

// AgreesBeforeDisagrees is a stable partition: agree entries first, each bucket keeps its order
func AgreesBeforeDisagrees(statements []opinion.RepStatement) []opinion.RepStatement {
	out := make([]opinion.RepStatement, 0, len(statements))
	for _, r := range statements {
		if r.RepfulFor == opinion.DirectionAgree {
			out = append(out, r)
		}
	}
	for _, r := range statements {
		if r.RepfulFor != opinion.DirectionAgree {
			out = append(out, r)
		}
	}
	return out
}
