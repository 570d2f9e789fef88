package app

import (
	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/repness"
)

// Count sources of a group comparison
const (
	SourceRepresentative = "representative"
	SourceMatrix         = "matrix"
)

// GroupComparison is one group's tallies on a statement
type GroupComparison struct {
	Group     opinion.Group      `json:"group"`
	Letter    string             `json:"letter"`
	Members   int                `json:"members"`
	Counts    repness.VoteCounts `json:"counts"`
	Source    string             `json:"source"`
	RepfulFor opinion.Direction  `json:"repful_for,omitempty"`
}

// StatementComparison lines up every group of a run on one statement
type StatementComparison struct {
	TID    core.StatementID  `json:"tid"`
	Text   string            `json:"text"`
	Groups []GroupComparison `json:"groups"`
}

// CompareStatement tallies tid for every group of the report. A group where tid was selected
// reports the counts of its representative entry; other groups are counted from the raw matrix.
func CompareStatement(report *AnalysisReport, tid core.StatementID) (*StatementComparison, error) {
	if report == nil {
		return nil, core.ErrRunNotFound
	}

	out := &StatementComparison{TID: tid, Text: opinion.MissingText}
	known := false
	for _, st := range report.statements {
		if st.TID == tid {
			out.Text = st.DisplayText()
			known = true
			break
		}
	}

	byLabel := report.Result.ByLabel()
	for _, g := range report.Groups {
		gc := GroupComparison{Group: g.Group, Letter: g.Letter, Members: g.Members, Source: SourceMatrix}

		if rs, ok := findRep(byLabel[g.Label], tid); ok {
			gc.Counts = repness.VoteCounts{
				Agrees:    rs.NAgree,
				Disagrees: rs.NDisagree,
				Passes:    rs.NPass,
				Total:     rs.NTrials,
			}
			gc.Source = SourceRepresentative
			gc.RepfulFor = rs.RepfulFor
			known = true
		} else {
			gc.Counts = repness.CountVotes(report.matrices[g.Label], tid)
			if gc.Counts.Total > 0 {
				known = true
			}
		}
		out.Groups = append(out.Groups, gc)
	}

	if !known {
		return nil, core.NewNotFoundError("statement", tid.String())
	}
	return out, nil
}

func findRep(list []opinion.RepStatement, tid core.StatementID) (opinion.RepStatement, bool) {
	for _, rs := range list {
		if rs.TID == tid {
			return rs, true
		}
	}
	return opinion.RepStatement{}, false
}
