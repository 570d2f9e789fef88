package app

import (
	"opinionmap/domain/opinion"

	"github.com/montanaflynn/stats"
)

// Distribution holds summary statistics of one series; zero for an empty series
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// RunSummary is the at-a-glance description of a run
type RunSummary struct {
	Groups           int          `json:"groups"`
	NonEmptyGroups   int          `json:"non_empty_groups"`
	Statements       int          `json:"statements"`
	Selected         int          `json:"selected"`
	AgreeSelected    int          `json:"agree_selected"`
	DisagreeSelected int          `json:"disagree_selected"`
	GroupSizes       Distribution `json:"group_sizes"`
	Metric           Distribution `json:"metric"`
}

// Summarize describes group sizes and the ranking metric of every selected statement
func Summarize(groups []GroupSummary, result opinion.RepnessResult, statements int) RunSummary {
	summary := RunSummary{
		Groups:     len(groups),
		Statements: statements,
	}

	sizes := make([]float64, 0, len(groups))
	for _, g := range groups {
		if g.Members > 0 {
			summary.NonEmptyGroups++
		}
		sizes = append(sizes, float64(g.Members))
	}

	var metrics []float64
	for _, g := range result.Groups {
		for _, rs := range g.Statements {
			summary.Selected++
			if rs.RepfulFor == opinion.DirectionAgree {
				summary.AgreeSelected++
			} else {
				summary.DisagreeSelected++
			}
			metrics = append(metrics, rs.Metric())
		}
	}

	summary.GroupSizes = describe(sizes)
	summary.Metric = describe(metrics)
	return summary
}

func describe(data []float64) Distribution {
	d := Distribution{Count: len(data)}
	if len(data) == 0 {
		return d
	}

	// errors only occur on empty input
	d.Mean, _ = stats.Mean(data)
	d.Median, _ = stats.Median(data)
	d.Min, _ = stats.Min(data)
	d.Max, _ = stats.Max(data)
	return d
}
