package ports

import "time"

// AnalysisMetrics records analysis run outcomes
type AnalysisMetrics interface {
	RecordRun(status string, duration time.Duration)
	RecordGroupSelection(groupLetter string, selected int)
	RecordVoteLookup(groupLetter string, rows int, duration time.Duration)
}

// NoopMetrics discards every observation
type NoopMetrics struct{}

func (NoopMetrics) RecordRun(string, time.Duration) {}
func (NoopMetrics) RecordGroupSelection(string, int) {}
func (NoopMetrics) RecordVoteLookup(string, int, time.Duration) {}
