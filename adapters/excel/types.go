package excel

import (
	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// RawRowData represents a row of raw sheet data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// LabelAssignment is a painting state read from a spreadsheet: one label per participant,
// nil for participants without a group
type LabelAssignment struct {
	Participants []core.ParticipantID
	Labels       []*opinion.GroupLabel
}

// GroupSheet is the content of one exported group sheet
type GroupSheet struct {
	Group      opinion.Group
	Members    int
	Statements []opinion.RepStatement
}
