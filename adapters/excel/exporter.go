package excel

import (
	"fmt"
	"io"
	"log"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var groupHeaders = []string{
	"tid", "statement", "repful_for", "n_agree", "n_disagree", "n_pass",
	"n_success", "n_trials", "p_success", "p_test", "repness", "repness_test", "p_value", "best_agree",
}

// Exporter writes representative statements to a workbook, one sheet per group
type Exporter struct {
	texts map[core.StatementID]string
}

// NewExporter creates an exporter. Statements without metadata are written as "<missing>".
func NewExporter(statements []opinion.Statement) *Exporter {
	texts := make(map[core.StatementID]string, len(statements))
	for _, st := range statements {
		texts[st.TID] = st.DisplayText()
	}
	return &Exporter{texts: texts}
}

// Build assembles the workbook in memory. The caller closes it.
func (e *Exporter) Build(runID string, sheets []GroupSheet) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with Sheet1
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}

	summary := [][]any{
		{"run_id", runID},
		{},
		{"group", "label", "members", "representative_statements"},
	}
	for _, gs := range sheets {
		summary = append(summary, []any{gs.Group.Letter(), string(gs.Group.Label), gs.Members, len(gs.Statements)})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		f.Close()
		return nil, err
	}

	for _, gs := range sheets {
		name := sheetName(gs.Group)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		rows := [][]any{toAny(groupHeaders)}
		for _, rs := range gs.Statements {
			rows = append(rows, []any{
				int(rs.TID), e.text(rs.TID), string(rs.RepfulFor), rs.NAgree, rs.NDisagree, rs.NPass,
				rs.NSuccess, rs.NTrials, rs.PSuccess, rs.PTest, rs.Repness, rs.RepnessTest, rs.PValue, rs.BestAgree,
			})
		}
		if err := writeRows(f, name, rows); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// Write builds the workbook and streams it to w
func (e *Exporter) Write(w io.Writer, runID string, sheets []GroupSheet) error {
	f, err := e.Build(runID, sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save builds the workbook and writes it to path
func (e *Exporter) Save(path, runID string, sheets []GroupSheet) error {
	f, err := e.Build(runID, sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	log.Printf("[Exporter] wrote %d group sheets to %s", len(sheets), path)
	return nil
}

func (e *Exporter) text(tid core.StatementID) string {
	if txt, ok := e.texts[tid]; ok {
		return txt
	}
	return opinion.MissingText
}

// sheetName is "Group A" up to "Group Z". Letters past Z include characters Excel
// rejects in sheet names, so later groups are numbered instead.
func sheetName(g opinion.Group) string {
	if g.Index >= 0 && g.Index < 26 {
		return "Group " + g.Letter()
	}
	return fmt.Sprintf("Group %d", g.Index+1)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
