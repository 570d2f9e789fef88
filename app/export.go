package app

import (
	"opinionmap/adapters/excel"
)

// GroupSheets lays out a report for the workbook exporter
func GroupSheets(report *AnalysisReport) []excel.GroupSheet {
	byLabel := report.Result.ByLabel()
	sheets := make([]excel.GroupSheet, 0, len(report.Groups))
	for _, g := range report.Groups {
		sheets = append(sheets, excel.GroupSheet{
			Group:      g.Group,
			Members:    g.Members,
			Statements: byLabel[g.Label],
		})
	}
	return sheets
}

// SaveWorkbook writes the report's representative statements to an xlsx file
func SaveWorkbook(report *AnalysisReport, path string) error {
	return excel.NewExporter(report.statements).Save(path, report.RunID.String(), GroupSheets(report))
}
