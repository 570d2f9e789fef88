package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"

	"github.com/xuri/excelize/v2"
)

// Column names accepted for the participant and label columns, in order of preference
var (
	participantColumns = []string{"participant_id", "pid", "participant"}
	labelColumns       = []string{"label", "group", "color"}
)

// DataReader handles reading Excel and CSV label files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the first sheet (or the CSV file) into structured form
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadAssignment reads a participant/label table. Blank labels mean "no group".
func (r *DataReader) ReadAssignment() (*LabelAssignment, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	pidCol, ok := findColumn(data.Headers, participantColumns)
	if !ok {
		return nil, fmt.Errorf("no participant column (want one of %s)", strings.Join(participantColumns, ", "))
	}
	labelCol, ok := findColumn(data.Headers, labelColumns)
	if !ok {
		return nil, fmt.Errorf("no label column (want one of %s)", strings.Join(labelColumns, ", "))
	}

	out := &LabelAssignment{}
	for _, row := range data.Rows {
		pid, err := core.ParseParticipantID(row[pidCol])
		if err != nil {
			continue
		}
		var label *opinion.GroupLabel
		if raw := row[labelCol]; raw != "" {
			l := opinion.GroupLabel(raw)
			label = &l
		}
		out.Participants = append(out.Participants, pid)
		out.Labels = append(out.Labels, label)
	}
	return out, nil
}

// readExcelData reads the first sheet of the workbook
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file must have a header row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have a header row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RawRowData
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData)
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func findColumn(headers []string, candidates []string) (string, bool) {
	for _, want := range candidates {
		for _, h := range headers {
			if strings.EqualFold(h, want) {
				return h, true
			}
		}
	}
	return "", false
}
