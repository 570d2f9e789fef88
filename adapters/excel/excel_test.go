package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExporter_SheetPerGroup(t *testing.T) {
	exp := NewExporter([]opinion.Statement{{TID: 1, Text: "Parks need more funding"}})
	sheets := []GroupSheet{
		{
			Group:   opinion.Group{Label: "red", Index: 0},
			Members: 10,
			Statements: []opinion.RepStatement{
				{TID: 1, NAgree: 9, NDisagree: 1, RepfulFor: opinion.DirectionAgree, BestAgree: true},
				{TID: 2, NAgree: 1, NDisagree: 8, RepfulFor: opinion.DirectionDisagree},
			},
		},
		{Group: opinion.Group{Label: "blue", Index: 1}, Members: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, "run-1", sheets))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Group A", "Group B"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"run_id", "run-1"}, summary[0])
	assert.Equal(t, []string{"A", "red", "10", "2"}, summary[3])
	assert.Equal(t, []string{"B", "blue", "0", "0"}, summary[4])

	rows, err := f.GetRows("Group A")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "tid", rows[0][0])
	assert.Equal(t, []string{"1", "Parks need more funding", "agree"}, rows[1][:3])
	assert.Equal(t, "TRUE", rows[1][13])
	assert.Equal(t, opinion.MissingText, rows[2][1])

	empty, err := f.GetRows("Group B")
	require.NoError(t, err)
	assert.Len(t, empty, 1)
}

func TestDataReader_ReadAssignmentCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	require.NoError(t, os.WriteFile(path, []byte("participant_id,label\np1,red\np2,\np3,blue\n,red\n"), 0o644))

	a, err := NewDataReader(path).ReadAssignment()
	require.NoError(t, err)

	assert.Equal(t, []core.ParticipantID{"p1", "p2", "p3"}, a.Participants)
	require.Len(t, a.Labels, 3)
	assert.Equal(t, opinion.GroupLabel("red"), *a.Labels[0])
	assert.Nil(t, a.Labels[1])
	assert.Equal(t, opinion.GroupLabel("blue"), *a.Labels[2])
}

func TestDataReader_ReadAssignmentXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"PID", "Group"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"p1", "green"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	a, err := NewDataReader(path).ReadAssignment()
	require.NoError(t, err)
	assert.Equal(t, []core.ParticipantID{"p1"}, a.Participants)
	assert.Equal(t, opinion.GroupLabel("green"), *a.Labels[0])
}

func TestDataReader_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	require.NoError(t, os.WriteFile(path, []byte("who,what\np1,red\n"), 0o644))

	_, err := NewDataReader(path).ReadAssignment()
	assert.Error(t, err)
}

func TestSheetName_PastZ(t *testing.T) {
	assert.Equal(t, "Group A", sheetName(opinion.Group{Index: 0}))
	assert.Equal(t, "Group Z", sheetName(opinion.Group{Index: 25}))
	assert.Equal(t, "Group 27", sheetName(opinion.Group{Index: 26}))

	f, err := NewExporter(nil).Build("run-1", []GroupSheet{{Group: opinion.Group{Label: "late", Index: 26}}})
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Group 27")
}
