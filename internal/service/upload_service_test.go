package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/model"
	"cgpa-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newUploadService(t *testing.T) (*service.UploadService, *service.StudentService) {
	students := newStudentService(t, setupTestStore(t))
	return service.NewUploadService(students, logger.NewNop()), students
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	uploads, students := newUploadService(t)

	// Asha already exists and must not be overwritten.
	require.Equal(t, service.OutcomeCreated, students.Submit(ctx, sampleSubmission()).Outcome)

	csvData := strings.Join([]string{
		"Name,Roll,Number,Semester,SGPA1,Credit1,SGPA2,Credit2",
		"Ravi,21CS043,9000000001,3,8.5,20,9.1,24",
		"Asha Overwrite,21CS042,9876543210,5,1,1,1,1",
		"Meera,21CS044,9000000002,3,,,7,",
		"Broken,21CS045,9000000003,3,abc,4,7,4",
		"No Key,,,3,7,4,7,4",
		",,,,,,,",
		"Ravi Again,21CS043,9000000001,3,1,1,1,1",
	}, "\n")

	result, err := uploads.Import(ctx, "students.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Imported: 2, Skipped: 2, Failed: 2}, result)

	ravi, err := students.GetStudent(ctx, "21CS0439000000001")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", ravi.Name)
	assert.Equal(t, "8.83", service.FormatCGPA(ravi.CGPA))

	meera, err := students.GetStudent(ctx, "21CS0449000000002")
	require.NoError(t, err)
	assert.Equal(t, "3.50", service.FormatCGPA(meera.CGPA))

	asha, err := students.GetStudent(ctx, "21CS0429876543210")
	require.NoError(t, err)
	assert.Equal(t, "Asha", asha.Name)
}

func TestImportXLSX(t *testing.T) {
	ctx := context.Background()
	uploads, students := newUploadService(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"roll", "number", "name", "sgpa1", "sgpa2", "credit1", "credit2", "semester"},
		{"R1", "111", "Kiran", 3.5, 3.8, 4, 4, 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	result, err := uploads.Import(ctx, "Students.XLSX", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	rec, err := students.GetStudent(ctx, "R1111")
	require.NoError(t, err)
	assert.Equal(t, "Kiran", rec.Name)
	assert.Equal(t, 2, rec.Semester)
	assert.Equal(t, "3.65", service.FormatCGPA(rec.CGPA))
}

func TestImportRejectsUnsupportedFile(t *testing.T) {
	uploads, _ := newUploadService(t)

	_, err := uploads.Import(context.Background(), "students.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, service.ErrUnsupportedFile)

	_, err = uploads.Import(context.Background(), "empty.csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestExportWorkbook(t *testing.T) {
	ctx := context.Background()
	uploads, students := newUploadService(t)

	for _, sub := range []model.Submission{
		sampleSubmission(),
		{Name: "Ravi", Roll: "21CS043", Number: "9000000001", Semester: 3, SGPA1: 8, Credit1: 1, SGPA2: 9, Credit2: 1},
	} {
		require.Equal(t, service.OutcomeCreated, students.Submit(ctx, sub).Outcome)
	}

	var buf bytes.Buffer
	require.NoError(t, uploads.Export(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Roll Key", rows[0][0])
	assert.Equal(t, []string{"21CS0429876543210", "Asha", "21CS042", "9876543210", "3"}, rows[1][:5])
	assert.Equal(t, "Ravi", rows[2][1])
	assert.Equal(t, "8.5", rows[2][7])
	assert.Equal(t, "2025-01-02 08:34:05", rows[2][8])
}
