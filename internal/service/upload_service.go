package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/model"
	"cgpa-backend/internal/store"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Students"

var exportHeader = []interface{}{"Roll Key", "Name", "Roll", "Number", "Semester", "SGPA 1", "SGPA 2", "CGPA", "Created At"}

// Import columns, matched case-insensitively against the header row.
var importColumns = []string{"name", "roll", "number", "semester", "sgpa1", "credit1", "sgpa2", "credit2"}

var ErrUnsupportedFile = errors.New("unsupported file type, expected .csv or .xlsx")

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// UploadService moves student records in and out of spreadsheets.
type UploadService struct {
	students *StudentService
	log      *logger.Logger
}

func NewUploadService(students *StudentService, log *logger.Logger) *UploadService {
	return &UploadService{
		students: students,
		log:      log.With("service", "UploadService"),
	}
}

// Import reads rows from a .csv or .xlsx file and inserts each new roll key.
// Rows for keys that already exist are skipped; import never overwrites.
func (s *UploadService) Import(ctx context.Context, fileName string, file io.Reader) (ImportResult, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		rows, err = readCSV(file)
	case ".xlsx":
		rows, err = readXLSX(file)
	default:
		return ImportResult{}, ErrUnsupportedFile
	}
	if err != nil {
		return ImportResult{}, err
	}
	if len(rows) == 0 {
		return ImportResult{}, errors.New("file has no header row")
	}

	columns := indexColumns(rows[0])
	var result ImportResult
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		line := i + 2
		sub, err := rowToSubmission(columns, row)
		if err != nil {
			s.log.Warn("Skipping invalid import row", "file", fileName, "row", line, "error", err)
			result.Failed++
			continue
		}
		_, err = s.students.Insert(ctx, sub)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, store.ErrDuplicate):
			result.Skipped++
		default:
			s.log.Error("Failed to import row", "file", fileName, "row", line, "error", err)
			result.Failed++
		}
	}

	s.log.Info("Import finished", "file", fileName,
		"imported", result.Imported, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// Export writes every record into an .xlsx workbook.
func (s *UploadService) Export(ctx context.Context, w io.Writer) error {
	students, _, _, err := s.students.ListStudents(ctx, store.ListQuery{SortBy: "roll_key"})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("Error closing workbook", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, st := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{st.RollKey, st.Name, st.Roll, st.Number, st.Semester, st.SGPA1, st.SGPA2, st.CGPA, st.CreatedAt}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	return rows, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(importColumns))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		for _, want := range importColumns {
			if key == want {
				columns[want] = i
			}
		}
	}
	return columns
}

func rowToSubmission(columns map[string]int, row []string) (model.Submission, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	sub := model.Submission{
		Name:   cell("name"),
		Roll:   cell("roll"),
		Number: cell("number"),
	}
	var err error
	if sub.Semester, err = ParseIntField(cell("semester"), 0); err != nil {
		return sub, fmt.Errorf("semester: %w", err)
	}
	if sub.SGPA1, err = ParseFloatField(cell("sgpa1"), DefaultSGPA); err != nil {
		return sub, fmt.Errorf("sgpa1: %w", err)
	}
	if sub.SGPA2, err = ParseFloatField(cell("sgpa2"), DefaultSGPA); err != nil {
		return sub, fmt.Errorf("sgpa2: %w", err)
	}
	if sub.Credit1, err = ParseIntField(cell("credit1"), DefaultCredit); err != nil {
		return sub, fmt.Errorf("credit1: %w", err)
	}
	if sub.Credit2, err = ParseIntField(cell("credit2"), DefaultCredit); err != nil {
		return sub, fmt.Errorf("credit2: %w", err)
	}
	if sub.RollKey() == "" {
		return sub, ErrMissingRollKey
	}
	return sub, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
