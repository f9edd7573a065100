package services

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rcastellanos/voucherbundle/internal/config"
	"github.com/rcastellanos/voucherbundle/internal/models"
)

// RecordReader loads the tabular source and validates the required columns.
// Row order is preserved; it is the alignment key for the whole pipeline.
type RecordReader struct {
	columns  config.Columns
	reporter Reporter
	logger   *slog.Logger
}

func NewRecordReader(columns config.Columns, reporter Reporter, logger *slog.Logger) *RecordReader {
	return &RecordReader{columns: columns, reporter: reporter, logger: logger}
}

// Read parses the spreadsheet at path into ordered records. Both required
// columns are checked before any record is emitted, since downstream
// alignment depends on every row carrying both fields.
func (r *RecordReader) Read(path string) ([]models.Record, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	default:
		rows, err = readWorkbookRows(path)
	}
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	idCol, err := findColumn(header, r.columns.ID)
	if err != nil {
		return nil, err
	}
	recipientCol, err := findColumn(header, r.columns.Recipient)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.Record{
			ID:        cell(row, idCol),
			Recipient: cell(row, recipientCol),
		}
		for i, name := range header {
			if i == idCol || i == recipientCol || strings.TrimSpace(name) == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[strings.TrimSpace(name)] = cell(row, i)
		}
		records = append(records, rec)
	}

	r.logger.Info("Tabular source loaded.", "path", path, "records", len(records))
	r.reporter.Log(fmt.Sprintf("Found %d records in %s", len(records), filepath.Base(path)))
	return records, nil
}

func findColumn(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return 0, &MissingFieldError{Column: name}
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may be ragged; missing cells read as empty
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}
