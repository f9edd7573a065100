package services

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeTestPDF renders a PDF with the given number of pages, all sized
// w x h points, each carrying a visible page marker.
func writeTestPDF(t *testing.T, path string, pages int, w, h float64) {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 0; i < pages; i++ {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		pdf.Text(72, 72, fmt.Sprintf("Page %d", i+1))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

// writeWorkbook writes an xlsx file with a header row followed by rows.
func writeWorkbook(t *testing.T, path string, header []string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]
	all := append([][]string{header}, rows...)
	for r, row := range all {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

// recordingReporter captures events for assertions. The pipeline emits from
// a single goroutine, so no locking is needed.
type recordingReporter struct {
	progress []int
	logs     []string
}

func (r *recordingReporter) Progress(p int) { r.progress = append(r.progress, p) }
func (r *recordingReporter) Log(m string)   { r.logs = append(r.logs, m) }

func (r *recordingReporter) hasLogContaining(substr string) bool {
	for _, m := range r.logs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
