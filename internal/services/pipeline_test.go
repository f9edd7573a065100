package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastellanos/voucherbundle/internal/config"
)

func TestPipeline_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records.xlsx")
	writeWorkbook(t, records,
		[]string{"Voucher No", "Paid To"},
		[][]string{
			{"1001", "ACME Corp"},
			{"1002", "Beta & Co."},
			{"1003", "Güido Ñ."},
		})
	primary := filepath.Join(dir, "vouchers.pdf")
	writeTestPDF(t, primary, 3, 612, 792)
	secondary := filepath.Join(dir, "supports.pdf")
	writeTestPDF(t, secondary, 1, 612, 792) // one page yields exactly 3 zones
	outDir := filepath.Join(dir, "out")

	rep := &recordingReporter{}
	pipe := NewPipeline(config.Default(), rep, testLogger())
	res, err := pipe.Run(Inputs{
		RecordsPath:   records,
		PrimaryPath:   primary,
		SecondaryPath: secondary,
		OutputDir:     outDir,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 3, res.Written)
	assert.Equal(t, 0, res.Skipped)

	for _, name := range []string{
		"1001 - ACME Corp.pdf",
		"1002 - Beta  Co..pdf",
		"1003 - Gido ..pdf",
	} {
		count, err := api.PageCountFile(filepath.Join(outDir, name))
		require.NoError(t, err, "missing %s", name)
		assert.Equal(t, 2, count)
	}
}

func TestPipeline_ProgressPhases(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records.xlsx")
	writeWorkbook(t, records,
		[]string{"Voucher No", "Paid To"},
		[][]string{{"1", "A"}, {"2", "B"}, {"3", "C"}})
	primary := filepath.Join(dir, "vouchers.pdf")
	writeTestPDF(t, primary, 3, 612, 792)
	secondary := filepath.Join(dir, "supports.pdf")
	writeTestPDF(t, secondary, 1, 612, 792)

	rep := &recordingReporter{}
	pipe := NewPipeline(config.Default(), rep, testLogger())
	_, err := pipe.Run(Inputs{
		RecordsPath:   records,
		PrimaryPath:   primary,
		SecondaryPath: secondary,
		OutputDir:     filepath.Join(dir, "out"),
	})
	require.NoError(t, err)

	require.NotEmpty(t, rep.progress)
	prev := -1
	for _, p := range rep.progress {
		assert.GreaterOrEqual(t, p, prev, "progress must be monotonic non-decreasing")
		prev = p
	}
	assert.Contains(t, rep.progress, 33, "splitting phase must end at exactly 33")
	assert.Contains(t, rep.progress, 66, "segmenting phase must end at exactly 66")
	assert.Equal(t, 100, rep.progress[len(rep.progress)-1])
}

func TestPipeline_MissingColumnFailsBeforeAnyOutput(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records.xlsx")
	writeWorkbook(t, records,
		[]string{"Wrong Header", "Paid To"},
		[][]string{{"1001", "ACME Corp"}})
	primary := filepath.Join(dir, "vouchers.pdf")
	writeTestPDF(t, primary, 1, 612, 792)
	secondary := filepath.Join(dir, "supports.pdf")
	writeTestPDF(t, secondary, 1, 612, 792)
	outDir := filepath.Join(dir, "out")

	pipe := NewPipeline(config.Default(), NopReporter{}, testLogger())
	_, err := pipe.Run(Inputs{
		RecordsPath:   records,
		PrimaryPath:   primary,
		SecondaryPath: secondary,
		OutputDir:     outDir,
	})

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Voucher No", missing.Column)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no output directory may be created on a fatal tabular error")
}

func TestPipeline_CorruptPrimaryIsFatal(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records.xlsx")
	writeWorkbook(t, records,
		[]string{"Voucher No", "Paid To"},
		[][]string{{"1001", "ACME Corp"}})
	primary := filepath.Join(dir, "vouchers.pdf")
	require.NoError(t, os.WriteFile(primary, []byte("not a pdf"), 0o644))
	secondary := filepath.Join(dir, "supports.pdf")
	writeTestPDF(t, secondary, 1, 612, 792)

	pipe := NewPipeline(config.Default(), NopReporter{}, testLogger())
	_, err := pipe.Run(Inputs{
		RecordsPath:   records,
		PrimaryPath:   primary,
		SecondaryPath: secondary,
		OutputDir:     filepath.Join(dir, "out"),
	})

	var open *DocumentOpenError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, primary, open.Path)
}
