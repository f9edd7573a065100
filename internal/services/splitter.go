package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rcastellanos/voucherbundle/internal/models"
)

// Progress phase boundaries. Splitting fills 0-33, segmenting 33-66,
// assembly 66-100. Callers key off the exact boundary values.
const (
	splitPhaseEnd    = 33
	segmentPhaseEnd  = 66
	assemblePhaseEnd = 100
)

// PageSplitter splits the primary document into one single-page PDF per
// source page, in physical page order.
type PageSplitter struct {
	reporter Reporter
	logger   *slog.Logger
}

func NewPageSplitter(reporter Reporter, logger *slog.Logger) *PageSplitter {
	return &PageSplitter{reporter: reporter, logger: logger}
}

// Split extracts every page of the PDF at path into workDir. Page content
// is copied as-is; nothing is re-rasterized or reordered.
func (s *PageSplitter) Split(path, workDir string) ([]models.PageDocument, error) {
	optimized := filepath.Join(workDir, "primary.pdf")
	if err := optimizePDF(path, optimized); err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}
	pageCount, err := api.PageCountFile(optimized)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}
	if err := api.SplitFile(optimized, workDir, 1, nil); err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", path, err)
	}

	// SplitFile names single-page output <base>_<n>.pdf, 1-based.
	splitBase := optimized[:len(optimized)-len(filepath.Ext(optimized))]
	pages := make([]models.PageDocument, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pagePath := fmt.Sprintf("%s_%d.pdf", splitBase, i)
		if _, err := os.Stat(pagePath); err != nil {
			return nil, fmt.Errorf("split page %d missing: %w", i, err)
		}
		pages = append(pages, models.PageDocument{Index: i - 1, Path: pagePath})
		s.reporter.Progress(i * splitPhaseEnd / pageCount)
	}

	s.logger.Info("Primary document split.", "path", path, "pages", pageCount)
	s.reporter.Log(fmt.Sprintf("Extracted %d voucher pages from %s", pageCount, filepath.Base(path)))
	return pages, nil
}

// optimizePDF rewrites the PDF with relaxed validation so that slightly
// malformed but recoverable files still make it through the pipeline.
func optimizePDF(inPath, outPath string) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.OptimizeFile(inPath, outPath, cfg)
}
