package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rcastellanos/voucherbundle/internal/models"
)

// Assembler pairs each record with its voucher page and support zone by
// position and writes one combined PDF per record. A record with no page or
// zone at its index is skipped with a warning; one bad record never aborts
// the batch.
type Assembler struct {
	reporter Reporter
	logger   *slog.Logger
}

func NewAssembler(reporter Reporter, logger *slog.Logger) *Assembler {
	return &Assembler{reporter: reporter, logger: logger}
}

// Assemble writes the per-record bundles into destDir and returns how many
// were written. secondaryPath is the support document the zones refer to;
// workDir holds intermediate single-page files.
func (a *Assembler) Assemble(records []models.Record, pages []models.PageDocument, zones []models.Zone, secondaryPath, destDir, workDir string) (int, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory %s: %w", destDir, err)
	}

	written := 0
	seen := make(map[string]int) // filename -> first record index
	for i, rec := range records {
		if i >= len(pages) || i >= len(zones) {
			a.warnf("Not enough voucher pages or support sections for record %d (%s)", i+1, rec.ID)
			continue
		}

		filename := fmt.Sprintf("%s - %s.pdf", rec.ID, SanitizeFilename(rec.Recipient))
		if first, dup := seen[filename]; dup {
			a.warnf("Filename collision: records %d and %d both produce %q; the later file wins", first+1, i+1, filename)
		} else {
			seen[filename] = i
		}

		cropped := filepath.Join(workDir, fmt.Sprintf("section_%d.pdf", i))
		if err := cropZone(secondaryPath, cropped, zones[i]); err != nil {
			a.warnf("Record %d (%s): failed to extract support section: %v", i+1, rec.ID, err)
			continue
		}

		outPath := filepath.Join(destDir, filename)
		if err := api.MergeCreateFile([]string{pages[i].Path, cropped}, outPath, false, nil); err != nil {
			a.warnf("Record %d (%s): failed to write %s: %v", i+1, rec.ID, filename, err)
			continue
		}

		written++
		a.reporter.Progress(segmentPhaseEnd + (i+1)*(assemblePhaseEnd-segmentPhaseEnd)/len(records))
		a.reporter.Log(fmt.Sprintf("Generated %s", filename))
		a.logger.Info("Bundle written.", "record", i+1, "file", filename)
	}

	a.reporter.Progress(assemblePhaseEnd)
	return written, nil
}

// cropZone isolates the zone's source page from the support document and
// sets its crop box to the zone rectangle, so the resulting single page has
// exactly the zone's dimensions with content at 1:1 scale.
func cropZone(secondaryPath, outPath string, z models.Zone) error {
	trimmed := outPath + ".page"
	pageNr := strconv.Itoa(z.SourcePage + 1)
	if err := api.TrimFile(secondaryPath, trimmed, []string{pageNr}, nil); err != nil {
		return fmt.Errorf("failed to isolate page %s: %w", pageNr, err)
	}
	defer os.Remove(trimmed)

	// Zone rects are top-origin; PDF user space has its origin bottom-left.
	r := z.Rect
	box := &model.Box{
		Rect: types.NewRectangle(r.X0, z.PageHeight-r.Y1, r.X1, z.PageHeight-r.Y0),
	}
	if err := api.CropFile(trimmed, outPath, nil, box, nil); err != nil {
		return fmt.Errorf("failed to crop page %s: %w", pageNr, err)
	}
	return nil
}

func (a *Assembler) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Warn(msg)
	a.reporter.Log("Warning: " + msg)
}

// SanitizeFilename reduces a recipient name to characters that are safe in
// a filename on every platform we care about: ASCII letters, digits,
// spaces, dots, underscores and hyphens. Surrounding whitespace is trimmed.
// The function is idempotent.
func SanitizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
