package services

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rcastellanos/voucherbundle/internal/config"
	"github.com/rcastellanos/voucherbundle/internal/models"
)

// ZoneSegmenter partitions every page of the secondary document into three
// vertically overlapping zones. The flattened zone list is page-major,
// top to bottom within a page, and its index is what gets matched against
// records later.
type ZoneSegmenter struct {
	layout   config.ZoneLayout
	reporter Reporter
	logger   *slog.Logger
}

func NewZoneSegmenter(layout config.ZoneLayout, reporter Reporter, logger *slog.Logger) *ZoneSegmenter {
	return &ZoneSegmenter{layout: layout, reporter: reporter, logger: logger}
}

// Segment reads page dimensions from the PDF at path and derives the zone
// list. Zones are purely geometric; page content is never inspected.
func (s *ZoneSegmenter) Segment(path string) ([]models.Zone, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	zones := make([]models.Zone, 0, len(dims)*3)
	for p, dim := range dims {
		zones = append(zones, zonesForPage(p, dim.Width, dim.Height, s.layout)...)
		s.reporter.Progress(splitPhaseEnd + (p+1)*(segmentPhaseEnd-splitPhaseEnd)/len(dims))
	}

	s.logger.Info("Secondary document segmented.", "path", path, "pages", len(dims), "zones", len(zones))
	s.reporter.Log(fmt.Sprintf("Detected %d candidate support sections in %s", len(zones), filepath.Base(path)))
	return zones, nil
}

// zonesForPage lays out the three candidate sections of a page. The zones
// deliberately overlap by a small fraction of page height so that content
// sitting on a section boundary lands fully inside at least one zone.
// Coordinates are top-origin.
func zonesForPage(page int, w, h float64, layout config.ZoneLayout) []models.Zone {
	return []models.Zone{
		{SourcePage: page, PageHeight: h, Rect: models.Rect{X0: 0, Y0: 0, X1: w, Y1: h * layout.TopEnd}},
		{SourcePage: page, PageHeight: h, Rect: models.Rect{X0: 0, Y0: h * layout.MiddleStart, X1: w, Y1: h * layout.MiddleEnd}},
		{SourcePage: page, PageHeight: h, Rect: models.Rect{X0: 0, Y0: h * layout.BottomStart, X1: w, Y1: h}},
	}
}
