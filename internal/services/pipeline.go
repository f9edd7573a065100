package services

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rcastellanos/voucherbundle/internal/config"
)

// Inputs names the three sources and the destination of a pipeline run.
type Inputs struct {
	RecordsPath   string
	PrimaryPath   string
	SecondaryPath string
	OutputDir     string
}

// Result summarizes a completed run.
type Result struct {
	Records int
	Written int
	Skipped int
}

// Pipeline runs the full assembly: read records, split the primary
// document, segment the secondary document, then assemble one bundle per
// record. Stages run strictly in sequence; each stage's output is fully
// materialized before the next begins. There is no cancellation: a run
// ends at completion or at the first fatal error.
type Pipeline struct {
	cfg      config.Config
	reporter Reporter
	logger   *slog.Logger
}

func NewPipeline(cfg config.Config, reporter Reporter, logger *slog.Logger) *Pipeline {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, reporter: reporter, logger: logger}
}

// Run executes the pipeline. A non-nil error means the batch failed as a
// whole; per-record problems are reported as warnings and reflected in
// Result.Skipped instead.
func (p *Pipeline) Run(in Inputs) (*Result, error) {
	p.reporter.Log("Starting processing...")

	workDir, err := os.MkdirTemp("", "voucherbundle-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)
	p.logger.Info("Created temp directory.", "path", workDir)

	p.reporter.Log("Reading record list...")
	reader := NewRecordReader(p.cfg.Columns, p.reporter, p.logger)
	records, err := reader.Read(in.RecordsPath)
	if err != nil {
		return nil, err
	}

	p.reporter.Log("Extracting voucher pages...")
	splitter := NewPageSplitter(p.reporter, p.logger)
	pages, err := splitter.Split(in.PrimaryPath, workDir)
	if err != nil {
		return nil, err
	}

	p.reporter.Log("Segmenting payment supports...")
	segmenter := NewZoneSegmenter(p.cfg.Zones, p.reporter, p.logger)
	zones, err := segmenter.Segment(in.SecondaryPath)
	if err != nil {
		return nil, err
	}

	p.reporter.Log("Generating combined files...")
	assembler := NewAssembler(p.reporter, p.logger)
	written, err := assembler.Assemble(records, pages, zones, in.SecondaryPath, in.OutputDir, workDir)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Records: len(records),
		Written: written,
		Skipped: len(records) - written,
	}
	p.logger.Info("Processing complete.", "records", res.Records, "written", res.Written, "skipped", res.Skipped)
	p.reporter.Log("Processing completed.")
	return res, nil
}
