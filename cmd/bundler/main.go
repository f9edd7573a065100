// Command bundler assembles one PDF per spreadsheet row by pairing a
// voucher page from the primary document with the matching payment-support
// section cropped out of the secondary document. Pairing is positional:
// row i gets page i and section i.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rcastellanos/voucherbundle/internal/config"
	"github.com/rcastellanos/voucherbundle/internal/gcp"
	"github.com/rcastellanos/voucherbundle/internal/services"
)

var (
	cfgFile       string
	recordsPath   string
	primaryPath   string
	secondaryPath string
	outputDir     string
	uploadBucket  string
	uploadPrefix  string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "bundler",
	Short: "Batch-assemble voucher bundles from a spreadsheet and two PDFs",
	Long: `bundler reads a spreadsheet of records, splits the voucher PDF into
single pages, crops the matching payment-support section out of the support
PDF, and writes one combined two-page PDF per record, named
"<id> - <recipient>.pdf". Records, pages and sections are paired strictly by
position, so the three inputs must share one ordering.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML job config (column names, zone layout)")
	rootCmd.Flags().StringVar(&recordsPath, "records", "", "spreadsheet with the record list (.xlsx or .csv)")
	rootCmd.Flags().StringVar(&primaryPath, "vouchers", "", "multi-page voucher PDF, one page per record")
	rootCmd.Flags().StringVar(&secondaryPath, "supports", "", "payment-support PDF, three sections per page")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (created if absent)")
	rootCmd.Flags().StringVar(&uploadBucket, "upload-bucket", gcp.GetEnv("BUNDLE_UPLOAD_BUCKET", ""), "optional GCS bucket to upload finished bundles to")
	rootCmd.Flags().StringVar(&uploadPrefix, "upload-prefix", "", "object prefix for uploaded bundles")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "structured JSON logs on stderr")
	rootCmd.MarkFlagRequired("records")
	rootCmd.MarkFlagRequired("vouchers")
	rootCmd.MarkFlagRequired("supports")
	rootCmd.MarkFlagRequired("out")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelError
	if verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
	}
	// Flags win over the config file.
	if uploadBucket == "" {
		uploadBucket = cfg.Upload.Bucket
	}
	if uploadPrefix == "" {
		uploadPrefix = cfg.Upload.Prefix
	}

	// The pipeline runs on its own goroutine and talks back through
	// fire-and-forget events, so this loop stays responsive no matter how
	// long a stage takes.
	events := services.NewEvents()
	pipe := services.NewPipeline(cfg, events, logger)

	type outcome struct {
		res *services.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := pipe.Run(services.Inputs{
			RecordsPath:   recordsPath,
			PrimaryPath:   primaryPath,
			SecondaryPath: secondaryPath,
			OutputDir:     outputDir,
		})
		done <- outcome{res: res, err: err}
		events.Close()
	}()

	bar := newProgressBar()
	progressCh, logCh := events.ProgressCh(), events.LogCh()
	for progressCh != nil || logCh != nil {
		select {
		case p, ok := <-progressCh:
			if !ok {
				progressCh = nil
				continue
			}
			_ = bar.Set(p)
		case m, ok := <-logCh:
			if !ok {
				logCh = nil
				continue
			}
			fmt.Fprintln(os.Stdout, m)
		}
	}
	final := <-done
	_ = bar.Finish()

	if final.err != nil {
		return fmt.Errorf("processing failed: %w", final.err)
	}
	fmt.Fprintf(os.Stdout, "Generated %d of %d bundles in %s\n", final.res.Written, final.res.Records, outputDir)

	if uploadBucket != "" {
		ctx := cmd.Context()
		uploader, err := gcp.NewUploader(ctx, uploadBucket)
		if err != nil {
			return err
		}
		defer uploader.Close()
		if err := uploader.UploadDir(ctx, outputDir, uploadPrefix); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Uploaded bundles to gs://%s/%s\n", uploadBucket, uploadPrefix)
	}
	return nil
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}
