// Package gcp wraps the Cloud Storage client for the optional bundle
// upload step.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Uploader copies finished bundles into a GCS bucket. Uploads are
// conditional on the object not existing, so re-running a job never
// clobbers bundles already delivered.
type Uploader struct {
	client *storage.Client
	bucket string
}

func NewUploader(ctx context.Context, bucket string) (*Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

func (u *Uploader) Close() error { return u.client.Close() }

// UploadDir uploads every PDF in dir to the bucket under prefix, with
// bounded concurrency. The pipeline itself has already finished by the
// time this runs, so concurrent uploads never race a writer.
func (u *Uploader) UploadDir(ctx context.Context, dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(10)

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		count++
		localPath := filepath.Join(dir, entry.Name())
		destObject := entry.Name()
		if prefix != "" {
			destObject = prefix + "/" + entry.Name()
		}
		eg.Go(func() error {
			return u.uploadFile(gctx, localPath, destObject)
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("one or more bundles failed to upload: %w", err)
	}
	slog.Info("All bundles uploaded.", "bucket", u.bucket, "count", count)
	return nil
}

func (u *Uploader) uploadFile(ctx context.Context, localPath, destObject string) error {
	const maxRetries = 4
	var backoff = 1 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			localFileReader, err := os.Open(localPath)
			if err != nil {
				return fmt.Errorf("could not open local file %s: %w", localPath, err)
			}
			defer localFileReader.Close()

			writeCtx, cancel := context.WithTimeout(ctx, time.Second*50)
			defer cancel()

			gcsWriter := u.client.Bucket(u.bucket).Object(destObject).
				If(storage.Conditions{DoesNotExist: true}).NewWriter(writeCtx)

			if _, err := io.Copy(gcsWriter, localFileReader); err != nil {
				_ = gcsWriter.Close()
				return fmt.Errorf("io.Copy to GCS failed: %w", err)
			}
			if err := gcsWriter.Close(); err != nil {
				return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
			}
			return nil
		}()

		if err == nil {
			return nil
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			slog.Info("SKIPPING: Object already exists.", "gcsObject", destObject)
			return nil // Not a failure for an idempotent delivery.
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", destObject,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", destObject, "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", destObject, "error", lastErr)
	return fmt.Errorf("upload for %s failed after all retries: %w", destObject, lastErr)
}
