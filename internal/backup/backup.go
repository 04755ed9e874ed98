// Package backup copies the ledger database and review bucket files to a
// Google Cloud Storage bucket for offsite safekeeping.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dvloznov/simplebook/internal/config"
	"github.com/dvloznov/simplebook/internal/review"
)

// Uploader is the storage surface the backup run depends on. It is an
// interface so tests can swap the GCS client out.
type Uploader interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
}

// GCSUploader implements Uploader against Google Cloud Storage. With no
// credentials file configured it relies on Application Default Credentials.
type GCSUploader struct {
	opts []option.ClientOption
}

// NewGCSUploader builds the production uploader.
func NewGCSUploader(credentialsFile string) *GCSUploader {
	u := &GCSUploader{}
	if credentialsFile != "" {
		u.opts = append(u.opts, option.WithCredentialsFile(credentialsFile))
	}
	return u
}

// UploadFile uploads one local file to the bucket under the given object name.
func (u *GCSUploader) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx, u.opts...)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("copy %q to storage writer: %w", filePath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload of %q: %w", filePath, err)
	}
	return nil
}

// Run uploads the database plus either one month's review bucket (ym set) or
// every review bucket under the data dir. It returns the object names it
// wrote, in upload order.
func Run(ctx context.Context, up Uploader, cfg config.BackupConfig, dbPath, dataDir, ym string) ([]string, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("Run: no backup bucket configured")
	}

	files, err := collectFiles(dbPath, dataDir, ym)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("Run: nothing to back up")
	}

	var objects []string
	for _, f := range files {
		object := path.Join(cfg.Prefix, filepath.Base(f))
		if err := up.UploadFile(ctx, cfg.Bucket, object, f); err != nil {
			return objects, fmt.Errorf("Run: upload %q: %w", f, err)
		}
		objects = append(objects, object)
	}
	return objects, nil
}

func collectFiles(dbPath, dataDir, ym string) ([]string, error) {
	var files []string

	if _, err := os.Stat(dbPath); err == nil {
		files = append(files, dbPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat db %q: %w", dbPath, err)
	}

	if ym != "" {
		bucket := review.BucketPath(dataDir, ym)
		if _, err := os.Stat(bucket); err == nil {
			files = append(files, bucket)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat review bucket %q: %w", bucket, err)
		}
		return files, nil
	}

	matches, err := filepath.Glob(filepath.Join(dataDir, "review_*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("glob review buckets: %w", err)
	}
	sort.Strings(matches)
	return append(files, matches...), nil
}
