// Package sink persists a finished download.
package sink

import (
	"context"
	"os"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocloud.dev/blob"
)

// DefaultPath is where FileSink writes when no path is configured.
const DefaultPath = "result.txt"

// Sink stores the complete body of a download.
type Sink interface {
	Store(ctx context.Context, data []byte) error
	Close() error
}

// FileSink writes data to a local file, replacing any previous content.
type FileSink struct {
	Path string
}

// NewFileSink creates a FileSink for path, or DefaultPath if path is empty.
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultPath
	}
	return &FileSink{Path: path}
}

// Store creates or truncates the file and writes data to it.
func (s *FileSink) Store(_ context.Context, data []byte) (err error) {
	f, err := os.Create(s.Path)
	if err != nil {
		return pkgerrors.Wrapf(err, "create %s", s.Path)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if _, err := f.Write(data); err != nil {
		return pkgerrors.Wrapf(err, "write %s", s.Path)
	}
	return nil
}

// Close is a no-op; each Store closes its own file.
func (s *FileSink) Close() error {
	return nil
}

// BlobSink writes data as a single object in a gocloud.dev bucket.
type BlobSink struct {
	bucket *blob.Bucket
	key    string
	owned  bool
}

// NewBlobSink writes to key in an already opened bucket. The caller keeps
// ownership of bucket.
func NewBlobSink(bucket *blob.Bucket, key string) *BlobSink {
	return &BlobSink{bucket: bucket, key: key}
}

// OpenBlobSink opens bucketURL (e.g. "file:///tmp/out", "mem://",
// "s3://bucket") and writes to key in it. Close releases the bucket.
func OpenBlobSink(ctx context.Context, bucketURL, key string) (*BlobSink, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open bucket %s", bucketURL)
	}
	return &BlobSink{bucket: bucket, key: key, owned: true}, nil
}

// Store uploads data to the sink's key.
func (s *BlobSink) Store(ctx context.Context, data []byte) (err error) {
	w, err := s.bucket.NewWriter(ctx, s.key, nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "create writer for %s", s.key)
	}

	if _, werr := w.Write(data); werr != nil {
		return multierr.Append(pkgerrors.Wrapf(werr, "write %s", s.key), w.Close())
	}
	if err := w.Close(); err != nil {
		return pkgerrors.Wrapf(err, "close writer for %s", s.key)
	}
	return nil
}

// Close releases the bucket if the sink opened it.
func (s *BlobSink) Close() error {
	if !s.owned || s.bucket == nil {
		return nil
	}
	err := s.bucket.Close()
	s.bucket = nil
	return err
}
