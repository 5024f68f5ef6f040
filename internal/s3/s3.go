package s3

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	faws "github.com/turbolytics/formsync/internal/aws"
	"github.com/turbolytics/formsync/internal/local"
)

type Option func(*Workbook)

func WithRegion(region string) Option {
	return func(w *Workbook) {
		w.conn.Region = region
	}
}

func WithBucket(bucket string) Option {
	return func(w *Workbook) {
		w.Bucket = bucket
	}
}

func WithKey(key string) Option {
	return func(w *Workbook) {
		w.Key = key
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Workbook) {
		w.logger = l
	}
}

func WithForcePathStyle(forcePathStyle bool) Option {
	return func(w *Workbook) {
		w.conn.ForcePathStyle = forcePathStyle
	}
}

func WithEndpoint(endpoint string) Option {
	return func(w *Workbook) {
		w.conn.Endpoint = endpoint
	}
}

// Workbook is an .xlsx workbook stored as an S3 object. The object is
// downloaded once on Open and uploaded again after every write.
type Workbook struct {
	logger     *zap.Logger
	conn       faws.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	local      *local.Workbook

	Bucket string
	Key    string
}

func Open(ctx context.Context, opts ...Option) (*Workbook, error) {
	w := &Workbook{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	if w.Bucket == "" || w.Key == "" {
		return nil, fmt.Errorf("s3 workbook needs a bucket and a key")
	}

	sess, err := w.conn.Session()
	if err != nil {
		return nil, err
	}
	w.uploader = s3manager.NewUploader(sess)
	w.downloader = s3manager.NewDownloader(sess)

	tmp, err := os.CreateTemp("", "formsync-*.xlsx")
	if err != nil {
		return nil, err
	}
	defer tmp.Close()

	n, err := w.downloader.DownloadWithContext(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(w.Bucket),
		Key:    aws.String(w.Key),
	})
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("downloading s3://%s/%s: %w", w.Bucket, w.Key, err)
	}

	w.logger.Info("workbook downloaded",
		zap.String("bucket", w.Bucket),
		zap.String("key", w.Key),
		zap.Int64("bytes", n),
	)

	w.local, err = local.Open(tmp.Name(), local.WithLogger(w.logger))
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	return w, nil
}

func (w *Workbook) ReadTable(ctx context.Context, name string) ([][]any, error) {
	return w.local.ReadTable(ctx, name)
}

func (w *Workbook) WriteCells(ctx context.Context, name string, grid [][]any, firstRow, firstColumn int, opts internal.WriteOptions) error {
	if err := w.local.WriteCells(ctx, name, grid, firstRow, firstColumn, opts); err != nil {
		return err
	}
	return w.upload(ctx)
}

func (w *Workbook) upload(ctx context.Context) error {
	f, err := os.Open(w.local.Path())
	if err != nil {
		return err
	}
	defer f.Close()

	w.logger.Debug(
		"S3 workbook upload",
		zap.String("bucket", w.Bucket),
		zap.String("key", w.Key),
	)

	_, err = w.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(w.Bucket),
		Key:    aws.String(w.Key),
		Body:   f,
	})
	return err
}

func (w *Workbook) Close() error {
	err := w.local.Close()
	os.Remove(w.local.Path())
	return err
}

var _ internal.Document = (*Workbook)(nil)
