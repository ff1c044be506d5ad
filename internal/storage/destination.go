package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

// Destination receives a rendered export under a file name
type Destination interface {
	Write(ctx context.Context, name string, data []byte) error
}

// FileDestination writes exports into a local directory
type FileDestination struct {
	Dir string
}

// NewFileDestination returns a destination rooted at dir
func NewFileDestination(dir string) *FileDestination {
	return &FileDestination{Dir: dir}
}

// Write stores data as Dir/name, replacing any previous export
func (d *FileDestination) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return perr.FromContext(err)
	}
	return writeFileAtomic(filepath.Join(d.Dir, name), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (d *FileDestination) String() string { return "file:" + d.Dir }

// S3Destination uploads exports to an S3-compatible bucket
type S3Destination struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Destination creates an S3 destination. A non-empty endpoint switches
// to path-style addressing for MinIO and similar.
func NewS3Destination(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "load AWS config")
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Key is the object key an export named name is stored under
func (d *S3Destination) Key(name string) string {
	return path.Join(d.prefix, name)
}

// Write uploads data as prefix/name
func (d *S3Destination) Write(ctx context.Context, name string, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.Key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		if ctx.Err() != nil {
			return perr.FromContext(ctx.Err())
		}
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "s3 put object %s", d.Key(name))
	}
	return nil
}

func (d *S3Destination) String() string { return "s3://" + d.bucket + "/" + d.prefix }
