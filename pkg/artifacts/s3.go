package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/juju/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options points at an S3 compatible endpoint.
type S3Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Secure    bool
	// Prefix is prepended to every object key, e.g. the run id.
	Prefix string
}

// S3Store uploads artifacts with minio-go. The bucket is created on first use.
type S3Store struct {
	*minio.Client
	opts S3Options

	bucketOnce sync.Once
	bucketErr  error
}

// NewS3Store creates an S3Store.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.NotValidf("empty bucket")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "s3 client for %s", opts.Endpoint)
	}
	return &S3Store{Client: client, opts: opts}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.BucketExists(ctx, s.opts.Bucket)
		if err != nil {
			s.bucketErr = errors.Trace(err)
			return
		}
		if !exists {
			s.bucketErr = errors.Trace(s.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{}))
		}
	})
	return s.bucketErr
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", errors.Annotatef(err, "bucket %s", s.opts.Bucket)
	}
	key := objectKey(s.opts.Prefix, name)
	_, err := s.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Annotatef(err, "upload %s", key)
	}
	return fmt.Sprintf("s3://%s/%s", s.opts.Bucket, key), nil
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
