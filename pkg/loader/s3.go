package loader

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/legodom/lego/pkg/sfc"
)

// ObjectGetter is the part of the S3 client the loader uses. *s3.Client
// implements it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 loads components stored as <prefix><tag>.lego objects in a bucket.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	l := loader.NewS3(s3.NewFromConfig(cfg), "my-bucket", "components/")
type S3 struct {
	client  ObjectGetter
	bucket  string
	prefix  string
	maxSize int64
}

// NewS3 creates an S3 loader.
func NewS3(client ObjectGetter, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, maxSize: DefaultMaxSize}
}

// Key returns the object key for tag.
func (s *S3) Key(tag string) string { return path.Join(s.prefix, tag+sfc.Ext) }

// Load fetches the object for tag. A missing object yields "" and a nil
// error.
func (s *S3) Load(ctx context.Context, tag string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(tag)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return "", nil
		}
		return "", fmt.Errorf("loader: s3 get %s/%s: %w", s.bucket, s.Key(tag), err)
	}
	defer out.Body.Close()
	if out.ContentLength != nil && *out.ContentLength > s.maxSize {
		return "", ErrTooLarge
	}
	return readLimited(out.Body, s.maxSize)
}

// WithMaxSize sets the size limit of a loaded object and returns s.
func (s *S3) WithMaxSize(n int64) *S3 {
	if n > 0 {
		s.maxSize = n
	}
	return s
}
