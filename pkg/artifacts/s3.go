package artifacts

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
)

// Environment variables holding static credentials for S3-compatible stores.
// When unset the default AWS credential chain applies.
const (
	EnvAccessKey = "BOWTIE_S3_ACCESS_KEY"
	EnvSecretKey = "BOWTIE_S3_SECRET_KEY"
)

// putObjectAPI is the subset of the S3 client used by S3Sink.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads artifacts to a bucket under an optional key prefix.
type S3Sink struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Sink builds a client from cfg. accessKey and secretKey override the
// default credential chain when both are non-empty.
func NewS3Sink(ctx context.Context, cfg config.S3Config, accessKey, secretKey string) (*S3Sink, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Sink(client putObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key for an artifact name.
func (s *S3Sink) Key(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return clean, nil
	}
	return path.Join(s.prefix, clean), nil
}

// Put uploads r as a single object.
func (s *S3Sink) Put(ctx context.Context, name string, r io.Reader) error {
	key, err := s.Key(name)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ct := contentType(key); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".dot", ".txt", ".prom":
		return "text/plain; charset=utf-8"
	default:
		return ""
	}
}
