package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config — параметры S3-совместимого хранилища (MinIO, Supabase Storage, AWS).
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL — префикс публичных ссылок; по умолчанию {Endpoint}/{Bucket}.
	PublicURL string
}

// S3Store реализует ObjectStore поверх aws-sdk-go-v2.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Store создаёт клиент S3 с path-style адресацией и статическими ключами.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	if c.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	public := strings.TrimRight(c.PublicURL, "/")
	if public == "" {
		base := strings.TrimRight(c.Endpoint, "/")
		if base == "" {
			base = "https://s3." + c.Region + ".amazonaws.com"
		}
		public = base + "/" + c.Bucket
	}
	return &S3Store{client: client, bucket: c.Bucket, publicURL: public}, nil
}

// Put загружает объект с условием If-None-Match: *.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		IfNoneMatch:   aws.String("*"),
	})
	return err
}

func (s *S3Store) PublicURL(key string) string {
	return s.publicURL + "/" + url.PathEscape(key)
}
