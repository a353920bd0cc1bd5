package artifactstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const s3Scheme = "s3://"

// Environment variables read by LoadS3Config.
const (
	EnvS3Endpoint  = "LAYERGRAPH_S3_ENDPOINT"
	EnvS3AccessKey = "LAYERGRAPH_S3_ACCESS_KEY"
	EnvS3SecretKey = "LAYERGRAPH_S3_SECRET_KEY"
	EnvS3Region    = "LAYERGRAPH_S3_REGION"
	EnvS3UseSSL    = "LAYERGRAPH_S3_USE_SSL"
)

// S3Config holds the connection settings of an S3-compatible store.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoadS3Config reads the object store settings from the environment after
// loading a .env file from the working directory, if there is one.
func LoadS3Config() S3Config {
	_ = godotenv.Load()

	return S3Config{
		Endpoint:  strings.TrimSpace(os.Getenv(EnvS3Endpoint)),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv(EnvS3Region)), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv(EnvS3AccessKey)),
		SecretKey: strings.TrimSpace(os.Getenv(EnvS3SecretKey)),
		UseSSL:    parseUseSSL(os.Getenv(EnvS3UseSSL)),
	}
}

func parseUseSSL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParseS3URL splits "s3://bucket/key/path" into bucket and key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %q", raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 url %q has no bucket", raw)
	}
	if key == "" {
		return "", "", fmt.Errorf("s3 url %q has no object key", raw)
	}
	return bucket, key, nil
}

// MinioStore writes artifacts to an S3-compatible bucket.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

// NewMinioStore validates cfg and creates a client. No request is made until
// the first Put.
func NewMinioStore(cfg S3Config) (*MinioStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required (%s)", EnvS3Endpoint)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required (%s, %s)", EnvS3AccessKey, EnvS3SecretKey)
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := firstNonEmpty(strings.TrimSpace(cfg.Region), "us-east-1")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &MinioStore{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

// Bucket returns the target bucket name.
func (s *MinioStore) Bucket() string {
	return s.bucketName
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Put uploads body to key. The bucket is created on first use if missing.
func (s *MinioStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	key, err := requireKey(key)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if body == nil {
		body = []byte{}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucketName, key, err)
	}
	return nil
}
