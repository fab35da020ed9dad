package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/05Ashutosh/food-recipe/internal/config"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/metrics"
)

const breakerName = "media-store"

// objectAPI is the part of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on top of S3 or MinIO. Calls go through a
// circuit breaker so a dead bucket fails fast instead of holding requests
// for the whole upload timeout.
type S3Store struct {
	api     objectAPI
	bucket  string
	baseURL string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[any]
	now     func() time.Time
}

// NewS3Store builds an S3 client from cfg. A non-empty Endpoint selects a
// MinIO style deployment with path-style addressing.
func NewS3Store(ctx context.Context, cfg config.MediaConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(api objectAPI, cfg config.MediaConfig) *S3Store {
	timeout := time.Duration(cfg.UploadTimeSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	return &S3Store{
		api:     api,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		timeout: timeout,
		cb:      newBreaker(),
		now:     time.Now,
	}
}

func newBreaker() *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("media store circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// publicBaseURL is the prefix of every object URL handed out by the store.
func publicBaseURL(cfg config.MediaConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Upload stores the file under a dated random key and returns its URL.
func (s *S3Store) Upload(ctx context.Context, localPath string) (asset Asset, err error) {
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.Warn().Err(rmErr).Str("path", localPath).Msg("remove temp upload")
		}
	}()
	start := s.now()
	defer func() { metrics.RecordMediaOperation("upload", time.Since(start), err) }()

	f, err := os.Open(localPath)
	if err != nil {
		return Asset{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Asset{}, err
	}
	if st.Size() == 0 {
		return Asset{}, ErrEmptyFile
	}
	contentType, err := sniff(f)
	if err != nil {
		return Asset{}, err
	}

	key := s.objectKey(localPath)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.cb.Execute(func() (any, error) {
		return s.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          f,
			ContentLength: aws.Int64(st.Size()),
			ContentType:   aws.String(contentType),
		})
	})
	if err != nil {
		return Asset{}, fmt.Errorf("put object: %w", err)
	}
	return Asset{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

// Delete removes the object behind url.
func (s *S3Store) Delete(ctx context.Context, url string) (err error) {
	key, err := s.KeyFromURL(url)
	if err != nil {
		return err
	}
	start := s.now()
	defer func() { metrics.RecordMediaOperation("delete", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.cb.Execute(func() (any, error) {
		return s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// KeyFromURL returns the object key of a URL issued by this store.
func (s *S3Store) KeyFromURL(url string) (string, error) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" || strings.Contains(key, "..") {
		return "", ErrForeignURL
	}
	return key, nil
}

func (s *S3Store) objectKey(localPath string) string {
	d := s.now().UTC()
	ext := strings.ToLower(filepath.Ext(localPath))
	return path.Join("uploads", fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()), uuid.NewString()+ext)
}

// sniff detects the content type from the first bytes and rewinds f.
func sniff(f *os.File) (string, error) {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
