package s3

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Backend stores backups as objects in an S3 compatible bucket
type Backend struct {
	name     string
	client   *s3.Client
	bucket   string
	prefix   string
	uploader *manager.Uploader
	retry    storage.RetryConfig
}

func init() {
	storage.RegisterBackend("s3", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new S3 backend and checks that the bucket is reachable
func New(ctx context.Context, cfg storage.Config) (*Backend, error) {
	s3Cfg, err := parseConfig(cfg.Options)
	if err != nil {
		return nil, err
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(s3Cfg.Region),
	}
	if s3Cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3Cfg.AccessKeyID, s3Cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Cfg.Endpoint)
		}
		o.UsePathStyle = s3Cfg.ForcePathStyle
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s3Cfg.Bucket)}); err != nil {
		return nil, storage.WrapError(cfg.Name, "connection test", errors.Join(storage.ErrConnFailed, err))
	}

	prefix := strings.Trim(s3Cfg.Prefix, "/")
	if prefix == "" {
		prefix = strings.Trim(cfg.BaseDir, "/")
	}

	return &Backend{
		name:     cfg.Name,
		client:   client,
		bucket:   s3Cfg.Bucket,
		prefix:   prefix,
		uploader: manager.NewUploader(client),
		retry:    storage.DefaultRetryConfig(),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "s3" }

func (b *Backend) key(rel string) string {
	return path.Join(b.prefix, rel)
}

func (b *Backend) relative(key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, b.prefix), "/")
}

// Write uploads a file to S3
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	return storage.WithRetry(ctx, b.retry, func() error {
		file, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = b.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key(destPath)),
			Body:   file,
		})
		if err != nil {
			return storage.WrapError(b.name, "upload", err)
		}
		return nil
	})
}

// Delete removes an object. S3 reports success for absent keys, so the
// object is checked first to keep ErrNotFound semantics.
func (b *Backend) Delete(ctx context.Context, objectPath string) error {
	if _, err := b.Stat(ctx, objectPath); err != nil {
		return err
	}

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectPath)),
	})
	if err != nil {
		return storage.WrapError(b.name, "delete", mapError(err))
	}

	return nil
}

// List returns objects matching the pattern, newest first
func (b *Backend) List(ctx context.Context, pattern string) ([]storage.FileInfo, error) {
	var files []storage.FileInfo

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.key(storage.ListPrefix(pattern))),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storage.WrapError(b.name, "list", mapError(err))
		}

		for _, obj := range page.Contents {
			rel := b.relative(aws.ToString(obj.Key))
			size := aws.ToInt64(obj.Size)
			if size == 0 || !storage.MatchPattern(pattern, rel) {
				continue
			}

			files = append(files, storage.FileInfo{
				Path:    rel,
				Size:    size,
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	storage.SortNewestFirst(files)

	return files, nil
}

// Stat returns metadata about an object
func (b *Backend) Stat(ctx context.Context, objectPath string) (*storage.FileInfo, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectPath)),
	})
	if err != nil {
		return nil, storage.WrapError(b.name, "stat", mapError(err))
	}

	return &storage.FileInfo{
		Path:    objectPath,
		Size:    aws.ToInt64(out.ContentLength),
		ModTime: aws.ToTime(out.LastModified),
	}, nil
}

// Exists checks if an object exists
func (b *Backend) Exists(ctx context.Context, objectPath string) (bool, error) {
	_, err := b.Stat(ctx, objectPath)
	if err != nil {
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close is a no-op for S3
func (b *Backend) Close() error {
	return nil
}

func mapError(err error) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return storage.ErrNotFound
	}
	return err
}
