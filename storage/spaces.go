package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-summarizer/config"
	"github.com/nijaru/yt-summarizer/errors"
)

// SpacesStore keeps audio in an S3-compatible bucket such as DigitalOcean
// Spaces or MinIO.
type SpacesStore struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewSpacesStore(ctx context.Context, cfg config.StorageConfig) (*SpacesStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &SpacesStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *SpacesStore) key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *SpacesStore) Save(ctx context.Context, name string, r io.Reader) error {
	const op = "SpacesStore.Save"

	if !ValidAudioName(name) {
		return errors.InvalidInput(op, nil, "invalid audio file name")
	}

	// PutObject needs a seekable body to sign the payload.
	body, err := io.ReadAll(r)
	if err != nil {
		return pkgerrors.Wrap(err, "read audio")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("audio/mpeg"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to save to Spaces")
	}
	return nil
}

func (s *SpacesStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	const op = "SpacesStore.Open"

	if !ValidAudioName(name) {
		return nil, errors.NotFound(op, nil, "Audio file not found")
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, errors.NotFound(op, err, "Audio file not found")
		}
		return nil, errors.Internal(op, pkgerrors.Wrap(err, "failed to get from Spaces"), "Failed to open audio file")
	}
	return result.Body, nil
}
