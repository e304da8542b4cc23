package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vidstream/go-video-backend/internal/config"
)

var _ Store = (*S3Store)(nil)

// S3Store uploads images to an S3-compatible bucket and serves back public
// object URLs.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.GetS3Region()),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.GetS3AccessKey(),
			cfg.GetS3SecretKey(),
			"",
		)))
	if err != nil {
		return nil, errors.Wrap(err, "[NewS3Store] LoadDefaultConfig")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.GetS3BaseEndpoint() != "" {
			o.BaseEndpoint = aws.String(cfg.GetS3BaseEndpoint())
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.GetS3Bucket(),
		publicBaseURL: strings.TrimSuffix(cfg.GetS3PublicBaseURL(), "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	key := storageKey(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", errors.Wrap(err, "[S3Store.Upload] PutObject")
	}

	return s.publicBaseURL + "/" + key, nil
}

// storageKey shards uploads by date and keeps the original extension so the
// media host can infer content types.
func storageKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("images/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(name))
}
