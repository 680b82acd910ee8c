package phttpd

import (
	"context"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/phttp/phttp"
	"go.uber.org/fx"
)

const awsConfigTimeout = 10 * time.Second

// NewAWSConfig loads the default AWS SDK v2 configuration.
func NewAWSConfig(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// provideAWSConfig is an fx provider that loads AWS config with a timeout.
func provideAWSConfig() (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()
	return NewAWSConfig(ctx)
}

// WithS3Resources serves static files and templates from the named S3
// bucket (under the given key prefix) instead of a bundled filesystem.
func WithS3Resources(bucket, prefix string) Option {
	return WithFx(
		fx.Provide(provideAWSConfig),
		fx.Provide(func(cfg aws.Config) *s3.Client { return s3.NewFromConfig(cfg) }),
		fx.Provide(func(client *s3.Client) phttp.ResourceLoader {
			return NewS3Resources(client, bucket, prefix)
		}),
	)
}

// S3Resources implements phttp.ResourceLoader on top of an S3 bucket. A
// missing key reports fs.ErrNotExist, which the engine's static handler
// turns into a 404.
type S3Resources struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Resources creates the loader for the bucket and key prefix.
func NewS3Resources(client *s3.Client, bucket, prefix string) *S3Resources {
	return &S3Resources{client: client, bucket: bucket, prefix: prefix}
}

// Open fetches the object backing the named resource.
func (r *S3Resources) Open(name string) (io.ReadCloser, error) {
	key := path.Join(r.prefix, name)

	out, err := r.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})

	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return nil, errors.Wrapf(fs.ErrNotExist, "s3 object %q", key)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "get s3 object %q", key)
	}

	return out.Body, nil
}
