package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/plotline/backend/pkg/loader"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectGetter is the part of *s3.Client the loader needs.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3NovelFileLoader loads novels from an S3 bucket, with NovelFile.Path as
// the object key. Works with S3 compatible stores such as MinIO.
type S3NovelFileLoader struct {
	bucket string
	client objectGetter
	cache  *loader.Cache
}

// NewS3NovelFileLoaderWithClient reuses a preconfigured client.
func NewS3NovelFileLoaderWithClient(bucket string, client *s3.Client) *S3NovelFileLoader {
	return newLoader(bucket, client)
}

func newLoader(bucket string, client objectGetter) *S3NovelFileLoader {
	return &S3NovelFileLoader{
		bucket: bucket,
		client: client,
		cache:  loader.NewCache(),
	}
}

// NewS3NovelFileLoaderParams defines the configuration parameters for
// creating a new S3NovelFileLoader. Endpoint overrides the AWS endpoint
// for S3 compatible storage.
type NewS3NovelFileLoaderParams struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3NovelFileLoader creates a loader with static credentials and path
// style addressing.
func NewS3NovelFileLoader(ctx context.Context, params NewS3NovelFileLoaderParams) (*S3NovelFileLoader, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if params.Endpoint != "" {
			o.BaseEndpoint = aws.String(params.Endpoint)
		}
		o.UsePathStyle = true
	})
	return newLoader(params.Bucket, client), nil
}

func (l *S3NovelFileLoader) GetFileBytes(ctx context.Context, file loader.NovelFile) ([]byte, error) {
	return l.cache.Get(ctx, file, func(ctx context.Context) ([]byte, error) {
		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(file.Path),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get object %s: %w", file.Path, err)
		}
		defer out.Body.Close()

		return io.ReadAll(out.Body)
	})
}
