package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/buildvault/bimlibrary/internal/config"
)

// UploadedMeta describes a blob after a successful put.
type UploadedMeta struct {
	Bucket string
	Key    string
	ETag   string
	MIME   string
	SizeB  int64
	SHA256 string
}

// S3Deps bundles the S3 clients the service needs. Works against AWS or any
// S3-compatible store (MinIO in dev) via the configured endpoint.
type S3Deps struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Presign  *s3.PresignClient
	Bucket   string
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.Telemetry.Enabled {
		otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	return &S3Deps{
		Client:   client,
		Uploader: manager.NewUploader(client),
		Presign:  s3.NewPresignClient(client),
		Bucket:   cfg.S3.Bucket,
	}, nil
}

// UploadFormFile streams a multipart upload to S3 under key, hashing and
// MIME-sniffing the content on the way through.
func (d *S3Deps) UploadFormFile(ctx context.Context, key string, fileHeader *multipart.FileHeader) (*UploadedMeta, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file: %w", err)
	}
	defer f.Close()

	// Sniff the MIME type from the first bytes, then rewind.
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("detect mime type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind form file: %w", err)
	}

	hasher := sha256.New()
	out, err := d.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(key),
		Body:        io.TeeReader(f, hasher),
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to s3: %w", err)
	}

	return &UploadedMeta{
		Bucket: d.Bucket,
		Key:    key,
		ETag:   strings.Trim(aws.ToString(out.ETag), `"`),
		MIME:   mtype.String(),
		SizeB:  fileHeader.Size,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// PresignGet returns a time-limited GET URL for key.
func (d *S3Deps) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	req, err := d.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}
