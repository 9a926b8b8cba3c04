package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cinescope-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const creativePrefix = "ad-creatives/"

var ErrForeignURL = errors.New("file URL does not belong to this bucket")

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// CreativeStore keeps uploaded banner creatives in an S3-compatible bucket (Cloudflare R2).
type CreativeStore struct {
	client        objectAPI
	bucketName    string
	publicURL     string
	uploadTimeout time.Duration
}

func NewR2CreativeStore(ctx context.Context, accountID, accessKey, secretKey, bucketName, publicURL string, uploadTimeout time.Duration) (*CreativeStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
		o.UsePathStyle = true
	})

	return newCreativeStore(client, bucketName, publicURL, uploadTimeout), nil
}

func newCreativeStore(client objectAPI, bucketName, publicURL string, uploadTimeout time.Duration) *CreativeStore {
	return &CreativeStore{
		client:        client,
		bucketName:    bucketName,
		publicURL:     strings.TrimSuffix(publicURL, "/"),
		uploadTimeout: uploadTimeout,
	}
}

// UploadCreative re-encodes the image and stores it, returning its public URL.
func (s *CreativeStore) UploadCreative(ctx context.Context, file io.Reader) (string, error) {
	data, contentType, err := utils.ProcessBannerImage(file)
	if err != nil {
		return "", err
	}

	ext := ".webp"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	key := creativePrefix + uuid.NewString() + ext

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload creative to R2: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// DeleteCreative removes a previously uploaded creative by its public URL.
func (s *CreativeStore) DeleteCreative(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, s.publicURL+"/") {
		return ErrForeignURL
	}
	key := strings.TrimPrefix(fileURL, s.publicURL+"/")
	if key == "" {
		return fmt.Errorf("invalid file key derived from URL")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete creative from R2: %w", err)
	}
	return nil
}
