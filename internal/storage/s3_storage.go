package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Storage хранит изображения в бакете S3; ссылки выдаются presigned.
type S3Storage struct {
	client         *s3.Client
	bucket         string
	maxUploadBytes int64
}

// NewS3Storage создаёт S3-хранилище со статическими учётными данными.
func NewS3Storage(ctx context.Context, region, accessKeyID, secretAccessKey, bucket string, maxUploadMB int64) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, secretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось загрузить конфигурацию AWS: %w", err)
	}

	return &S3Storage{
		client:         s3.NewFromConfig(awsCfg),
		bucket:         bucket,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save загружает файл в бакет и возвращает ключ объекта.
func (s *S3Storage) Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	safeName := sanitizeFilename(originalName)
	key := fmt.Sprintf("uploads/%s/%d%s", ownerID.String(), time.Now().UnixNano(), filepath.Ext(safeName))

	content, err := io.ReadAll(io.LimitReader(r, s.maxUploadBytes+1))
	if err != nil {
		return "", 0, fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	if int64(len(content)) > s.maxUploadBytes {
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось загрузить объект в S3: %w", err)
	}

	return key, int64(len(content)), nil
}

// Delete удаляет объект из бакета.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: не удалось удалить объект из S3: %w", err)
	}
	return nil
}

// URL возвращает presigned-ссылку на объект сроком на час.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("storage: не удалось сформировать presigned URL: %w", err)
	}

	return request.URL, nil
}
