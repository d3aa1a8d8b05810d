package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/avelichko/foodgram-backend/config"
)

// ImageStore persists an uploaded image and returns its absolute URL.
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

// S3ImageStore stores recipe images in a public-read S3 bucket.
type S3ImageStore struct {
	s3cfg *config.S3Config
}

// NewS3ImageStore creates a new S3ImageStore instance
func NewS3ImageStore(s3cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3cfg: s3cfg}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	key := fmt.Sprintf("recipes/images/%s.%s", uuid.New(), ext)
	_, err := s.s3cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return s.s3cfg.PublicBaseURL + "/" + key, nil
}

// DecodeImageDataURI parses a "data:image/<ext>;base64,<payload>" string
// into raw bytes and the file extension.
func DecodeImageDataURI(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, "data:image") {
		return nil, "", fmt.Errorf("not an image data URI")
	}
	format, payload, ok := strings.Cut(s, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("malformed image data URI")
	}
	ext := format[strings.LastIndex(format, "/")+1:]
	if ext == "" {
		return nil, "", fmt.Errorf("missing image format in data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return data, ext, nil
}
