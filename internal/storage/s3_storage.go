package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	presignExpiry = 15 * time.Minute

	// MaxLogoSize 로고 이미지 최대 크기
	MaxLogoSize int64 = 2 * 1024 * 1024
)

var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrContentTypeInvalid = errors.New("content type not allowed")
)

// LogoContentTypes 파트너 로고로 올릴 수 있는 형식
var LogoContentTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

type PresignedURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewS3Storage(ctx context.Context, region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		// 환경변수, ~/.aws, IAM role 순
		loaded, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			loaded = aws.Config{Region: region}
		}
		cfg = loaded
	}

	return &S3Storage{
		presign: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// PresignLogoUpload partners/<partnerId>/logo-<uuid>.<ext> 로 PUT 할 URL 을 만든다
func (s *S3Storage) PresignLogoUpload(ctx context.Context, partnerID, contentType string, size int64) (*PresignedURLResponse, error) {
	ext, err := ValidateLogo(contentType, size)
	if err != nil {
		return nil, err
	}
	key := LogoKey(partnerID, ext)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: req.URL,
		FileURL:   s.FileURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

// FileURL CloudFront 등 baseURL 이 있으면 그쪽, 없으면 S3 직접 주소
func (s *S3Storage) FileURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func LogoKey(partnerID, ext string) string {
	folder := strings.TrimSpace(partnerID)
	if folder == "" {
		folder = "unassigned"
	}
	return path.Join("partners", folder, "logo-"+uuid.NewString()+ext)
}

// ValidateLogo 허용된 형식이면 확장자를 돌려준다
func ValidateLogo(contentType string, size int64) (string, error) {
	ext, ok := LogoContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrContentTypeInvalid, contentType)
	}
	if size <= 0 || size > MaxLogoSize {
		return "", fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, MaxLogoSize)
	}
	return ext, nil
}
