package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const MaxDocumentSize = 10 * 1024 * 1024 // 10MB

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

func getS3Client() (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("R2_ACCESS_KEY"),
			os.Getenv("R2_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", os.Getenv("R2_ACCOUNT_ID")))
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return client, nil
}

func publicURL(objectKey string) string {
	base := os.Getenv("R2_PUBLIC_BASE")
	if base == "" {
		base = "https://cdn.tinkpm.com"
	}
	return fmt.Sprintf("%s/%s", base, objectKey)
}

// UploadPropertyImage stores a processed image buffer under the property's folder.
func UploadPropertyImage(buf *bytes.Buffer, contentType string, propertySlug string, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	uniqueName := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String(), ext)
	objectKey := filepath.Join("properties", slug.Make(propertySlug), "images", uniqueName)

	return putObject(objectKey, bytes.NewReader(buf.Bytes()), contentType)
}

// UploadTenantDocument stores an identity/income document under the tenant's folder.
func UploadTenantDocument(file *multipart.FileHeader, tenantID uint, documentType string) (string, error) {
	if file.Size > MaxDocumentSize {
		return "", fmt.Errorf("file size too large. Maximum size is %d bytes", MaxDocumentSize)
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedDocumentTypes[contentType] {
		return "", fmt.Errorf("invalid file type. Allowed types are: pdf, jpeg, png, webp")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("could not open file: %v", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	objectKey := filepath.Join("tenants", fmt.Sprintf("%d", tenantID), slug.Make(documentType), uniqueName)

	return putObject(objectKey, src, contentType)
}

func putObject(objectKey string, body interface{ Read([]byte) (int, error) }, contentType string) (string, error) {
	client, err := getS3Client()
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("R2_BUCKET_NAME")),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload file to R2: %v", err)
	}

	return publicURL(objectKey), nil
}

// DeleteFile removes an uploaded object given its public URL.
func DeleteFile(fullURL string) error {
	objectKey := objectKeyFromURL(fullURL)

	client, err := getS3Client()
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(os.Getenv("R2_BUCKET_NAME")),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("could not delete file from R2: %v", err)
	}

	return nil
}

func objectKeyFromURL(fullURL string) string {
	parts := strings.SplitN(fullURL, "/", 4)
	if len(parts) < 4 {
		return fullURL
	}
	return parts[3]
}
