// Package storage is the blob store adapter: opaque upload/download/delete of
// file bytes against a Cloudflare R2 bucket through the S3 API. Unlike
// content extraction, storage failures always propagate as explicit errors —
// callers must know when bytes are not durably stored.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// UploadResult identifies a stored blob: the store-assigned key used for
// deletion, and the stable public URL used for retrieval.
type UploadResult struct {
	URL string
	Key string
}

// Client holds the configuration for interacting with the R2 bucket.
type Client struct {
	s3Client   *s3.Client
	httpClient *http.Client
	bucketName string
	publicURL  string
}

// NewClient creates and configures a new storage client from environment
// variables (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID,
// R2_SECRET_ACCESS_KEY, R2_PUBLIC_URL).
func NewClient(ctx context.Context) (*Client, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	bucketName := os.Getenv("R2_BUCKET_NAME")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("R2_SECRET_ACCESS_KEY")
	publicURL := os.Getenv("R2_PUBLIC_URL")

	if accountID == "" || bucketName == "" || accessKeyID == "" || secretAccessKey == "" || publicURL == "" {
		return nil, fmt.Errorf("R2 environment variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_PUBLIC_URL)")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	log.Printf("INFO: storage client initialized for bucket '%s'", bucketName)
	return &Client{
		s3Client:   s3Client,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		bucketName: bucketName,
		publicURL:  publicURL,
	}, nil
}

// Upload stores file bytes under a fresh key and returns the public URL plus
// the storage key.
func (c *Client) Upload(ctx context.Context, data []byte, mediaType, filename string) (UploadResult, error) {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	objectKey := fmt.Sprintf("files/%s/%s", uuid.New().String(), filename)

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload file to storage (key: %s): %w", objectKey, err)
	}

	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		log.Printf("ERROR: failed to parse storage public base URL '%s': %v", c.publicURL, err)
		return UploadResult{}, fmt.Errorf("invalid storage public base URL configured")
	}
	baseURL.Path = path.Join(baseURL.Path, objectKey)

	return UploadResult{URL: baseURL.String(), Key: objectKey}, nil
}

// Download fetches a stored blob's bytes from its public URL.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloaded file: %w", err)
	}
	return data, nil
}

// Delete removes a stored blob by its storage key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from storage (key: %s): %w", key, err)
	}
	return nil
}
