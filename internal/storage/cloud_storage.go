package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// CloudStorageClient stores objects in a Cloud Storage bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient uses application default credentials.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	if bucketName == "" {
		return nil, errors.New("bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %v", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

func (c *CloudStorageClient) location(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", c.BucketName, objectName)
}

// UploadFile writes the object only if it does not exist yet.
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, fileData io.Reader) (string, error) {
	obj := c.Client.Bucket(c.BucketName).Object(objectName).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = "application/pdf"
	if _, err := io.Copy(wc, fileData); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to write data to object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close object writer: %v", err)
	}
	return c.location(objectName), nil
}

// DeleteFile removes the object; a missing object is not an error.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	err := c.Client.Bucket(c.BucketName).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *CloudStorageClient) Close() error {
	return c.Client.Close()
}
