package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/google/uuid"
	"github.com/opsdesk/admin-api/internal/config"
)

// BlobStorage keeps files in one Azure Blob Storage container.
// Storage paths are blob names.
type BlobStorage struct {
	client    *azblob.Client
	container string
}

// NewBlobStorage connects with the connection string when set, otherwise
// with DefaultAzureCredential against the account URL
func NewBlobStorage(cfg *config.StorageConfig) (*BlobStorage, error) {
	if cfg.AzureContainer == "" {
		return nil, fmt.Errorf("storage.azureContainer is required for azure storage")
	}

	var (
		client *azblob.Client
		err    error
	)
	switch {
	case cfg.AzureConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.AzureConnectionString, nil)
	case cfg.AzureAccountURL != "":
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(cfg.AzureAccountURL, cred, nil)
	default:
		return nil, fmt.Errorf("storage.azureAccountURL or storage.azureConnectionString is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStorage{client: client, container: cfg.AzureContainer}, nil
}

// blobName validates a storage path for use as a blob name
func blobName(storagePath string) (string, error) {
	if storagePath == "" || strings.HasPrefix(storagePath, "/") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(storagePath)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *BlobStorage) Upload(ctx context.Context, filename string, data io.Reader) (string, int64, error) {
	fileID := uuid.New().String()
	name := path.Join(fileID[:2], fileID[2:4], fileID+path.Ext(filename))

	counter := &countingReader{r: data}
	if _, err := s.client.UploadStream(ctx, s.container, name, counter, nil); err != nil {
		return "", 0, fmt.Errorf("failed to upload blob: %w", err)
	}
	return name, counter.n, nil
}

func (s *BlobStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	name, err := blobName(storagePath)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("file not found: %s", storagePath)
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}

func (s *BlobStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	name, err := blobName(storagePath)
	if err != nil {
		return false, err
	}
	blob := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name)
	if _, err := blob.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read blob properties: %w", err)
	}
	return true, nil
}

// Delete removes a blob. A missing blob is not an error.
func (s *BlobStorage) Delete(ctx context.Context, storagePath string) error {
	name, err := blobName(storagePath)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteBlob(ctx, s.container, name, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
