package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	apperrors "go-image-forensics/internal/errors"
)

// AzureBlobFetcher retrieves image bytes from Azure Blob Storage. The
// ref is a blob URL whose path names the container and whose "blob"
// query parameter names the blob.
type AzureBlobFetcher struct {
	client *azblob.Client
}

// NewAzureBlobFetcher creates a fetcher authenticated with a shared
// account key.
func NewAzureBlobFetcher(accountName, accountKey string) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid storage credentials", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create blob client", err)
	}
	return &AzureBlobFetcher{client: client}, nil
}

func (f *AzureBlobFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	parsed, err := url.Parse(ref)
	if err != nil || len(parsed.Path) < 2 {
		return nil, apperrors.NewInputError("invalid blob URL", err)
	}

	containerName := parsed.Path[1:]
	blobName := parsed.Query().Get("blob")
	if blobName == "" {
		return nil, apperrors.NewInputError("blob URL is missing the blob parameter", nil)
	}

	resp, err := f.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("blob download failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("blob read failed", err)
	}
	return data, nil
}
