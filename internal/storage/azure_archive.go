package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// Archiver stores a delivered still and returns a stable URL for it
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte) (string, error)
}

type azureArchiver struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzureArchiver creates an archiver backed by Azure Blob Storage.
func NewAzureArchiver(accountName, accountKey, container string) (Archiver, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArchiver{
		client:    client,
		account:   accountName,
		container: container,
	}, nil
}

// Archive uploads the encoded still under the given blob name.
func (a *azureArchiver) Archive(ctx context.Context, name string, data []byte) (string, error) {
	if _, err := a.client.UploadBuffer(ctx, a.container, name, data, nil); err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", a.account, a.container, name), nil
}
