package client

import (
	"context"
	"fmt"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// FilesClient implements crmhook.FilesClient. Drive files are uploaded out
// of band, so the surface is read, rename, and the two deletion flavors
// the drive API distinguishes (trash versus permanent).
type FilesClient struct {
	client *Client
}

// NewFilesClient creates a new files client.
func NewFilesClient(client *Client) *FilesClient {
	return &FilesClient{client: client}
}

// Get fetches one file's metadata by identifier.
func (c *FilesClient) Get(ctx context.Context, id int64) (crmhook.Entity, error) {
	result, err := c.client.Call(ctx, "disk.file.get", crmhook.Fields{"id": id})
	if err != nil {
		return nil, fmt.Errorf("getting file %d: %w", id, err)
	}

	entity, err := result.Entity("")
	if err != nil {
		return nil, fmt.Errorf("getting file %d: %w", id, err)
	}

	return entity, nil
}

// Rename renames a file and returns its updated metadata.
func (c *FilesClient) Rename(ctx context.Context, id int64, newName string) (crmhook.Entity, error) {
	result, err := c.client.Call(ctx, "disk.file.rename", crmhook.Fields{"id": id, "newName": newName})
	if err != nil {
		return nil, fmt.Errorf("renaming file %d: %w", id, err)
	}

	entity, err := result.Entity("")
	if err != nil {
		return nil, fmt.Errorf("renaming file %d: %w", id, err)
	}

	return entity, nil
}

// MarkDeleted moves a file to the drive trash.
func (c *FilesClient) MarkDeleted(ctx context.Context, id int64) error {
	_, err := c.client.Call(ctx, "disk.file.markdeleted", crmhook.Fields{"id": id})
	if err != nil {
		return fmt.Errorf("trashing file %d: %w", id, err)
	}

	return nil
}

// Delete permanently removes a file.
func (c *FilesClient) Delete(ctx context.Context, id int64) error {
	_, err := c.client.Call(ctx, "disk.file.delete", crmhook.Fields{"id": id})
	if err != nil {
		return fmt.Errorf("deleting file %d: %w", id, err)
	}

	return nil
}
