// Package api defines the contract with the remote Argus service to enable
// testing and mocking.
package api

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/argus-vision/argus-go/argtypes"
)

// API defines the remote service operations used by this module.
// This interface allows for mocking in tests and alternative transports.
type API interface {
	// RegisterAndSign registers a batch of items with a dataset and obtains a
	// signed upload target plus an opaque upload identifier for each. The
	// returned slice is aligned with the input items; an item the service
	// refused to register comes back with StatusFailed and a zero ID.
	RegisterAndSign(ctx context.Context, dataset string, items []argtypes.UploadItem) ([]argtypes.ItemUpload, error)

	// Transfer uploads file bytes to a signed URL. A non-success response is
	// returned as a *errors.TransferError carrying localPath and the response
	// payload.
	Transfer(ctx context.Context, signedURL, localPath, contentType string, body io.Reader, size int64) error

	// Confirm tells the service a transferred item is complete. Returns
	// ErrUploadPending while the service is still ingesting the bytes and
	// ErrUploadFailed when the upload is terminally broken.
	Confirm(ctx context.Context, uploadID uuid.UUID) error

	// Status reports the remote processing status for an upload.
	Status(ctx context.Context, uploadID uuid.UUID) (argtypes.UploadStatus, error)

	// CreateDataset creates a new dataset owned by the configured team.
	CreateDataset(ctx context.Context, name string) (*argtypes.Dataset, error)

	// GetDataset retrieves a dataset by identifier.
	GetDataset(ctx context.Context, id int64) (*argtypes.Dataset, error)

	// ArchiveDataset archives a dataset. Archival is the service's deletion
	// model; archived datasets stop accepting uploads.
	ArchiveDataset(ctx context.Context, id int64) error

	// ListItemIDs returns one page of item identifiers for a dataset.
	ListItemIDs(ctx context.Context, datasetID int64, offset, limit int) ([]uuid.UUID, error)

	// ImportAnnotations attaches an annotation payload to an item. The payload
	// schema is owned by the service and passed through opaquely.
	ImportAnnotations(ctx context.Context, itemID uuid.UUID, payload json.RawMessage) error
}
