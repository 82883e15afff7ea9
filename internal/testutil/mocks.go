// Package testutil provides shared test doubles for the Argus client.
package testutil

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/internal/api"
)

// MockAPI implements api.API with function fields for easy test customization.
type MockAPI struct {
	RegisterAndSignFunc   func(ctx context.Context, dataset string, items []argtypes.UploadItem) ([]argtypes.ItemUpload, error)
	TransferFunc          func(ctx context.Context, signedURL, localPath, contentType string, body io.Reader, size int64) error
	ConfirmFunc           func(ctx context.Context, uploadID uuid.UUID) error
	StatusFunc            func(ctx context.Context, uploadID uuid.UUID) (argtypes.UploadStatus, error)
	CreateDatasetFunc     func(ctx context.Context, name string) (*argtypes.Dataset, error)
	GetDatasetFunc        func(ctx context.Context, id int64) (*argtypes.Dataset, error)
	ArchiveDatasetFunc    func(ctx context.Context, id int64) error
	ListItemIDsFunc       func(ctx context.Context, datasetID int64, offset, limit int) ([]uuid.UUID, error)
	ImportAnnotationsFunc func(ctx context.Context, itemID uuid.UUID, payload json.RawMessage) error
}

var _ api.API = (*MockAPI)(nil)

// RegisterAndSign calls the mock function if set, otherwise registers every
// item with a fresh ID and a pending status.
func (m *MockAPI) RegisterAndSign(
	ctx context.Context,
	dataset string,
	items []argtypes.UploadItem,
) ([]argtypes.ItemUpload, error) {
	if m.RegisterAndSignFunc != nil {
		return m.RegisterAndSignFunc(ctx, dataset, items)
	}
	uploads := make([]argtypes.ItemUpload, len(items))
	for i := range items {
		uploads[i] = argtypes.ItemUpload{
			ID:     uuid.New(),
			URL:    "https://storage.example.com/" + items[i].Name,
			Status: argtypes.StatusPending,
		}
	}
	return uploads, nil
}

// Transfer calls the mock function if set, otherwise drains the body and
// reports success.
func (m *MockAPI) Transfer(
	ctx context.Context,
	signedURL, localPath, contentType string,
	body io.Reader,
	size int64,
) error {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, signedURL, localPath, contentType, body, size)
	}
	_, err := io.Copy(io.Discard, body)
	return err
}

// Confirm calls the mock function if set, otherwise reports success.
func (m *MockAPI) Confirm(ctx context.Context, uploadID uuid.UUID) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, uploadID)
	}
	return nil
}

// Status calls the mock function if set, otherwise reports the item as
// processed.
func (m *MockAPI) Status(ctx context.Context, uploadID uuid.UUID) (argtypes.UploadStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, uploadID)
	}
	return argtypes.StatusProcessed, nil
}

// CreateDataset calls the mock function if set, otherwise returns a minimal
// dataset.
func (m *MockAPI) CreateDataset(ctx context.Context, name string) (*argtypes.Dataset, error) {
	if m.CreateDatasetFunc != nil {
		return m.CreateDatasetFunc(ctx, name)
	}
	return &argtypes.Dataset{ID: 1, Name: name, Slug: name}, nil
}

// GetDataset calls the mock function if set, otherwise returns a minimal
// dataset.
func (m *MockAPI) GetDataset(ctx context.Context, id int64) (*argtypes.Dataset, error) {
	if m.GetDatasetFunc != nil {
		return m.GetDatasetFunc(ctx, id)
	}
	return &argtypes.Dataset{ID: id, Name: "dataset", Slug: "dataset"}, nil
}

// ArchiveDataset calls the mock function if set, otherwise reports success.
func (m *MockAPI) ArchiveDataset(ctx context.Context, id int64) error {
	if m.ArchiveDatasetFunc != nil {
		return m.ArchiveDatasetFunc(ctx, id)
	}
	return nil
}

// ListItemIDs calls the mock function if set, otherwise returns an empty
// page.
func (m *MockAPI) ListItemIDs(
	ctx context.Context,
	datasetID int64,
	offset, limit int,
) ([]uuid.UUID, error) {
	if m.ListItemIDsFunc != nil {
		return m.ListItemIDsFunc(ctx, datasetID, offset, limit)
	}
	return nil, nil
}

// ImportAnnotations calls the mock function if set, otherwise reports
// success.
func (m *MockAPI) ImportAnnotations(ctx context.Context, itemID uuid.UUID, payload json.RawMessage) error {
	if m.ImportAnnotationsFunc != nil {
		return m.ImportAnnotationsFunc(ctx, itemID, payload)
	}
	return nil
}
