package argus

import (
	"context"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
)

// CreateDataset creates a new dataset owned by the configured team and
// returns its service-side record.
func (c *Client) CreateDataset(ctx context.Context, name string) (*argtypes.Dataset, error) {
	if name == "" {
		return nil, errors.NewError("createDataset", errors.ErrInvalidInput).
			WithMessage("dataset name is required")
	}

	ds, err := c.api.CreateDataset(ctx, name)
	if err != nil {
		return nil, errors.NewDatasetError("createDataset", name, err).
			WithMessage("failed to create dataset")
	}
	return ds, nil
}

// GetDataset retrieves a dataset by its identifier.
func (c *Client) GetDataset(ctx context.Context, id int64) (*argtypes.Dataset, error) {
	ds, err := c.api.GetDataset(ctx, id)
	if err != nil {
		return nil, errors.NewError("getDataset", err).
			WithMessage("failed to get dataset")
	}
	return ds, nil
}

// ArchiveDataset archives a dataset. Archival is the service's deletion
// model; an archived dataset stops accepting uploads but its items remain
// readable.
func (c *Client) ArchiveDataset(ctx context.Context, id int64) error {
	if err := c.api.ArchiveDataset(ctx, id); err != nil {
		return errors.NewError("archiveDataset", err).
			WithMessage("failed to archive dataset")
	}
	return nil
}
