package argus

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/argus-vision/argus-go/errors"
)

// itemPageSize is how many item identifiers are fetched per listing request.
const itemPageSize = 500

// ListItemIDs returns the identifiers of every item in a dataset. Pages are
// fetched from the service until a short page signals the end.
func (c *Client) ListItemIDs(ctx context.Context, datasetID int64) ([]uuid.UUID, error) {
	var all []uuid.UUID
	for offset := 0; ; offset += itemPageSize {
		page, err := c.api.ListItemIDs(ctx, datasetID, offset, itemPageSize)
		if err != nil {
			return nil, errors.NewError("listItemIDs", err).
				WithMessage("failed to list item identifiers")
		}
		all = append(all, page...)
		if len(page) < itemPageSize {
			return all, nil
		}
	}
}

// ImportAnnotations attaches an annotation payload to an item. The payload
// schema is owned by the service and passed through opaquely.
func (c *Client) ImportAnnotations(ctx context.Context, itemID uuid.UUID, payload json.RawMessage) error {
	if len(payload) == 0 {
		return errors.NewError("importAnnotations", errors.ErrInvalidInput).
			WithMessage("annotation payload is required")
	}
	if err := c.api.ImportAnnotations(ctx, itemID, payload); err != nil {
		return errors.NewError("importAnnotations", err).
			WithMessage("failed to import annotations")
	}
	return nil
}
