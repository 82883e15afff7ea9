// Package rest implements the Argus service API over HTTP.
//
// Requests are built through an enumerated verb type mapped to a fixed set of
// request constructors; there is no name-based method dispatch. Responses are
// JSON and non-success status codes map onto the module's sentinel errors.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/api"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 2048

// verb is the fixed set of HTTP methods the transport can issue.
type verb int

const (
	verbGet verb = iota
	verbPost
	verbPut
	verbDelete
)

// method maps each verb onto its HTTP method string.
func (v verb) method() string {
	switch v {
	case verbGet:
		return http.MethodGet
	case verbPost:
		return http.MethodPost
	case verbPut:
		return http.MethodPut
	case verbDelete:
		return http.MethodDelete
	default:
		return ""
	}
}

// Client is the HTTP implementation of the service API.
type Client struct {
	baseURL string
	apiKey  string
	team    string
	httpc   *http.Client
}

// Verify the transport satisfies the service contract.
var _ api.API = (*Client)(nil)

// New creates a REST client for the service at baseURL, authenticating with
// apiKey on behalf of team. A nil httpc falls back to a default client with a
// 30 second timeout.
func New(baseURL, apiKey, team string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		team:    team,
		httpc:   httpc,
	}
}

// registeredSlot is the slot portion of a registration response.
type registeredSlot struct {
	SlotName string    `json:"slot_name"`
	UploadID uuid.UUID `json:"upload_id"`
}

// registeredItem is one item in a registration response.
type registeredItem struct {
	Name  string           `json:"name"`
	Path  string           `json:"path"`
	Slots []registeredSlot `json:"slots"`
}

// registerResponse is the body returned by the register endpoint. Items the
// service refused (name collisions, malformed slots) come back under
// blocked_items instead of items.
type registerResponse struct {
	Items        []registeredItem `json:"items"`
	BlockedItems []registeredItem `json:"blocked_items"`
}

// signResponse is the body returned by the sign endpoint.
type signResponse struct {
	UploadURL string `json:"upload_url"`
}

// RegisterAndSign implements api.API.
func (c *Client) RegisterAndSign(
	ctx context.Context,
	dataset string,
	items []argtypes.UploadItem,
) ([]argtypes.ItemUpload, error) {
	payload := struct {
		DatasetSlug string                `json:"dataset_slug"`
		Items       []argtypes.UploadItem `json:"items"`
	}{
		DatasetSlug: dataset,
		Items:       items,
	}

	var resp registerResponse
	path := fmt.Sprintf("/api/v2/teams/%s/items/register_upload", url.PathEscape(c.team))
	if err := c.do(ctx, verbPost, path, payload, &resp); err != nil {
		return nil, err
	}

	// Align registrations with the request order; blocked items keep their
	// place in the batch but never reach the transfer stage.
	registered := make(map[string]registeredItem, len(resp.Items))
	for _, ri := range resp.Items {
		registered[ri.Path+"\x00"+ri.Name] = ri
	}

	uploads := make([]argtypes.ItemUpload, len(items))
	claimed := make(map[string]struct{}, len(items))
	for i, item := range items {
		key := item.Path + "\x00" + item.Name
		// The service keys registrations by (path, name), so a later duplicate
		// in the batch would alias the first item's upload and overwrite its
		// bytes. Only the first occurrence claims the registration.
		if _, dup := claimed[key]; dup {
			uploads[i] = argtypes.ItemUpload{Status: argtypes.StatusFailed}
			continue
		}
		claimed[key] = struct{}{}

		ri, ok := registered[key]
		if !ok || len(ri.Slots) == 0 {
			uploads[i] = argtypes.ItemUpload{Status: argtypes.StatusFailed}
			continue
		}

		signedURL, err := c.sign(ctx, ri.Slots[0].UploadID)
		if err != nil {
			return nil, err
		}
		uploads[i] = argtypes.ItemUpload{
			ID:     ri.Slots[0].UploadID,
			URL:    signedURL,
			Status: argtypes.StatusPending,
		}
	}
	return uploads, nil
}

// sign obtains the signed upload URL for a registered upload.
func (c *Client) sign(ctx context.Context, uploadID uuid.UUID) (string, error) {
	var resp signResponse
	path := fmt.Sprintf("/api/v2/teams/%s/items/uploads/%s/sign", url.PathEscape(c.team), uploadID)
	if err := c.do(ctx, verbGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.UploadURL, nil
}

// Transfer implements api.API. The signed URL is absolute and pre-authorized;
// no API key header is sent.
func (c *Client) Transfer(
	ctx context.Context,
	signedURL, localPath, contentType string,
	body io.Reader,
	size int64,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, body)
	if err != nil {
		return errors.NewPathError("transfer", localPath, err)
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.NewPathError("transfer", localPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errors.TransferError{
			Path:       localPath,
			StatusCode: resp.StatusCode,
			Body:       string(payload),
		}
	}
	return nil
}

// confirmResponse is the body returned by the confirm endpoint.
type confirmResponse struct {
	Status string `json:"status"`
}

// Confirm implements api.API.
func (c *Client) Confirm(ctx context.Context, uploadID uuid.UUID) error {
	path := fmt.Sprintf("/api/v2/teams/%s/items/uploads/%s/confirm", url.PathEscape(c.team), uploadID)

	req, err := c.newRequest(ctx, verbPost, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.NewError("confirm", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted:
		// The service has the bytes but has not finished ingesting them.
		return errors.ErrUploadPending
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusGone:
		return errors.ErrUploadFailed
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return statusError("confirm", resp)
	}

	var body confirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && err != io.EOF {
		return errors.NewError("confirm", err).WithMessage("failed to decode response")
	}
	if body.Status == string(argtypes.StatusFailed) {
		return errors.ErrUploadFailed
	}
	return nil
}

// statusResponse is the body returned by the upload status endpoint.
type statusResponse struct {
	Status argtypes.UploadStatus `json:"status"`
}

// Status implements api.API.
func (c *Client) Status(ctx context.Context, uploadID uuid.UUID) (argtypes.UploadStatus, error) {
	var resp statusResponse
	path := fmt.Sprintf("/api/v2/teams/%s/items/uploads/%s", url.PathEscape(c.team), uploadID)
	if err := c.do(ctx, verbGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// CreateDataset implements api.API.
func (c *Client) CreateDataset(ctx context.Context, name string) (*argtypes.Dataset, error) {
	payload := struct {
		Name string `json:"name"`
	}{Name: name}

	var ds argtypes.Dataset
	if err := c.do(ctx, verbPost, "/api/datasets", payload, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// GetDataset implements api.API.
func (c *Client) GetDataset(ctx context.Context, id int64) (*argtypes.Dataset, error) {
	var ds argtypes.Dataset
	if err := c.do(ctx, verbGet, "/api/datasets/"+strconv.FormatInt(id, 10), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ArchiveDataset implements api.API.
func (c *Client) ArchiveDataset(ctx context.Context, id int64) error {
	return c.do(ctx, verbPut, "/api/datasets/"+strconv.FormatInt(id, 10)+"/archive", nil, nil)
}

// listItemIDsResponse is the body returned by the item-id listing endpoint.
type listItemIDsResponse struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// ListItemIDs implements api.API.
func (c *Client) ListItemIDs(ctx context.Context, datasetID int64, offset, limit int) ([]uuid.UUID, error) {
	q := url.Values{}
	q.Set("dataset_ids", strconv.FormatInt(datasetID, 10))
	q.Set("page[offset]", strconv.Itoa(offset))
	q.Set("page[size]", strconv.Itoa(limit))

	var resp listItemIDsResponse
	path := fmt.Sprintf("/api/v2/teams/%s/items/ids?%s", url.PathEscape(c.team), q.Encode())
	if err := c.do(ctx, verbGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ItemIDs, nil
}

// ImportAnnotations implements api.API.
func (c *Client) ImportAnnotations(ctx context.Context, itemID uuid.UUID, payload json.RawMessage) error {
	body := struct {
		Annotations json.RawMessage `json:"annotations"`
	}{Annotations: payload}

	path := fmt.Sprintf("/api/v2/teams/%s/items/%s/import", url.PathEscape(c.team), itemID)
	return c.do(ctx, verbPost, path, body, nil)
}

// newRequest builds an authenticated JSON request for a verb and service path.
func (c *Client) newRequest(ctx context.Context, v verb, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.NewError("request", err).WithMessage("failed to encode payload")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, v.method(), c.baseURL+path, body)
	if err != nil {
		return nil, errors.NewError("request", err)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do issues a request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, v verb, path string, payload, out any) error {
	req, err := c.newRequest(ctx, v, path, payload)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.NewError("request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewError("request", err).WithMessage("failed to decode response from " + path)
		}
	}
	return nil
}

// statusError converts a non-success HTTP response into a sentinel-backed error.
func statusError(op string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		sentinel = errors.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = errors.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		sentinel = errors.ErrInvalidInput
	case resp.StatusCode >= 500:
		sentinel = errors.ErrServerError
	default:
		sentinel = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	e := errors.NewError(op, sentinel)
	if len(payload) > 0 {
		e = e.WithMessage(fmt.Sprintf("status %d: %s", resp.StatusCode, payload))
	} else {
		e = e.WithMessage("status " + strconv.Itoa(resp.StatusCode))
	}
	return e
}
