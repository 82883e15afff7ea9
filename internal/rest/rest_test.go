package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/testutil"
)

const testAPIKey = "test-key.secret"

func setupClient(t *testing.T) (*Client, *testutil.FakeService) {
	t.Helper()

	svc := testutil.NewServer(t)
	svc.APIKey = testAPIKey
	return New(svc.URL, testAPIKey, "research", nil), svc
}

func singleSlotItems(names ...string) []argtypes.UploadItem {
	items := make([]argtypes.UploadItem, 0, len(names))
	for i, name := range names {
		items = append(items, argtypes.UploadItem{
			Name: name,
			Path: "/",
			Slots: []argtypes.MediaSlot{
				{SlotName: string(rune('0' + i)), FileName: name},
			},
		})
	}
	return items
}

func TestRegisterAndSign(t *testing.T) {
	client, _ := setupClient(t)

	uploads, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("one.png", "two.png"))
	require.NoError(t, err)
	require.Len(t, uploads, 2)

	for _, up := range uploads {
		assert.Equal(t, argtypes.StatusPending, up.Status)
		assert.NotEqual(t, uuid.Nil, up.ID)
		assert.Contains(t, up.URL, "/storage/")
	}
	assert.NotEqual(t, uploads[0].ID, uploads[1].ID)
}

func TestRegisterAndSignBlockedItem(t *testing.T) {
	client, svc := setupClient(t)
	svc.BlockedNames = []string{"blocked.png"}

	uploads, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("good.png", "blocked.png"))
	require.NoError(t, err)
	require.Len(t, uploads, 2)

	assert.Equal(t, argtypes.StatusPending, uploads[0].Status)
	assert.Equal(t, argtypes.StatusFailed, uploads[1].Status)
	assert.Equal(t, uuid.Nil, uploads[1].ID)
}

func TestRegisterAndSignDuplicateItems(t *testing.T) {
	client, _ := setupClient(t)

	// Two local files can collapse to the same (name, path) when folder
	// structure is not preserved; the second must not alias the first's
	// upload and overwrite its bytes.
	uploads, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("img.png", "img.png"))
	require.NoError(t, err)
	require.Len(t, uploads, 2)

	assert.Equal(t, argtypes.StatusPending, uploads[0].Status)
	assert.NotEqual(t, uuid.Nil, uploads[0].ID)
	assert.Equal(t, argtypes.StatusFailed, uploads[1].Status)
	assert.Equal(t, uuid.Nil, uploads[1].ID)
	assert.NotEqual(t, uploads[0].ID, uploads[1].ID)
}

func TestRegisterAndSignBadAPIKey(t *testing.T) {
	svc := testutil.NewServer(t)
	svc.APIKey = testAPIKey
	client := New(svc.URL, "wrong-key", "research", nil)

	_, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("one.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestTransferConfirmStatus(t *testing.T) {
	client, svc := setupClient(t)

	uploads, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("one.png"))
	require.NoError(t, err)
	up := uploads[0]

	payload := []byte("image bytes")
	err = client.Transfer(context.Background(), up.URL, "/data/one.png", "image/png", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	records := svc.Transfers()
	require.Len(t, records, 1)
	assert.Equal(t, up.ID, records[0].UploadID)
	assert.Equal(t, "image/png", records[0].ContentType)
	assert.Equal(t, int64(len(payload)), records[0].Size)

	require.NoError(t, client.Confirm(context.Background(), up.ID))

	status, err := client.Status(context.Background(), up.ID)
	require.NoError(t, err)
	assert.Equal(t, argtypes.StatusProcessed, status)
}

func TestTransferFailureCarriesBody(t *testing.T) {
	client, svc := setupClient(t)
	svc.FailTransferNames = []string{"one.png"}

	uploads, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("one.png"))
	require.NoError(t, err)

	payload := []byte("image bytes")
	err = client.Transfer(context.Background(), uploads[0].URL, "/data/one.png", "image/png", bytes.NewReader(payload), int64(len(payload)))
	require.Error(t, err)
	assert.True(t, errors.IsTransferFailed(err))

	var terr *errors.TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 500, terr.StatusCode)
	assert.Equal(t, "/data/one.png", terr.Path)
	assert.Contains(t, terr.Body, "storage write failed")
}

func TestConfirmPendingAndConflict(t *testing.T) {
	client, svc := setupClient(t)
	svc.PendingConfirms = 1

	uploads, err := client.RegisterAndSign(context.Background(), "wildlife", singleSlotItems("one.png"))
	require.NoError(t, err)
	up := uploads[0]

	// Confirming before any bytes arrive is a terminal failure.
	err = client.Confirm(context.Background(), up.ID)
	assert.ErrorIs(t, err, errors.ErrUploadFailed)

	payload := []byte("image bytes")
	require.NoError(t, client.Transfer(context.Background(), up.URL, "/data/one.png", "image/png", bytes.NewReader(payload), int64(len(payload))))

	// First confirm after transfer is still pending, the next succeeds.
	err = client.Confirm(context.Background(), up.ID)
	assert.True(t, errors.IsUploadPending(err))
	assert.NoError(t, client.Confirm(context.Background(), up.ID))
}

func TestStatusUnknownUpload(t *testing.T) {
	client, _ := setupClient(t)

	_, err := client.Status(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDatasetLifecycle(t *testing.T) {
	client, svc := setupClient(t)

	ds, err := client.CreateDataset(context.Background(), "Wildlife Captures")
	require.NoError(t, err)
	assert.NotZero(t, ds.ID)
	assert.Equal(t, "Wildlife Captures", ds.Name)
	assert.Equal(t, "wildlife-captures", ds.Slug)

	fetched, err := client.GetDataset(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, fetched.ID)
	assert.False(t, fetched.Archived)

	require.NoError(t, client.ArchiveDataset(context.Background(), ds.ID))

	_, archived, ok := svc.Dataset(ds.ID)
	require.True(t, ok)
	assert.True(t, archived)
}

func TestCreateDatasetEmptyName(t *testing.T) {
	client, _ := setupClient(t)

	_, err := client.CreateDataset(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestGetDatasetNotFound(t *testing.T) {
	client, _ := setupClient(t)

	_, err := client.GetDataset(context.Background(), 404404)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestListItemIDs(t *testing.T) {
	client, svc := setupClient(t)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc.SeedItems(7, ids)

	page, err := client.ListItemIDs(context.Background(), 7, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, ids[:2], page)

	page, err = client.ListItemIDs(context.Background(), 7, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, ids[2:], page)

	page, err = client.ListItemIDs(context.Background(), 7, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestImportAnnotations(t *testing.T) {
	client, svc := setupClient(t)

	itemID := uuid.New()
	payload := json.RawMessage(`{"annotations":[{"class":"zebra"}]}`)
	require.NoError(t, client.ImportAnnotations(context.Background(), itemID, payload))

	stored := svc.Imports(itemID)
	require.Len(t, stored, 1)
	assert.JSONEq(t, string(payload), string(stored[0]))
}

func TestVerbMethods(t *testing.T) {
	assert.Equal(t, "GET", verbGet.method())
	assert.Equal(t, "POST", verbPost.method())
	assert.Equal(t, "PUT", verbPut.method())
	assert.Equal(t, "DELETE", verbDelete.method())
}
