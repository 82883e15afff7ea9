package argus

import (
	"net/http"
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/testutil"
)

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(WithAPIKey("key"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(WithBaseURL("https://argus.example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestNewWithOptions(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	client, err := New(
		WithBaseURL("https://argus.example.com"),
		WithAPIKey("key"),
		WithTeam("research"),
		WithTimeout(5*time.Second),
		WithConcurrency(3),
		WithFilesystem(fsys),
	)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, 3, client.concurrency)
	assert.Same(t, fsys, client.fs)
}

func TestNewWithHTTPClient(t *testing.T) {
	httpc := &http.Client{Timeout: time.Second}
	client, err := New(
		WithBaseURL("https://argus.example.com"),
		WithAPIKey("key"),
		WithHTTPClient(httpc),
	)
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestNewWithAPI(t *testing.T) {
	client, err := NewWithAPI(&testutil.MockAPI{})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, 5, client.concurrency)
}

func TestNewWithAPINil(t *testing.T) {
	_, err := NewWithAPI(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestSetFilesystem(t *testing.T) {
	client, err := NewWithAPI(&testutil.MockAPI{})
	require.NoError(t, err)

	fsys := billy.NewInMemoryFS()
	client.SetFilesystem(fsys)
	assert.Same(t, fsys, client.fs)
}

func TestConcurrencyOptionIgnoresNonPositive(t *testing.T) {
	client, err := New(
		WithBaseURL("https://argus.example.com"),
		WithAPIKey("key"),
		WithConcurrency(0),
	)
	require.NoError(t, err)
	assert.Equal(t, 5, client.concurrency)
}
