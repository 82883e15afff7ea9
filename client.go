package argus

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/api"
	"github.com/argus-vision/argus-go/internal/rest"
)

// defaultTeam is used when no team slug is configured.
const defaultTeam = "default"

// Client represents an Argus client with configurable options.
// It is safe for concurrent use; a single client can drive multiple pushes
// at once.
type Client struct {
	// api is the underlying service transport
	api api.API

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem

	// concurrency is the default bound on parallel per-item transfers
	concurrency int
}

// New creates a new Argus client with the provided options.
// WithBaseURL and WithAPIKey are required.
//
// Example:
//
//	client, err := argus.New(
//	    argus.WithBaseURL("https://argus.example.com"),
//	    argus.WithAPIKey(os.Getenv("ARGUS_API_KEY")),
//	    argus.WithTeam("research"),
//	)
func New(opts ...argtypes.Option) (*Client, error) {
	clientCfg := &argtypes.ClientConfig{
		Team:        defaultTeam,
		Timeout:     30 * time.Second,
		Concurrency: 5,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	if clientCfg.BaseURL == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("base URL is required")
	}
	if clientCfg.APIKey == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("API key is required")
	}

	httpc := clientCfg.CustomHTTPClient
	if httpc == nil && clientCfg.Timeout > 0 {
		httpc = &http.Client{Timeout: clientCfg.Timeout}
	}
	transport := rest.New(clientCfg.BaseURL, clientCfg.APIKey, clientCfg.Team, httpc)

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		// Default to OS filesystem rooted at /
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		api:         transport,
		fs:          filesystem,
		concurrency: clientCfg.Concurrency,
	}, nil
}

// NewWithAPI creates a client with a pre-configured service API.
// This is primarily useful for testing with mock implementations.
func NewWithAPI(service api.API, opts ...argtypes.Option) (*Client, error) {
	if service == nil {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("service API cannot be nil")
	}

	clientCfg := &argtypes.ClientConfig{Concurrency: 5}
	for _, opt := range opts {
		opt(clientCfg)
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		api:         service,
		fs:          filesystem,
		concurrency: clientCfg.Concurrency,
	}, nil
}

// SetFilesystem replaces the filesystem abstraction used for file operations.
// This is primarily useful for testing with in-memory filesystems.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.fs = filesystem
}
