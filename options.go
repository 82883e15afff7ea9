// Package argus provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package argus

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/argus-vision/argus-go/argtypes"
)

// WithBaseURL sets the base URL of the Argus service.
// This option is required.
func WithBaseURL(baseURL string) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithAPIKey sets the API key used to authenticate with the service.
// This option is required.
func WithAPIKey(apiKey string) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		c.APIKey = apiKey
	}
}

// WithTeam sets the team slug requests are scoped to.
// Default is "default".
func WithTeam(team string) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		if team != "" {
			c.Team = team
		}
	}
}

// WithTimeout sets the timeout for individual service requests.
// Default is 30 seconds. It does not bound signed-URL transfers, which are
// governed by the push context.
func WithTimeout(timeout time.Duration) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default maximum number of concurrent per-item
// transfers during pushes. Default is 5.
func WithConcurrency(concurrency int) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithHTTPClient allows providing a custom HTTP client.
// Use this when you need fine-grained control over transport behavior such
// as proxies or TLS configuration. It overrides WithTimeout.
func WithHTTPClient(client *http.Client) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for file operations.
// This is useful for testing with in-memory filesystems.
func WithFilesystem(filesystem fs.Filesystem) argtypes.Option {
	return func(c *argtypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// Push options

// WithExclude removes files or directories from the resolved file set.
// Paths name files or whole directory trees.
func WithExclude(paths ...string) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.Exclude = append(c.Exclude, paths...)
	}
}

// WithPath sets the remote folder items are pushed under.
// Default is "/", the dataset root.
func WithPath(path string) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.Path = path
	}
}

// WithRootPath overrides the local root directory remote folders are derived
// relative to. Default is the deepest common ancestor of the batch.
// Only meaningful together with WithPreserveFolders.
func WithRootPath(rootPath string) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.RootPath = rootPath
	}
}

// WithPreserveFolders mirrors the local directory structure below the root
// path into the remote folder hierarchy.
func WithPreserveFolders(preserve bool) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.PreserveFolders = preserve
	}
}

// WithAsFrames uploads video files as individual frames.
func WithAsFrames(asFrames bool) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.AsFrames = asFrames
	}
}

// WithFPS sets the frame rate video files are ingested at.
func WithFPS(fps int) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		if fps > 0 {
			c.FPS = fps
		}
	}
}

// WithExtractViews extracts individual views from multi-view media.
func WithExtractViews(extract bool) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.ExtractViews = extract
	}
}

// WithPushConcurrency bounds parallel per-item transfers for one push,
// overriding the client default.
func WithPushConcurrency(concurrency int) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithConfirmTimeout bounds how long a push retries confirmation for an item
// the service still reports as pending. Default is 3 minutes.
func WithConfirmTimeout(timeout time.Duration) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.ConfirmTimeout = timeout
	}
}

// WithProcessingTimeout bounds how long a push waits for an item to finish
// server-side processing. Default is 5 minutes.
func WithProcessingTimeout(timeout time.Duration) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.ProcessingTimeout = timeout
	}
}

// WithOnLoaded registers a callback invoked once the batch is registered,
// before any bytes are transferred.
func WithOnLoaded(fn func([]argtypes.ItemUpload)) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.OnLoaded = fn
	}
}

// WithOnComplete registers a callback invoked with the final per-item
// results after the push finishes.
func WithOnComplete(fn func([]argtypes.ItemResult)) argtypes.PushOption {
	return func(c *argtypes.PushOptionConfig) {
		c.OnComplete = fn
	}
}
