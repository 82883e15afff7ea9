// Package argtypes provides shared type definitions for the Argus SDK.
package argtypes

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// UploadStatus represents the remote lifecycle state of an item upload.
type UploadStatus string

// Predefined item upload statuses
const (
	// StatusPending means the item is registered but no bytes have been sent
	StatusPending UploadStatus = "pending"

	// StatusUploading means a transfer to the signed URL is in flight
	StatusUploading UploadStatus = "uploading"

	// StatusUploaded means the transfer completed and was confirmed
	StatusUploaded UploadStatus = "uploaded"

	// StatusProcessing means the service is processing the item (thumbnails, frames)
	StatusProcessing UploadStatus = "processing"

	// StatusProcessed means the item reached its terminal successful state
	StatusProcessed UploadStatus = "processed"

	// StatusFailed means the transfer or remote processing failed
	StatusFailed UploadStatus = "failed"

	// StatusFileMissing means the local file disappeared before transfer
	StatusFileMissing UploadStatus = "file_missing"
)

// Terminal reports whether the status is an end state for an upload.
func (s UploadStatus) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed || s == StatusFileMissing
}

// MediaSlot describes one media stream within an upload item.
// Items built by this SDK carry exactly one slot per local file.
type MediaSlot struct {
	// SlotName is the item-local slot identifier (the file's zero-based
	// index within the batch, as a string)
	SlotName string `json:"slot_name"`

	// FileName is the base name of the local file backing the slot
	FileName string `json:"file_name"`

	// AsFrames uploads video files as individual frames
	AsFrames bool `json:"as_frames"`

	// FPS is the frame rate to ingest video files at
	FPS int `json:"fps"`

	// ExtractViews extracts views from multi-view media
	ExtractViews bool `json:"extract_views"`
}

// UploadItem is a single registerable item: a name, a remote folder, and an
// ordered set of media slots. Immutable once built.
type UploadItem struct {
	// Name is the item name (the file base name)
	Name string `json:"name"`

	// Path is the remote folder the item is stored under, always /-rooted
	Path string `json:"path"`

	// Slots holds the item's media slots in order
	Slots []MediaSlot `json:"slots"`
}

// ItemUpload is the service's handle for one registered item: an opaque
// upload identifier plus the signed URL to transfer bytes to.
type ItemUpload struct {
	// ID is the opaque item-upload identifier issued at registration
	ID uuid.UUID

	// URL is the time-limited signed upload target
	URL string

	// Status is the last observed upload status
	Status UploadStatus
}

// ItemResult is the per-item outcome of a push. One item's failure never
// aborts its siblings; callers inspect results individually.
type ItemResult struct {
	// Name is the item name
	Name string

	// Path is the remote folder the item was registered under
	Path string

	// LocalPath is the absolute local file the item was built from
	LocalPath string

	// UploadID is the opaque upload identifier, if registration succeeded
	UploadID uuid.UUID

	// Status is the item's final observed status
	Status UploadStatus

	// Err is the error that stopped this item, nil on success
	Err error
}

// PushResult contains the aggregate outcome of a push.
type PushResult struct {
	// Items holds per-item outcomes in input order
	Items []ItemResult

	// Processed is the number of items that reached the processed state
	Processed int

	// Failed is the number of items that ended in a failure state
	Failed int

	// Duration is how long the push took
	Duration time.Duration
}

// Dataset describes a remote dataset.
type Dataset struct {
	// ID is the service-assigned dataset identifier
	ID int64 `json:"id"`

	// Name is the human-readable dataset name
	Name string `json:"name"`

	// Slug is the URL-safe dataset identifier
	Slug string `json:"slug"`

	// ItemCount is the number of items in the dataset, when reported
	ImportCount int64 `json:"item_count,omitempty"`

	// Archived reports whether the dataset has been archived
	Archived bool `json:"archived,omitempty"`
}

// Configuration types for functional options

// ClientConfig holds configuration for the Argus client.
type ClientConfig struct {
	BaseURL          string
	APIKey           string
	Team             string
	Timeout          time.Duration
	Concurrency      int
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem // Filesystem abstraction for file operations
}

// PushOptionConfig holds configuration for push operations via functional options.
type PushOptionConfig struct {
	// Exclude lists files or directories removed from the resolved file set
	Exclude []string

	// Path is the imposed remote folder prefix, defaults to "/"
	Path string

	// RootPath overrides the derived common ancestor of the batch
	RootPath string

	// PreserveFolders mirrors local subdirectory structure under Path
	PreserveFolders bool

	// AsFrames uploads video files as individual frames
	AsFrames bool

	// FPS is the frame rate for video ingestion
	FPS int

	// ExtractViews extracts views from multi-view media
	ExtractViews bool

	// Concurrency bounds parallel per-item transfers
	Concurrency int

	// ConfirmTimeout bounds the confirm retry window per item
	ConfirmTimeout time.Duration

	// ProcessingTimeout bounds the processing poll window per item
	ProcessingTimeout time.Duration

	// OnLoaded is invoked once registration succeeds, before any transfer
	OnLoaded func([]ItemUpload)

	// OnComplete is invoked with the final per-item results
	OnComplete func([]ItemResult)
}

// Option is a functional option for configuring the Argus client.
type (
	Option func(*ClientConfig)
	// PushOption is a functional option for configuring push operations.
	PushOption func(*PushOptionConfig)
)
