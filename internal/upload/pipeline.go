// Package upload coordinates the multi-step remote upload protocol.
// The pipeline is an explicit sequence of typed stages (register, transfer,
// confirm, then poll) fanned out over the item batch with a concurrency limit.
//
// Registration is batch-level: its failure aborts the push before any bytes
// move. Every later stage is per item; one item's failure never aborts its
// siblings, and per-item outcomes fan back into an index-disjoint result
// slice.
package upload

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"golang.org/x/sync/errgroup"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/api"
)

const (
	// defaultContentType is used when content type detection fails
	defaultContentType = "application/octet-stream"

	// defaultConcurrency bounds parallel per-item transfers
	defaultConcurrency = 5

	// defaultConfirmTimeout is the confirm retry window per item
	defaultConfirmTimeout = 3 * time.Minute

	// defaultProcessingTimeout is the processing poll window per item
	defaultProcessingTimeout = 5 * time.Minute

	// pollInterval is the initial backoff interval for confirm and poll
	pollInterval = 300 * time.Millisecond
)

// Config tunes one pipeline run.
type Config struct {
	// Concurrency bounds parallel per-item stages; <= 0 uses the default.
	Concurrency int

	// ConfirmTimeout bounds the confirm retry window; <= 0 uses the default.
	ConfirmTimeout time.Duration

	// ProcessingTimeout bounds the processing poll window; <= 0 uses the default.
	ProcessingTimeout time.Duration

	// PollInterval overrides the initial retry interval; <= 0 uses the default.
	PollInterval time.Duration

	// OnLoaded is invoked after successful registration, before any transfer.
	OnLoaded func([]argtypes.ItemUpload)
}

// Pipeline runs the upload protocol against the remote service.
type Pipeline struct {
	api  api.API
	fsys fs.Filesystem
}

// New creates a pipeline bound to a service API and a filesystem.
func New(service api.API, fsys fs.Filesystem) *Pipeline {
	return &Pipeline{
		api:  service,
		fsys: fsys,
	}
}

// Run pushes a batch of items through the register, transfer, confirm, and
// poll stages.
// files and built are parallel slices: files[i] is the local file behind
// built[i]. The returned result always carries one entry per item, in input
// order. Run only returns an error when the batch as a whole cannot proceed
// (registration failure or cancellation before fan-out).
func (p *Pipeline) Run(
	ctx context.Context,
	dataset string,
	built []argtypes.UploadItem,
	files []string,
	cfg Config,
) (*argtypes.PushResult, error) {
	startTime := time.Now()

	if len(built) != len(files) {
		return nil, errors.NewDatasetError("push", dataset, errors.ErrInvalidInput).
			WithMessage("items and files must be the same length")
	}

	uploads, err := p.api.RegisterAndSign(ctx, dataset, built)
	if err != nil {
		return nil, errors.NewDatasetError("push", dataset, err).
			WithMessage("failed to register items")
	}
	if len(uploads) != len(built) {
		return nil, errors.NewDatasetError("push", dataset, errors.ErrInvalidInput).
			WithMessage("service returned a mismatched registration batch")
	}

	if cfg.OnLoaded != nil {
		cfg.OnLoaded(uploads)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]argtypes.ItemResult, len(built))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for i := range built {
		group.Go(func() error {
			results[i] = p.runItem(ctx, built[i], files[i], uploads[i], cfg)
			return nil
		})
	}
	// Item goroutines never return errors; failures live in their results.
	_ = group.Wait()

	result := &argtypes.PushResult{
		Items:    results,
		Duration: time.Since(startTime),
	}
	for _, r := range results {
		if r.Status == argtypes.StatusProcessed {
			result.Processed++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// runItem drives a single item through transfer, confirm, and poll.
func (p *Pipeline) runItem(
	ctx context.Context,
	item argtypes.UploadItem,
	file string,
	upload argtypes.ItemUpload,
	cfg Config,
) argtypes.ItemResult {
	result := argtypes.ItemResult{
		Name:      item.Name,
		Path:      item.Path,
		LocalPath: file,
		UploadID:  upload.ID,
	}

	if upload.Status == argtypes.StatusFailed {
		result.Status = argtypes.StatusFailed
		result.Err = errors.NewPathError("register", file, errors.ErrUploadFailed).
			WithMessage("service refused to register item " + item.Name)
		return result
	}

	if err := p.transfer(ctx, upload.URL, file); err != nil {
		if errors.IsPrecondition(err) {
			result.Status = argtypes.StatusFileMissing
		} else {
			result.Status = argtypes.StatusFailed
		}
		result.Err = err
		return result
	}
	result.Status = argtypes.StatusUploading

	if err := p.confirm(ctx, upload, cfg); err != nil {
		result.Status = argtypes.StatusFailed
		result.Err = err
		return result
	}
	result.Status = argtypes.StatusUploaded

	status, err := p.awaitProcessed(ctx, upload, cfg)
	result.Status = status
	result.Err = err
	return result
}

// transfer streams the file's bytes to the signed URL.
func (p *Pipeline) transfer(ctx context.Context, signedURL, file string) error {
	info, err := p.fsys.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return errors.NewPathError("transfer", file, errors.ErrPrecondition).
			WithMessage("file must be an existing regular file")
	}

	handle, err := p.fsys.Open(file)
	if err != nil {
		return errors.NewPathError("transfer", file, err)
	}
	defer handle.Close()

	contentType := p.detectContentType(file)
	return p.api.Transfer(ctx, signedURL, file, contentType, handle, info.Size())
}

// confirm retries the confirm call while the service reports the upload as
// still pending, within the configured window.
func (p *Pipeline) confirm(ctx context.Context, upload argtypes.ItemUpload, cfg Config) error {
	operation := func() error {
		err := p.api.Confirm(ctx, upload.ID)
		switch {
		case err == nil:
			return nil
		case errors.IsUploadPending(err):
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	err := backoff.Retry(operation, backoff.WithContext(p.policy(cfg, cfg.ConfirmTimeout, defaultConfirmTimeout), ctx))
	if err != nil && errors.IsUploadPending(err) {
		return errors.NewError("confirm", errors.ErrTimeout).
			WithMessage("upload still pending after confirm window")
	}
	return err
}

// awaitProcessed polls the upload status until it reaches a terminal state or
// the processing window elapses.
func (p *Pipeline) awaitProcessed(
	ctx context.Context,
	upload argtypes.ItemUpload,
	cfg Config,
) (argtypes.UploadStatus, error) {
	var last argtypes.UploadStatus

	operation := func() error {
		status, err := p.api.Status(ctx, upload.ID)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = status
		if status.Terminal() {
			return nil
		}
		return errors.ErrUploadPending
	}

	err := backoff.Retry(operation, backoff.WithContext(p.policy(cfg, cfg.ProcessingTimeout, defaultProcessingTimeout), ctx))
	switch {
	case err != nil && errors.IsUploadPending(err):
		return last, errors.NewError("poll", errors.ErrTimeout).
			WithMessage("item not processed within processing window")
	case err != nil:
		return argtypes.StatusFailed, err
	case last == argtypes.StatusFailed:
		return argtypes.StatusFailed, errors.ErrUploadFailed
	default:
		return last, nil
	}
}

// policy builds the retry policy for confirm/poll loops.
func (p *Pipeline) policy(cfg Config, window, fallback time.Duration) backoff.BackOff {
	if window <= 0 {
		window = fallback
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = pollInterval
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxElapsedTime = window
	return b
}

// detectContentType determines the content type using mimetype where
// possible, falling back to extension-based lookup.
func (p *Pipeline) detectContentType(file string) string {
	handle, err := p.fsys.Open(file)
	if err != nil {
		return detectContentTypeFromExtension(file)
	}
	defer handle.Close()

	// Read first 512 bytes for content detection
	buf := make([]byte, 512)
	n, _ := handle.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}
	return detectContentTypeFromExtension(file)
}

// detectContentTypeFromExtension detects content type from the file extension.
func detectContentTypeFromExtension(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return defaultContentType
}
