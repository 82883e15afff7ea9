package argus

import (
	"context"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/fileset"
	"github.com/argus-vision/argus-go/internal/items"
	"github.com/argus-vision/argus-go/internal/pathing"
	"github.com/argus-vision/argus-go/internal/upload"
)

// Push uploads local files and directories into a dataset.
//
// paths may mix individual files and whole directory trees; directories are
// walked recursively. The resolved set, minus any WithExclude entries, is
// registered with the service as one batch and every file is transferred to
// its signed URL, confirmed, and polled until server-side processing
// finishes. Transfers run concurrently up to the configured limit, and one
// item's failure never aborts its siblings; inspect the returned result for
// per-item outcomes.
//
// Local preconditions (missing files, a bad root path, an invalid remote
// folder) fail the whole call before anything is registered. An empty
// resolved set returns an empty result and performs no service calls.
//
// Example:
//
//	result, err := client.Push(ctx, "wildlife", []string{"/data/captures"},
//	    argus.WithExclude("/data/captures/rejected"),
//	    argus.WithPath("/2026/august"),
//	    argus.WithPreserveFolders(true),
//	)
func (c *Client) Push(
	ctx context.Context,
	dataset string,
	paths []string,
	opts ...argtypes.PushOption,
) (*argtypes.PushResult, error) {
	if dataset == "" {
		return nil, errors.NewError("push", errors.ErrInvalidInput).
			WithMessage("dataset slug is required")
	}

	pushCfg := &argtypes.PushOptionConfig{
		Path:        "/",
		Concurrency: c.concurrency,
	}
	for _, opt := range opts {
		opt(pushCfg)
	}

	files, err := fileset.Resolve(c.fs, paths, pushCfg.Exclude)
	if err != nil {
		return nil, errors.NewDatasetError("push", dataset, err).
			WithMessage("failed to resolve file set")
	}
	if len(files) == 0 {
		return &argtypes.PushResult{Items: []argtypes.ItemResult{}}, nil
	}

	rootPath := pushCfg.RootPath
	if rootPath == "" {
		rootPath, err = pathing.CommonRoot(files)
		if err != nil {
			return nil, errors.NewDatasetError("push", dataset, err)
		}
	}

	built, err := items.Build(c.fs, files, rootPath, pushCfg.Path, items.Flags{
		AsFrames:        pushCfg.AsFrames,
		FPS:             pushCfg.FPS,
		ExtractViews:    pushCfg.ExtractViews,
		PreserveFolders: pushCfg.PreserveFolders,
	})
	if err != nil {
		return nil, errors.NewDatasetError("push", dataset, err)
	}

	pipeline := upload.New(c.api, c.fs)
	result, err := pipeline.Run(ctx, dataset, built, files, upload.Config{
		Concurrency:       pushCfg.Concurrency,
		ConfirmTimeout:    pushCfg.ConfirmTimeout,
		ProcessingTimeout: pushCfg.ProcessingTimeout,
		OnLoaded:          pushCfg.OnLoaded,
	})
	if err != nil {
		return nil, err
	}

	if pushCfg.OnComplete != nil {
		pushCfg.OnComplete(result.Items)
	}
	return result, nil
}

// PushSingle uploads one file into a dataset under an optional remote folder.
// It is a convenience wrapper over Push for the common single-file case.
func (c *Client) PushSingle(
	ctx context.Context,
	dataset, file string,
	opts ...argtypes.PushOption,
) (*argtypes.ItemResult, error) {
	result, err := c.Push(ctx, dataset, []string{file}, opts...)
	if err != nil {
		return nil, err
	}
	if len(result.Items) != 1 {
		return nil, errors.NewDatasetError("push", dataset, errors.ErrInvalidInput).
			WithMessage("expected exactly one item result")
	}
	item := result.Items[0]
	return &item, nil
}
