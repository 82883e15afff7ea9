// Package items builds registerable upload items from resolved local files.
package items

import (
	"path/filepath"
	"strconv"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
	"github.com/argus-vision/argus-go/internal/pathing"
)

// Flags carries the per-batch media options applied to every built slot.
type Flags struct {
	AsFrames        bool
	FPS             int
	ExtractViews    bool
	PreserveFolders bool
}

// Build packages each resolved file into an UploadItem with exactly one media
// slot. Input order is preserved and each slot is named after the file's
// zero-based index within this call.
//
// All preconditions are checked before any item is built: every file must be
// an absolute path to an existing regular file and rootPath must be an
// existing directory. A single violation fails the whole batch with no
// partial results.
func Build(
	fsys fs.Filesystem,
	files []string,
	rootPath, imposedPath string,
	flags Flags,
) ([]argtypes.UploadItem, error) {
	if err := pathing.ValidateImposedPath(imposedPath); err != nil {
		return nil, err
	}

	rootInfo, err := fsys.Stat(rootPath)
	if err != nil || !rootInfo.IsDir() {
		return nil, errors.NewPathError("buildItems", rootPath, errors.ErrPrecondition).
			WithMessage("root path must be an existing directory")
	}

	// Fail fast: validate the whole batch before building anything.
	for _, file := range files {
		if !filepath.IsAbs(file) {
			return nil, errors.NewPathError("buildItems", file, errors.ErrPrecondition).
				WithMessage("file must be an absolute path")
		}
		info, err := fsys.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			return nil, errors.NewPathError("buildItems", file, errors.ErrPrecondition).
				WithMessage("file must be an existing regular file")
		}
	}

	built := make([]argtypes.UploadItem, 0, len(files))
	for index, file := range files {
		remotePath, err := pathing.DeriveItemPath(fsys, file, rootPath, imposedPath, flags.PreserveFolders)
		if err != nil {
			return nil, err
		}

		name := filepath.Base(file)
		built = append(built, argtypes.UploadItem{
			Name: name,
			Path: remotePath,
			Slots: []argtypes.MediaSlot{
				{
					SlotName:     strconv.Itoa(index),
					FileName:     name,
					AsFrames:     flags.AsFrames,
					FPS:          flags.FPS,
					ExtractViews: flags.ExtractViews,
				},
			},
		})
	}

	return built, nil
}
