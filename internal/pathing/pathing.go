// Package pathing computes canonical remote folder paths for upload items.
// This includes imposed-path validation and the mapping from local filesystem
// layout to server-side folders.
//
// Remote paths are POSIX style and always /-rooted, independent of the local
// platform.
package pathing

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/argus-vision/argus-go/errors"
)

// ValidateImposedPath validates that an imposed remote path parses as a POSIX
// path. Returns ErrInvalidPath if it is malformed.
func ValidateImposedPath(imposed string) error {
	for _, r := range imposed {
		if r == 0x00 || (r < 0x20 && r != '\t') || r == 0x7f {
			return errors.NewPathError("validateImposedPath", imposed, errors.ErrInvalidPath).
				WithMessage("imposed path cannot contain control characters")
		}
	}
	if strings.Contains(imposed, "\\") {
		return errors.NewPathError("validateImposedPath", imposed, errors.ErrInvalidPath).
			WithMessage("imposed path must use forward slashes")
	}
	return nil
}

// DeriveItemPath returns the remote folder a local file is stored under.
//
// The file must be an absolute path to an existing regular file, rootPath an
// existing directory that is an ancestor of the file, and imposedPath a valid
// POSIX-style path. When preserveFolders is set, the file's folder structure
// below rootPath is mirrored under imposedPath; otherwise every file lands
// directly in imposedPath.
//
// The result is normalized: always a single leading slash, no trailing slash,
// and a bare current-directory result collapses to "/".
func DeriveItemPath(fsys fs.Filesystem, file, rootPath, imposedPath string, preserveFolders bool) (string, error) {
	if err := ValidateImposedPath(imposedPath); err != nil {
		return "", err
	}

	rootInfo, err := fsys.Stat(rootPath)
	if err != nil || !rootInfo.IsDir() {
		return "", errors.NewPathError("deriveItemPath", rootPath, errors.ErrPrecondition).
			WithMessage("root path must be an existing directory")
	}

	if !filepath.IsAbs(file) {
		return "", errors.NewPathError("deriveItemPath", file, errors.ErrPrecondition).
			WithMessage("file must be an absolute path")
	}
	fileInfo, err := fsys.Stat(file)
	if err != nil || !fileInfo.Mode().IsRegular() {
		return "", errors.NewPathError("deriveItemPath", file, errors.ErrPrecondition).
			WithMessage("file must be an existing regular file")
	}

	relFolder, err := filepath.Rel(rootPath, filepath.Dir(file))
	if err != nil || relFolder == ".." || strings.HasPrefix(relFolder, ".."+string(filepath.Separator)) {
		return "", errors.NewPathError("deriveItemPath", file, errors.ErrPrecondition).
			WithMessage("root path must be an ancestor of the file")
	}

	if preserveFolders {
		return path.Join("/", filepath.ToSlash(imposedPath), filepath.ToSlash(relFolder)), nil
	}
	return path.Join("/", filepath.ToSlash(imposedPath)), nil
}

// CommonRoot returns the deepest directory that is an ancestor of every path
// in the batch. All paths must be absolute.
func CommonRoot(files []string) (string, error) {
	if len(files) == 0 {
		return "", errors.NewError("commonRoot", errors.ErrPrecondition).
			WithMessage("no files to derive a root from")
	}

	for _, f := range files {
		if !filepath.IsAbs(f) {
			return "", errors.NewPathError("commonRoot", f, errors.ErrPrecondition).
				WithMessage("file must be an absolute path")
		}
	}

	root := filepath.Dir(filepath.Clean(files[0]))
	for _, f := range files[1:] {
		for !isAncestor(root, f) {
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}
	return root, nil
}

// isAncestor reports whether dir is an ancestor of (or equal to the parent of) p.
func isAncestor(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
