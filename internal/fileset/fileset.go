// Package fileset expands include/exclude path lists into the concrete set of
// files to upload. Directory entries are walked recursively; exclusions are
// applied with the same expansion.
//
// The resolver is read-only with respect to the filesystem and idempotent for
// an unchanged tree.
package fileset

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/argus-vision/argus-go/errors"
)

// Resolve expands the include list into a flat, deduplicated set of files and
// removes everything the exclude list expands to. Directory entries recurse
// into all contained files; anything else is treated as a single file.
//
// The returned order carries no meaning; callers must not depend on it.
func Resolve(fsys fs.Filesystem, include, exclude []string) ([]string, error) {
	set := make(map[string]struct{})

	for _, entry := range include {
		files, err := expand(fsys, entry)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			set[f] = struct{}{}
		}
	}

	for _, entry := range exclude {
		files, err := expand(fsys, entry)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			delete(set, f)
		}
	}

	resolved := make([]string, 0, len(set))
	for f := range set {
		resolved = append(resolved, f)
	}
	// Deterministic iteration for internal consumers; not part of the contract.
	sort.Strings(resolved)
	return resolved, nil
}

// expand turns one include/exclude entry into the files it denotes.
// Directories recurse; non-directories (including paths that do not exist
// yet) pass through as a single cleaned path, so missing files surface later
// as item-builder precondition failures rather than silently vanishing here.
func expand(fsys fs.Filesystem, entry string) ([]string, error) {
	info, err := fsys.Stat(entry)
	if err != nil || !info.IsDir() {
		return []string{filepath.Clean(entry)}, nil
	}

	var files []string
	err = fsys.Walk(entry, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, filepath.Clean(p))
		return nil
	})
	if err != nil {
		return nil, errors.NewPathError("resolveFiles", entry, err).
			WithMessage("failed to walk directory")
	}
	return files, nil
}
