// Package scan walks one comparison root and produces a flat mapping from
// root-relative path to entry metadata.
//
// Symbolic links are never followed: a symlink is recorded as a file entry
// and its fingerprint hashes the link target string, not the referent.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"diffscope/internal/model"
)

var (
	// ErrRootNotFound means a comparison root does not exist. Fatal for
	// the whole run.
	ErrRootNotFound = errors.New("root path not found")
	// ErrRootUnreadable means a comparison root exists but cannot be
	// read. Fatal for the whole run.
	ErrRootUnreadable = errors.New("root path not readable")
)

// Result maps slash-separated root-relative paths to entries. Order is
// carried by the keys, not the map; callers sort as needed.
type Result map[string]model.Entry

// Scan walks root and returns every non-ignored file and directory under
// it. A root that is itself a single file yields one entry keyed by its
// base name. Per-entry read failures are recorded on the entry and do not
// abort the scan; only a missing or unreadable root fails the whole scan.
// The walk stops early when ctx is cancelled and partial results are
// discarded.
func Scan(ctx context.Context, root string, rules *Rules) (Result, error) {
	info, err := os.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}

	if !info.IsDir() {
		name := filepath.Base(root)
		return Result{name: entryFromInfo(name, info)}, nil
	}

	result := make(Result, 64)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			if rel == "." {
				return fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
			}
			if rules.Ignores(rel) {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			// Unreadable entry: keep it in the result with the error
			// attached instead of failing the scan.
			kind := model.KindFile
			if d != nil && d.IsDir() {
				kind = model.KindDir
			}
			result[rel] = model.Entry{RelPath: rel, Kind: kind, Err: err.Error()}
			if kind == model.KindDir {
				return fs.SkipDir
			}
			return nil
		}

		if rel == "." {
			return nil
		}
		if rules.Ignores(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			result[rel] = model.Entry{RelPath: rel, Err: infoErr.Error()}
			return nil
		}
		result[rel] = entryFromInfo(rel, fi)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return result, nil
}

func entryFromInfo(rel string, fi fs.FileInfo) model.Entry {
	kind := model.KindFile
	if fi.IsDir() {
		kind = model.KindDir
	}
	return model.Entry{
		RelPath: rel,
		Kind:    kind,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
}
