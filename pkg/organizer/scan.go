package organizer

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ListFiles returns the regular files under root. Without recursive only the
// immediate children are listed. Order is lexical per directory.
func ListFiles(root string, recursive bool) ([]string, error) {
	root = filepath.Clean(root)

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, errors.Wrapf(err, "read directory %s", root)
		}
		files := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
		return files, nil
	}

	files := make([]string, 0, 128)
	err := walkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	return files, nil
}

// walkDir is filepath.WalkDir that follows a symlinked root. Paths passed to
// fn stay under root as given.
func walkDir(root string, fn fs.WalkDirFunc) error {
	real, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	return filepath.WalkDir(real, func(path string, d fs.DirEntry, walkErr error) error {
		if rel, err := filepath.Rel(real, path); err == nil {
			path = filepath.Join(root, rel)
		}
		return fn(path, d, walkErr)
	})
}
