package organizer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultJunkFiles are OS-generated files removed during cleanup. Names match
// exactly and case-sensitively.
var DefaultJunkFiles = []string{
	".DS_Store",
	".DS_Store?",
	".Spotlight-V100",
	".Trashes",
	"ehthumbs.db",
	"Thumbs.db",
}

// CleanupReport lists what Cleanup removed.
type CleanupReport struct {
	FilesRemoved []string
	DirsRemoved  []string
}

// Cleanup deletes junk files anywhere under root, then removes empty
// directories deepest first until a pass removes nothing. root itself is kept.
func Cleanup(root string, junk []string, log logrus.FieldLogger) (CleanupReport, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	root = filepath.Clean(root)
	var report CleanupReport

	denied := make(map[string]bool, len(junk))
	for _, name := range junk {
		denied[name] = true
	}

	err := walkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() || !denied[d.Name()] {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		log.WithField("path", path).Debug("removed junk file")
		report.FilesRemoved = append(report.FilesRemoved, path)
		return nil
	})
	if err != nil {
		return report, errors.Wrapf(err, "clean junk files under %s", root)
	}

	for {
		dirs, err := listDirsDeepestFirst(root)
		if err != nil {
			return report, err
		}

		removed := 0
		for _, dir := range dirs {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return report, errors.Wrapf(err, "read directory %s", dir)
			}
			if len(entries) > 0 {
				continue
			}
			if err := os.Remove(dir); err != nil {
				return report, errors.Wrapf(err, "remove directory %s", dir)
			}
			log.WithField("dir", dir).Debug("removed empty directory")
			report.DirsRemoved = append(report.DirsRemoved, dir)
			removed++
		}

		if removed == 0 {
			return report, nil
		}
	}
}

func listDirsDeepestFirst(root string) ([]string, error) {
	var dirs []string
	err := walkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}

	sep := string(filepath.Separator)
	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := strings.Count(dirs[i], sep), strings.Count(dirs[j], sep)
		if di != dj {
			return di > dj
		}
		return dirs[i] > dirs[j]
	})
	return dirs, nil
}
