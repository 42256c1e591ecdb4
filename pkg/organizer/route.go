package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CollisionPolicy decides what happens when the destination file exists.
type CollisionPolicy string

const (
	// Overwrite replaces the existing file.
	Overwrite CollisionPolicy = "overwrite"
	// Skip leaves the source where it is.
	Skip CollisionPolicy = "skip"
	// Rename appends " (n)" to the file name until it is free.
	Rename CollisionPolicy = "rename"
	// Fail aborts the run with ErrCollision.
	Fail CollisionPolicy = "fail"
)

// ErrCollision is returned under the Fail policy.
var ErrCollision = errors.New("destination already exists")

// ParseCollisionPolicy accepts overwrite, skip, rename or fail. Empty means Overwrite.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Overwrite, nil
	case Overwrite, Skip, Rename, Fail:
		return p, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q (want overwrite, skip, rename or fail)", s)
	}
}

// --- Overridable rename (used for testing) ---

var renameFunc = os.Rename

// router maps tag tuples to directories below root, creating them on first use.
type router struct {
	root    string
	dryRun  bool
	folders map[string]bool
	created int
	log     logrus.FieldLogger
}

func newRouter(root string, dryRun bool, log logrus.FieldLogger) *router {
	return &router{
		root:    filepath.Clean(root),
		dryRun:  dryRun,
		folders: make(map[string]bool),
		log:     log,
	}
}

// Route descends one directory per tag and returns the final directory.
func (r *router) Route(tags []string) (string, error) {
	target := r.root
	for _, tag := range tags {
		target = filepath.Join(target, tag)
		if r.folders[target] {
			continue
		}
		if !r.dryRun {
			made, err := genFolder(target)
			if err != nil {
				return "", err
			}
			if made {
				r.created++
				r.log.WithField("dir", target).Debug("created directory")
			}
		}
		r.folders[target] = true
	}
	return target, nil
}

// genFolder creates path unless it already exists and reports whether it did.
func genFolder(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err == nil {
		if !fi.IsDir() {
			return false, errors.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "stat %s", path)
	}

	if err := os.Mkdir(path, os.ModePerm); err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "create directory %s", path)
	}
	return true, nil
}

// move moves src into dir under its own name. It returns the final path and
// false when the file was left in place.
func move(src, dir string, policy CollisionPolicy) (string, bool, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	if filepath.Clean(src) == dst {
		return dst, false, nil
	}

	if _, err := os.Lstat(dst); err == nil {
		switch policy {
		case Skip:
			return dst, false, nil
		case Fail:
			return dst, false, errors.Wrapf(ErrCollision, "move %s to %s", src, dst)
		case Rename:
			dst, err = freeName(dst)
			if err != nil {
				return "", false, err
			}
		}
	} else if !os.IsNotExist(err) {
		return "", false, errors.Wrapf(err, "stat %s", dst)
	}

	if err := renameFunc(src, dst); err != nil {
		return "", false, errors.Wrapf(err, "move %s to %s", src, dst)
	}
	return dst, true, nil
}

// freeName returns the first "name (n).ext" next to path that does not exist.
func freeName(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", errors.Wrapf(err, "stat %s", candidate)
		}
	}
}
