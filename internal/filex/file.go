// Package filex contains the filesystem checks the daemon performs on
// worktrees and data directories. All access goes through the package
// level fs so tests can swap in afero.NewMemMapFs.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

var (
	ErrNotDir      = errors.New("not a directory")
	ErrNotExist    = errors.New("directory does not exist")
	ErrNotWritable = errors.New("directory is not writable")
	ErrNoFreeName  = errors.New("no free name")
)

// EnsureDir creates path and its parents. It fails when path exists
// and is not a directory.
func EnsureDir(path string) error {
	fi, err := fs.Stat(path)
	switch {
	case err == nil && !fi.IsDir():
		return fmt.Errorf("%s: %w", path, ErrNotDir)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := fs.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// EnsureSubDir creates base/name and returns its path.
func EnsureSubDir(base, name string) (string, error) {
	dir := filepath.Join(base, name)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Exists reports whether anything exists at path.
func Exists(path string) (bool, error) {
	return afero.Exists(fs, path)
}

// CheckWritableDir verifies that path is an existing directory the
// process can create files in.
func CheckWritableDir(path string) error {
	fi, err := fs.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotDir)
	}

	f, err := afero.TempFile(fs, path, ".reposync-check-")
	if err != nil {
		return fmt.Errorf("%s: %w", path, ErrNotWritable)
	}
	name := f.Name()
	_ = f.Close()
	_ = fs.Remove(name)
	return nil
}

// MaxUniqueTries bounds the suffixes UniqueChild tries.
const MaxUniqueTries = 1000

// UniqueChild returns the first of parent/name, parent/name-1, ...
// parent/name-999 that neither exists on disk nor is reported taken.
func UniqueChild(parent, name string, taken func(path string) bool) (string, error) {
	for i := 0; i < MaxUniqueTries; i++ {
		candidate := name
		if i > 0 {
			candidate = name + "-" + strconv.Itoa(i)
		}
		p := filepath.Join(parent, candidate)
		if taken != nil && taken(p) {
			continue
		}
		ok, err := Exists(p)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		if !ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s/%s: %w", parent, name, ErrNoFreeName)
}

// IsWithin reports whether path equals root or lies inside it. Both are
// expected to be clean absolute paths.
func IsWithin(root, path string) bool {
	if root == path {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
