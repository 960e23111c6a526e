package seedfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// dirFS is an absfs.Filer rooted at a host directory. Names are resolved
// with normalizePath, so they cannot escape the root.
type dirFS struct {
	root string
}

// NewDirFS returns a filer over the existing directory root
func NewDirFS(root string) (absfs.Filer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: root, Err: fs.ErrInvalid}
	}
	return &dirFS{root: abs}, nil
}

func (d *dirFS) path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(normalizePath(name)))
}

func (d *dirFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	f, err := os.OpenFile(d.path(name), flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *dirFS) Mkdir(name string, perm fs.FileMode) error {
	return os.Mkdir(d.path(name), perm)
}

func (d *dirFS) Remove(name string) error {
	return os.Remove(d.path(name))
}

func (d *dirFS) Rename(oldpath, newpath string) error {
	return os.Rename(d.path(oldpath), d.path(newpath))
}

func (d *dirFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(d.path(name))
}

func (d *dirFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(d.path(name), mode)
}

func (d *dirFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return os.Chtimes(d.path(name), atime, mtime)
}

func (d *dirFS) Chown(name string, uid, gid int) error {
	return os.Chown(d.path(name), uid, gid)
}
