package seedfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

var errDirNotEmpty = errors.New("directory not empty")

// normalizePath cleans name into a slash separated path relative to the
// root. Leading slashes and ".." elements cannot climb above the root, and
// the root itself is ".".
func normalizePath(name string) string {
	name = path.Clean("/" + filepath.ToSlash(name))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return name
}

// memNode is a file or directory of a memFS.
type memNode struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

func (n *memNode) info(name string) *fileInfo {
	return &fileInfo{
		name:    path.Base(name),
		size:    int64(len(n.data)),
		mode:    n.mode,
		modTime: n.modTime,
	}
}

// memFS is an in-memory absfs.Filer with directories
type memFS struct {
	nodes map[string]*memNode
	mu    sync.RWMutex
}

// NewMemFS creates a new in-memory filesystem
func NewMemFS() absfs.Filer {
	return &memFS{
		nodes: map[string]*memNode{
			".": {mode: fs.ModeDir | 0755, modTime: time.Now()},
		},
	}
}

func (mfs *memFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0

	n, exists := mfs.nodes[name]
	switch {
	case !exists && flag&os.O_CREATE == 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case !exists:
		if err := mfs.checkParent("open", name); err != nil {
			return nil, err
		}
		n = &memNode{mode: perm.Perm(), modTime: time.Now()}
		mfs.nodes[name] = n
	case flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	case n.mode.IsDir() && writable:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if writable && flag&os.O_TRUNC != 0 {
		n.data = nil
		n.modTime = time.Now()
	}

	h := &memHandle{mfs: mfs, name: name, node: n, flag: flag}
	if flag&os.O_APPEND != 0 {
		h.pos = int64(len(n.data))
	}
	return absfs.ExtendSeekable(h), nil
}

// checkParent requires the parent of name to be an existing directory.
// The caller holds mfs.mu.
func (mfs *memFS) checkParent(op, name string) error {
	parent, ok := mfs.nodes[path.Dir(name)]
	if !ok || !parent.mode.IsDir() {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return nil
}

// children lists the direct entries of dir sorted by name. The caller
// holds mfs.mu.
func (mfs *memFS) children(dir string) []string {
	var names []string
	for p := range mfs.nodes {
		if p != "." && p != dir && path.Dir(p) == dir {
			names = append(names, p)
		}
	}
	slices.Sort(names)
	return names
}

func (mfs *memFS) Mkdir(name string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if _, exists := mfs.nodes[name]; exists {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if err := mfs.checkParent("mkdir", name); err != nil {
		return err
	}
	mfs.nodes[name] = &memNode{mode: fs.ModeDir | perm.Perm(), modTime: time.Now()}
	return nil
}

func (mfs *memFS) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	n, exists := mfs.nodes[name]
	if !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if name == "." || n.mode.IsDir() && len(mfs.children(name)) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: errDirNotEmpty}
	}
	delete(mfs.nodes, name)
	return nil
}

// Rename moves a file or a directory with everything below it
func (mfs *memFS) Rename(oldpath, newpath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	oldpath = normalizePath(oldpath)
	newpath = normalizePath(newpath)

	n, exists := mfs.nodes[oldpath]
	if !exists || oldpath == "." {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}
	if oldpath == newpath {
		return nil
	}
	if target, ok := mfs.nodes[newpath]; ok && (target.mode.IsDir() || n.mode.IsDir()) {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	if strings.HasPrefix(newpath, oldpath+"/") {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrInvalid}
	}
	if err := mfs.checkParent("rename", newpath); err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}

	if n.mode.IsDir() {
		prefix := oldpath + "/"
		for p, child := range mfs.nodes {
			if strings.HasPrefix(p, prefix) {
				delete(mfs.nodes, p)
				mfs.nodes[newpath+"/"+p[len(prefix):]] = child
			}
		}
	}
	delete(mfs.nodes, oldpath)
	mfs.nodes[newpath] = n
	return nil
}

func (mfs *memFS) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	n, exists := mfs.nodes[name]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return n.info(name), nil
}

// Chmod changes file permissions, keeping the type bits
func (mfs *memFS) Chmod(name string, mode fs.FileMode) error {
	return mfs.update("chmod", name, func(n *memNode) {
		n.mode = n.mode.Type() | mode.Perm()
	})
}

// Chtimes changes the modification time; access times are not tracked
func (mfs *memFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return mfs.update("chtimes", name, func(n *memNode) {
		n.modTime = mtime
	})
}

// Chown is a no-op on existing files
func (mfs *memFS) Chown(name string, uid, gid int) error {
	return mfs.update("chown", name, func(*memNode) {})
}

func (mfs *memFS) update(op, name string, fn func(*memNode)) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	n, exists := mfs.nodes[name]
	if !exists {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	fn(n)
	return nil
}

// memHandle is an open file or directory of a memFS. Content lives in the
// shared node, so every access takes the filesystem lock.
type memHandle struct {
	mfs    *memFS
	name   string
	node   *memNode
	flag   int
	pos    int64
	dirPos int
	closed bool
}

func (h *memHandle) Name() string { return h.name }

func (h *memHandle) check(op string, write bool) error {
	switch {
	case h.closed:
		return &fs.PathError{Op: op, Path: h.name, Err: fs.ErrClosed}
	case h.node.mode.IsDir():
		return &fs.PathError{Op: op, Path: h.name, Err: fs.ErrInvalid}
	case write && h.flag&(os.O_WRONLY|os.O_RDWR) == 0:
		return &fs.PathError{Op: op, Path: h.name, Err: fs.ErrPermission}
	case !write && h.flag&os.O_WRONLY != 0:
		return &fs.PathError{Op: op, Path: h.name, Err: fs.ErrPermission}
	}
	return nil
}

func (h *memHandle) Read(p []byte) (int, error) {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	n, err := h.readAt(p, h.pos)
	h.pos += int64(n)
	return n, err
}

func (h *memHandle) ReadAt(p []byte, off int64) (int, error) {
	h.mfs.mu.RLock()
	defer h.mfs.mu.RUnlock()
	if off < 0 {
		return 0, &fs.PathError{Op: "readat", Path: h.name, Err: fs.ErrInvalid}
	}
	return h.readAt(p, off)
}

func (h *memHandle) readAt(p []byte, off int64) (int, error) {
	if err := h.check("read", false); err != nil {
		return 0, err
	}
	if off >= int64(len(h.node.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.node.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *memHandle) Write(p []byte) (int, error) {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	if h.flag&os.O_APPEND != 0 {
		h.pos = int64(len(h.node.data))
	}
	n, err := h.writeAt(p, h.pos)
	h.pos += int64(n)
	return n, err
}

func (h *memHandle) WriteAt(p []byte, off int64) (int, error) {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	if off < 0 {
		return 0, &fs.PathError{Op: "writeat", Path: h.name, Err: fs.ErrInvalid}
	}
	return h.writeAt(p, off)
}

func (h *memHandle) writeAt(p []byte, off int64) (int, error) {
	if err := h.check("write", true); err != nil {
		return 0, err
	}
	if end := off + int64(len(p)); end > int64(len(h.node.data)) {
		h.node.data = append(h.node.data, make([]byte, end-int64(len(h.node.data)))...)
	}
	copy(h.node.data[off:], p)
	h.node.modTime = time.Now()
	return len(p), nil
}

func (h *memHandle) Truncate(size int64) error {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	if err := h.check("truncate", true); err != nil {
		return err
	}
	if size < 0 {
		return &fs.PathError{Op: "truncate", Path: h.name, Err: fs.ErrInvalid}
	}
	if size <= int64(len(h.node.data)) {
		h.node.data = h.node.data[:size]
	} else {
		h.node.data = append(h.node.data, make([]byte, size-int64(len(h.node.data)))...)
	}
	h.node.modTime = time.Now()
	return nil
}

func (h *memHandle) Seek(offset int64, whence int) (int64, error) {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	if h.closed {
		return 0, &fs.PathError{Op: "seek", Path: h.name, Err: fs.ErrClosed}
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = h.pos + offset
	case io.SeekEnd:
		abs = int64(len(h.node.data)) + offset
	default:
		return 0, &fs.PathError{Op: "seek", Path: h.name, Err: fs.ErrInvalid}
	}
	if abs < 0 {
		return 0, &fs.PathError{Op: "seek", Path: h.name, Err: fs.ErrInvalid}
	}
	h.pos = abs
	return abs, nil
}

func (h *memHandle) Stat() (fs.FileInfo, error) {
	h.mfs.mu.RLock()
	defer h.mfs.mu.RUnlock()
	return h.node.info(h.name), nil
}

func (h *memHandle) Sync() error { return nil }

func (h *memHandle) Close() error {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	if h.closed {
		return &fs.PathError{Op: "close", Path: h.name, Err: fs.ErrClosed}
	}
	h.closed = true
	return nil
}

// Readdir lists directory entries in name order, n at a time when n > 0
func (h *memHandle) Readdir(n int) ([]fs.FileInfo, error) {
	h.mfs.mu.Lock()
	defer h.mfs.mu.Unlock()
	if h.closed {
		return nil, &fs.PathError{Op: "readdir", Path: h.name, Err: fs.ErrClosed}
	}
	if !h.node.mode.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: h.name, Err: fs.ErrInvalid}
	}

	names := h.mfs.children(h.name)
	if h.dirPos > len(names) {
		h.dirPos = len(names)
	}
	names = names[h.dirPos:]
	if n > 0 {
		if len(names) == 0 {
			return nil, io.EOF
		}
		names = names[:min(n, len(names))]
	}
	h.dirPos += len(names)

	infos := make([]fs.FileInfo, 0, len(names))
	for _, p := range names {
		infos = append(infos, h.mfs.nodes[p].info(p))
	}
	return infos, nil
}
