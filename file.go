package seedfs

import (
	"io"
	"io/fs"
	"os"
	"path"
	"sync"
	"time"

	"github.com/absfs/absfs"

	"github.com/absfs/seedfs/seedpack"
)

// seedFile holds the logical content of a file in memory. Content is
// loaded when the file is opened and stored when it is closed or synced.
type seedFile struct {
	sfs  *FS
	name string
	flag int
	perm fs.FileMode
	info fs.FileInfo // stored file, nil until first store

	data  []byte
	pos   int64
	kind  seedpack.Kind
	dirty bool

	closed bool
	mu     sync.Mutex
}

var _ absfs.File = (*seedFile)(nil)

func (f *seedFile) readable() bool {
	return f.flag&os.O_WRONLY == 0
}

func (f *seedFile) writable() bool {
	return f.flag&(os.O_WRONLY|os.O_RDWR) != 0
}

// Name returns the name the file was opened with
func (f *seedFile) Name() string {
	return f.name
}

// Kind returns the generator kind of the last loaded or stored container,
// or zero when the file is stored as-is.
func (f *seedFile) Kind() seedpack.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kind
}

func (f *seedFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.readAt(p, f.pos, "read")
	f.pos += int64(n)
	return n, err
}

func (f *seedFile) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off < 0 {
		return 0, &fs.PathError{Op: "readat", Path: f.name, Err: ErrInvalidSeek}
	}
	return f.readAt(p, off, "readat")
}

func (f *seedFile) readAt(p []byte, off int64, op string) (int, error) {
	if err := f.check(op); err != nil {
		return 0, err
	}
	if !f.readable() {
		return 0, &fs.PathError{Op: op, Path: f.name, Err: ErrNotReadable}
	}
	if off >= int64(len(f.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *seedFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flag&os.O_APPEND != 0 {
		f.pos = int64(len(f.data))
	}
	n, err := f.writeAt(p, f.pos, "write")
	f.pos += int64(n)
	return n, err
}

func (f *seedFile) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flag&os.O_APPEND != 0 {
		return 0, &fs.PathError{Op: "writeat", Path: f.name, Err: fs.ErrInvalid}
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "writeat", Path: f.name, Err: ErrInvalidSeek}
	}
	return f.writeAt(p, off, "writeat")
}

func (f *seedFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *seedFile) writeAt(p []byte, off int64, op string) (int, error) {
	if err := f.check(op); err != nil {
		return 0, err
	}
	if !f.writable() {
		return 0, &fs.PathError{Op: op, Path: f.name, Err: ErrNotWritable}
	}
	if end := off + int64(len(p)); end > int64(len(f.data)) {
		f.resize(end)
	}
	copy(f.data[off:], p)
	f.dirty = true
	return len(p), nil
}

// resize grows with zeros or shrinks the content to size bytes.
func (f *seedFile) resize(size int64) {
	if size <= int64(len(f.data)) {
		f.data = f.data[:size]
		return
	}
	if size <= int64(cap(f.data)) {
		tail := f.data[len(f.data):size]
		clear(tail)
		f.data = f.data[:size]
		return
	}
	grown := make([]byte, size, size+size/4)
	copy(grown, f.data)
	f.data = grown
}

func (f *seedFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("truncate"); err != nil {
		return err
	}
	if !f.writable() {
		return &fs.PathError{Op: "truncate", Path: f.name, Err: ErrNotWritable}
	}
	if size < 0 {
		return &fs.PathError{Op: "truncate", Path: f.name, Err: fs.ErrInvalid}
	}
	f.resize(size)
	f.dirty = true
	return nil
}

func (f *seedFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("seek"); err != nil {
		return 0, err
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.pos + offset
	case io.SeekEnd:
		abs = int64(len(f.data)) + offset
	default:
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: ErrInvalidSeek}
	}
	if abs < 0 {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: ErrInvalidSeek}
	}
	f.pos = abs
	return abs, nil
}

func (f *seedFile) Stat() (fs.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := &fileInfo{
		name:    path.Base(f.name),
		size:    int64(len(f.data)),
		mode:    f.perm.Perm(),
		modTime: time.Now(),
	}
	if f.info != nil {
		info.mode = f.info.Mode()
		info.modTime = f.info.ModTime()
	}
	return info, nil
}

// Sync stores pending writes without closing the file
func (f *seedFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("sync"); err != nil {
		return err
	}
	return f.flush()
}

// Close stores pending writes. A failed store leaves the previous
// content in place.
func (f *seedFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.name, Err: fs.ErrClosed}
	}
	f.closed = true
	err := f.flush()
	f.data = nil
	return err
}

func (f *seedFile) flush() error {
	if !f.dirty {
		return nil
	}
	perm := f.perm
	if f.info != nil {
		perm = f.info.Mode().Perm()
	}
	kind, err := f.sfs.store(f.name, f.data, perm)
	if err != nil {
		return err
	}
	f.kind = kind
	f.dirty = false
	if _, info, err := f.sfs.resolve(f.name); err == nil {
		f.info = info
	}
	return nil
}

func (f *seedFile) check(op string) error {
	if f.closed {
		return &fs.PathError{Op: op, Path: f.name, Err: fs.ErrClosed}
	}
	return nil
}

func (f *seedFile) Readdir(int) ([]fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "readdir", Path: f.name, Err: fs.ErrInvalid}
}

func (f *seedFile) Readdirnames(int) ([]string, error) {
	return nil, &fs.PathError{Op: "readdirnames", Path: f.name, Err: fs.ErrInvalid}
}

// fileInfo reports the logical view of a stored file.
type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileInfo) Sys() any           { return nil }
