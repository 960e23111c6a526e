package seedfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/absfs/absfs"
	"go.uber.org/zap"

	"github.com/absfs/seedfs/seedpack"
)

// Open opens a file for reading
func (sfs *FS) Open(name string) (absfs.File, error) {
	return sfs.OpenFile(name, os.O_RDONLY, 0)
}

// Create creates or truncates a file for writing
func (sfs *FS) Create(name string) (absfs.File, error) {
	return sfs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// OpenFile opens a file with specified flags and permissions. Regular files
// are served from memory: existing content is regenerated and verified when
// the file is opened, and writes are stored when the file is closed.
func (sfs *FS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	stored, info, err := sfs.resolve(name)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if exists && info.IsDir() {
		return sfs.base.OpenFile(stored, flag, perm)
	}

	switch {
	case !exists && flag&os.O_CREATE == 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case exists && flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	}

	f := &seedFile{
		sfs:  sfs,
		name: name,
		flag: flag,
		perm: perm,
		info: info,
	}
	truncate := flag&os.O_TRUNC != 0 && f.writable()
	if exists && !truncate {
		data, kind, err := sfs.load(stored)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		f.data, f.kind = data, kind
	}
	// New and truncated files are stored even if never written.
	f.dirty = f.writable() && (!exists || truncate)
	if flag&os.O_APPEND != 0 {
		f.pos = int64(len(f.data))
	}
	return f, nil
}

// WriteFile stores data under name, replacing any previous content
func (sfs *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	_, err := sfs.store(name, data, perm)
	return err
}

// ReadFile returns the regenerated and verified content of name
func (sfs *FS) ReadFile(name string) ([]byte, error) {
	stored, _, err := sfs.resolve(name)
	if err != nil {
		return nil, err
	}
	data, _, err := sfs.load(stored)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return data, nil
}

// Inspect parses the container stored for name without regenerating it
func (sfs *FS) Inspect(name string) (*seedpack.Container, error) {
	stored, _, err := sfs.resolve(name)
	if err != nil {
		return nil, err
	}
	raw, err := sfs.readBase(stored)
	if err != nil {
		return nil, err
	}
	if !seedpack.IsContainer(raw) {
		return nil, &fs.PathError{Op: "inspect", Path: name, Err: ErrNotContainer}
	}
	c, err := seedpack.UnmarshalContainer(raw)
	if err != nil {
		return nil, &fs.PathError{Op: "inspect", Path: name, Err: err}
	}
	return c, nil
}

// Mkdir creates a directory
func (sfs *FS) Mkdir(name string, perm fs.FileMode) error {
	return sfs.base.Mkdir(name, perm)
}

// Remove removes a file or directory
func (sfs *FS) Remove(name string) error {
	stored, _, err := sfs.resolve(name)
	if err != nil {
		return err
	}
	return sfs.base.Remove(stored)
}

// Rename renames a file, keeping the container extension on stored containers
func (sfs *FS) Rename(oldpath, newpath string) error {
	stored, _, err := sfs.resolve(oldpath)
	if err != nil {
		return err
	}
	if stored != oldpath {
		newpath = AddExtension(newpath)
	}
	return sfs.base.Rename(stored, newpath)
}

// Stat returns file information. Containers report the name they were
// written under and their original size.
func (sfs *FS) Stat(name string) (fs.FileInfo, error) {
	stored, info, err := sfs.resolve(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() || !(HasSeedExtension(stored) || sfs.config.AutoDetect) {
		return info, nil
	}
	c, err := sfs.peek(stored)
	if err != nil || c == nil {
		// Unreadable containers are reported as stored; Open surfaces the error.
		return info, nil
	}
	logical := path.Base(name)
	if stored != name {
		logical, _ = StripExtension(path.Base(stored))
	}
	return &fileInfo{
		name:    logical,
		size:    int64(c.OriginalSize),
		mode:    info.Mode(),
		modTime: info.ModTime(),
	}, nil
}

// Chmod changes the mode of the stored file
func (sfs *FS) Chmod(name string, mode fs.FileMode) error {
	stored, _, err := sfs.resolve(name)
	if err != nil {
		return err
	}
	return sfs.base.Chmod(stored, mode)
}

// Chtimes changes the access and modification times of the stored file
func (sfs *FS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	stored, _, err := sfs.resolve(name)
	if err != nil {
		return err
	}
	return sfs.base.Chtimes(stored, atime, mtime)
}

// Chown changes the owner of the stored file
func (sfs *FS) Chown(name string, uid, gid int) error {
	stored, _, err := sfs.resolve(name)
	if err != nil {
		return err
	}
	return sfs.base.Chown(stored, uid, gid)
}

// ReadDir reads directory contents sorted by name
func (sfs *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	f, err := sfs.base.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(infos))
	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		entry := fs.FileInfoToDirEntry(info)
		entryName := info.Name()
		if sfs.config.StripExtension && !info.IsDir() {
			if stripped, ok := StripExtension(entryName); ok {
				entryName = stripped
				entry = &renamedDirEntry{DirEntry: entry, name: stripped}
			}
		}
		// name.seed shadows a plain name left by another writer
		if seen[entryName] {
			continue
		}
		seen[entryName] = true
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// renamedDirEntry wraps a DirEntry with a different name
type renamedDirEntry struct {
	fs.DirEntry
	name string
}

func (e *renamedDirEntry) Name() string {
	return e.name
}

// resolve maps a logical name to the stored one, preferring name.seed.
func (sfs *FS) resolve(name string) (string, fs.FileInfo, error) {
	if sfs.config.StripExtension && !HasSeedExtension(name) {
		stored := AddExtension(name)
		if info, err := sfs.base.Stat(stored); err == nil && !info.IsDir() {
			return stored, info, nil
		}
	}
	info, err := sfs.base.Stat(name)
	if err != nil {
		return name, nil, err
	}
	return name, info, nil
}

// readBase reads a stored file in full.
func (sfs *FS) readBase(stored string) ([]byte, error) {
	f, err := sfs.base.OpenFile(stored, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// peek parses the container stored under name, or returns nil when the file
// does not start with a container header.
func (sfs *FS) peek(stored string) (*seedpack.Container, error) {
	f, err := sfs.base.OpenFile(stored, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ok, err := DetectContainer(f)
	if err != nil || !ok {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return seedpack.UnmarshalContainer(raw)
}

// load returns the logical content of a stored file. Files carrying the
// container extension must hold a valid container. Other files are served
// as stored unless AutoDetect finds a container header.
func (sfs *FS) load(stored string) ([]byte, seedpack.Kind, error) {
	raw, err := sfs.readBase(stored)
	if err != nil {
		return nil, 0, err
	}

	isSeed := HasSeedExtension(stored)
	if !isSeed && !(sfs.config.AutoDetect && seedpack.IsContainer(raw)) {
		return raw, 0, nil
	}

	c, err := seedpack.UnmarshalContainer(raw)
	if err != nil {
		if !isSeed {
			sfs.logger.Warn("serving file with malformed container header as stored",
				zap.String("name", stored), zap.Error(err))
			return raw, 0, nil
		}
		return nil, 0, err
	}
	data, err := sfs.decompressor.Decompress(c)
	if err != nil {
		sfs.logger.Warn("container failed to regenerate",
			zap.String("name", stored), zap.Stringer("kind", c.Kind()), zap.Error(err))
		return nil, 0, err
	}
	sfs.recordLoad(len(raw), len(data))
	sfs.logger.Debug("loaded",
		zap.String("name", stored),
		zap.Stringer("kind", c.Kind()),
		zap.Int("stored", len(raw)),
		zap.Int("size", len(data)))
	return data, c.Kind(), nil
}

// store writes data under name, as a container at name.seed unless the
// file is skipped. The counterpart left by a previous store is removed.
func (sfs *FS) store(name string, data []byte, perm fs.FileMode) (seedpack.Kind, error) {
	target, payload := name, data
	var kind seedpack.Kind

	reason := sfs.skipReason(name, data)
	if reason == "" {
		c, err := sfs.compressor.Compress(data)
		if err != nil {
			return 0, &fs.PathError{Op: "write", Path: name, Err: err}
		}
		wire, err := c.MarshalBinary()
		if err != nil {
			return 0, &fs.PathError{Op: "write", Path: name, Err: err}
		}
		target, payload, kind = AddExtension(name), wire, c.Kind()
	}

	if err := sfs.writeBase(target, payload, perm); err != nil {
		return 0, err
	}
	if other := sfs.counterpart(name, target); other != "" {
		if err := sfs.base.Remove(other); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, err
		}
	}

	if reason != "" {
		sfs.recordSkip()
		sfs.logger.Debug("stored as-is", zap.String("name", name), zap.String("reason", reason), zap.Int("size", len(data)))
		return 0, nil
	}
	sfs.recordStore(kind, len(data), len(payload))
	sfs.logger.Debug("stored",
		zap.String("name", target),
		zap.Stringer("kind", kind),
		zap.Int("size", len(data)),
		zap.Int("stored", len(payload)))
	return kind, nil
}

// skipReason returns why data is stored without a container, or "".
func (sfs *FS) skipReason(name string, data []byte) string {
	switch {
	case HasSeedExtension(name):
		return ""
	case len(data) == 0:
		return "empty"
	case sfs.shouldSkip(name):
		return "skip pattern"
	case int64(len(data)) < sfs.config.MinSize:
		return "below minimum size"
	}
	if sfs.config.AutoDetect {
		if codec, ok := IsCompressed(data); ok {
			return "already " + codec.String()
		}
	}
	return ""
}

// counterpart returns the other spelling of name that a previous store may
// have left behind, or "" when there is none.
func (sfs *FS) counterpart(name, target string) string {
	if HasSeedExtension(name) {
		return ""
	}
	if target == name {
		return AddExtension(name)
	}
	return name
}

func (sfs *FS) writeBase(name string, data []byte, perm fs.FileMode) error {
	if perm == 0 {
		perm = 0666
	}
	f, err := sfs.base.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
