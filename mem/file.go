// Package mem provides an in-memory implementation of the twig.File
// interface, primarily for tests and examples.
package mem

import (
	"io"
	"sync"

	"github.com/dacapoday/twig"
)

// File is an in-memory implementation of the twig.File interface.
// It is safe for concurrent use by multiple goroutines.
//
// File requires no initialization - just declare and use:
//
//	var f File
//	f.WriteAt([]byte("hello"), 0)
//
// File also implements twig.Locker with a process-local exclusive lock,
// so two store handles sharing one File serialize their writes the same
// way two processes sharing one on-disk file would.
type File struct {
	rw   sync.RWMutex
	data []byte
	pos  int64
	lock sync.Mutex
}

var _ twig.File = new(File)
var _ twig.Locker = new(File)

// Close clears all data stored in the File and releases memory.
// After Close, the file size becomes 0.
// It is safe to write to the file again after closing.
func (file *File) Close() error {
	file.rw.Lock()
	file.data = nil
	file.pos = 0
	file.rw.Unlock()
	return nil
}

// Size returns the current size of the file in bytes.
func (file *File) Size() int64 {
	file.rw.RLock()
	defer file.rw.RUnlock()
	return int64(len(file.data))
}

// ReadAt reads len(p) bytes into p starting at byte offset off.
// It implements the io.ReaderAt interface.
func (file *File) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	file.rw.RLock()
	defer file.rw.RUnlock()

	if off >= int64(len(file.data)) {
		return 0, io.EOF
	}
	n = copy(p, file.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return
}

// WriteAt writes len(p) bytes from p starting at byte offset off.
// It implements the io.WriterAt interface.
//
// If the write position extends beyond the current file size, the file
// is grown and the gap is filled with zero bytes.
func (file *File) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	file.rw.Lock()
	defer file.rw.Unlock()

	if grow := off + int64(len(p)) - int64(len(file.data)); grow > 0 {
		file.data = append(file.data, make([]byte, grow)...)
	}
	n = copy(file.data[off:], p)
	return
}

// Seek sets the file position and returns it. ReadAt and WriteAt do not
// use the position. It implements the io.Seeker interface.
func (file *File) Seek(offset int64, whence int) (pos int64, err error) {
	file.rw.Lock()
	defer file.rw.Unlock()

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = file.pos + offset
	case io.SeekEnd:
		pos = int64(len(file.data)) + offset
	default:
		return 0, io.ErrUnexpectedEOF
	}
	if pos < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	file.pos = pos
	return
}

// Truncate changes the size of the file.
//
// If the new size is smaller than the current size, the extra data is
// discarded. If the new size is larger, the file is extended and the new
// space is filled with zero bytes.
func (file *File) Truncate(size int64) error {
	file.rw.Lock()
	defer file.rw.Unlock()

	if grow := size - int64(len(file.data)); grow > 0 {
		file.data = append(file.data, make([]byte, grow)...)
	} else {
		file.data = file.data[:size]
	}
	return nil
}

// Sync is a no-op for in-memory files.
// It exists only to satisfy the twig.File interface and always returns nil.
func (file *File) Sync() error {
	return nil
}

// Lock acquires the process-local exclusive lock, blocking until it is
// available. It stands in for the OS advisory lock of an on-disk file.
func (file *File) Lock() error {
	file.lock.Lock()
	return nil
}

// Unlock releases the process-local exclusive lock.
func (file *File) Unlock() error {
	file.lock.Unlock()
	return nil
}

// ReadFrom reads data from r until EOF and replaces the entire file
// content. It implements the io.ReaderFrom interface.
//
// ReadFrom returns the number of bytes read and any error encountered,
// except that io.EOF is not returned as an error.
func (file *File) ReadFrom(r io.Reader) (n int64, err error) {
	file.rw.Lock()
	defer file.rw.Unlock()

	data, err := io.ReadAll(r)
	file.data = data
	file.pos = 0
	n = int64(len(data))
	return
}

// WriteTo writes the entire file content to w.
// It implements the io.WriterTo interface.
func (file *File) WriteTo(w io.Writer) (n int64, err error) {
	file.rw.RLock()
	defer file.rw.RUnlock()

	c, err := w.Write(file.data)
	n = int64(c)
	return
}
