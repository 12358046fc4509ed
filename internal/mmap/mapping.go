package mmap

import (
	"io"
	"math"
	"os"
	"sync/atomic"
)

// Mapping is a read-only view of a whole snapshot file.
type Mapping struct {
	data    []byte
	release func([]byte) error
	closed  atomic.Bool
}

// Open maps path. Snapshots are decoded front to back right after loading,
// so the kernel is asked to read ahead.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	switch size := fi.Size(); {
	case size == 0:
		return &Mapping{}, nil
	case size > math.MaxInt:
		return nil, ErrTooLarge
	}

	data, release, err := osMap(f, int(fi.Size()))
	if err != nil {
		return nil, err
	}
	osReadAhead(data)
	return &Mapping{data: data, release: release}, nil
}

// Len is the file size.
func (m *Mapping) Len() int { return len(m.data) }

// Bytes returns the mapped file, or nil once closed.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Slice returns data[off:off+n] clamped to the file. It is nil once closed.
func (m *Mapping) Slice(off, n int64) []byte {
	data := m.Bytes()
	size := int64(len(data))
	off = min(max(off, 0), size)
	return data[off:min(off+max(n, 0), size)]
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. Later calls do nothing.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.release == nil {
		return nil
	}
	return m.release(m.data)
}
