// Package mmap maps snapshot files read-only into memory.
//
// Unix uses mmap(2) and requests read-ahead with madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile. Other platforms fall back to reading the
// file. A Mapping is safe for concurrent reads; slices obtained from it
// must not be used after Close.
package mmap
