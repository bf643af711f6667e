// Package block is the lowest storage wrapper: it reads and writes
// fixed-size blocks from a file. It is an external collaborator to the
// buffer pool, record store, and B+ tree index — those components only
// depend on the Handle contract below, never on the implementation
// details of how bytes reach disk.
package block

import (
	"fmt"
	"io"
	"os"
)

// PageSize is the fixed block size for this deployment.
const PageSize = 4096

var (
	ErrFileNotFound        = fmt.Errorf("block: file not found")
	ErrFileHandleNotInit   = fmt.Errorf("block: file handle not initialized")
	ErrWriteFailed         = fmt.Errorf("block: write failed")
	ErrReadNonExistingPage = fmt.Errorf("block: read of non-existing page")
)

// Handle is a bound, open database file plus its size bookkeeping, mirroring
// the distilled spec's `handle{file_name, total_pages, cur_pos}` contract.
type Handle struct {
	FileName   string
	TotalPages int
	CurPos     int64

	file *os.File
}

// Create creates a brand-new, empty backing file, truncating any existing
// contents, and returns a handle bound to it.
func Create(name string) (*Handle, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("block: create %q: %w", name, err)
	}
	return &Handle{FileName: name, TotalPages: 0, file: f}, nil
}

// Open binds a handle to an existing file, computing TotalPages from its
// current size. It is not an error for the file to be empty.
func Open(name string) (*Handle, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("block: open %q: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Handle{
		FileName:   name,
		TotalPages: int(info.Size() / PageSize),
		file:       f,
	}, nil
}

// Close releases the underlying file descriptor.
func (h *Handle) Close() error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	return h.file.Close()
}

// Destroy removes the backing file entirely.
func Destroy(name string) error {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadBlock reads exactly one PageSize block into buf. Reading a page beyond
// end-of-file is a caller error; EnsureCapacity (or the zero-fill path in
// AppendEmptyBlock) is what grows the file.
func (h *Handle) ReadBlock(page int, buf []byte) error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	if len(buf) != PageSize {
		return fmt.Errorf("block: buf must be exactly %d bytes", PageSize)
	}
	if page < 0 || page >= h.TotalPages {
		return ErrReadNonExistingPage
	}
	off := int64(page) * PageSize
	n, err := h.file.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("block: read page %d: %w", page, err)
	}
	for i := n; i < PageSize; i++ {
		buf[i] = 0
	}
	h.CurPos = off + int64(n)
	return nil
}

// WriteBlock writes exactly one PageSize block at the given page offset.
// The page must already be covered by EnsureCapacity/AppendEmptyBlock.
func (h *Handle) WriteBlock(page int, buf []byte) error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	if len(buf) != PageSize {
		return fmt.Errorf("block: buf must be exactly %d bytes", PageSize)
	}
	if page < 0 || page >= h.TotalPages {
		return ErrReadNonExistingPage
	}
	off := int64(page) * PageSize
	n, err := h.file.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != PageSize {
		return ErrWriteFailed
	}
	h.CurPos = off + int64(n)
	return nil
}

// AppendEmptyBlock grows the file by one zero-filled page and returns its
// page number.
func (h *Handle) AppendEmptyBlock() (int, error) {
	if h == nil || h.file == nil {
		return 0, ErrFileHandleNotInit
	}
	page := h.TotalPages
	zero := make([]byte, PageSize)
	off := int64(page) * PageSize
	if _, err := h.file.WriteAt(zero, off); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	h.TotalPages++
	h.CurPos = off + PageSize
	return page, nil
}

// EnsureCapacity grows the file with zero pages, if necessary, until it
// covers at least n pages.
func (h *Handle) EnsureCapacity(n int) error {
	if h == nil || h.file == nil {
		return ErrFileHandleNotInit
	}
	for h.TotalPages < n {
		if _, err := h.AppendEmptyBlock(); err != nil {
			return err
		}
	}
	return nil
}
