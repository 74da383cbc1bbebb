package elf_loader

// This file contains the boundary between the decoder and its environment:
// opening a file, positioned reads of a byte range, and closing it again.

import (
	"bytes"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/exp/mmap"
)

// A read-only, randomly accessible view of an ELF file. A Source is owned by
// a single operation and must not be shared between concurrent calls.
type Source interface {
	io.ReaderAt
	io.Closer
	// Returns the total number of bytes available.
	Size() int64
}

// Opens a fresh Source for the file at a path. The loader opens one Source for
// the duration of Load, and the content readers open another for each call.
type Opener interface {
	Open(path string) (Source, error)
}

// An Opener backed by an afero file system. This is the default, using the
// OS file system.
type aferoOpener struct {
	fs afero.Fs
}

type aferoSource struct {
	file afero.File
	size int64
}

func (s *aferoSource) ReadAt(p []byte, offset int64) (int, error) {
	return s.file.ReadAt(p, offset)
}

func (s *aferoSource) Close() error {
	return s.file.Close()
}

func (s *aferoSource) Size() int64 {
	return s.size
}

func (o *aferoOpener) Open(path string) (Source, error) {
	f, e := o.fs.Open(path)
	if e != nil {
		return nil, ioError("open", path, e)
	}
	info, e := f.Stat()
	if e != nil {
		f.Close()
		return nil, ioError("stat", path, e)
	}
	return &aferoSource{
		file: f,
		size: info.Size(),
	}, nil
}

// An Opener that memory-maps the file rather than issuing read calls.
type mmapOpener struct{}

type mmapSource struct {
	*mmap.ReaderAt
}

func (s mmapSource) Size() int64 {
	return int64(s.Len())
}

func (mmapOpener) Open(path string) (Source, error) {
	r, e := mmap.Open(path)
	if e != nil {
		return nil, ioError("mmap", path, e)
	}
	return mmapSource{r}, nil
}

// Serves an in-memory image. Every Open returns an independent reader over
// the same (never modified) bytes.
type memoryOpener struct {
	raw []byte
}

type memorySource struct {
	*bytes.Reader
}

func (memorySource) Close() error {
	return nil
}

func (o *memoryOpener) Open(path string) (Source, error) {
	return memorySource{bytes.NewReader(o.raw)}, nil
}

// Reads exactly length bytes at the given offset. The range is checked
// against the source size before any I/O takes place, so corrupt offsets or
// sizes surface as ErrTruncated rather than as oversized allocations.
func readRange(src Source, path string, offset, length uint64) ([]byte,
	error) {
	end := offset + length
	if end < offset {
		return nil, errors.Wrapf(ErrTruncated, "range at offset 0x%x with "+
			"length %d overflows", offset, length)
	}
	size := src.Size()
	if (size < 0) || (end > uint64(size)) {
		return nil, errors.Wrapf(ErrTruncated, "range 0x%x-0x%x is past the "+
			"end of the %d byte file", offset, end, size)
	}
	buffer := make([]byte, length)
	if length == 0 {
		return buffer, nil
	}
	n, e := src.ReadAt(buffer, int64(offset))
	if n == len(buffer) {
		// ReaderAt may report io.EOF along with a complete read.
		return buffer, nil
	}
	if (e != nil) && (e != io.EOF) {
		return nil, ioError("read", path, e)
	}
	return nil, errors.Wrapf(ErrTruncated, "read %d of %d bytes at offset "+
		"0x%x", n, length, offset)
}

// Closes src and returns the error an operation should report: e itself if
// the close succeeds, the close failure if e is nil, or both combined.
func closeSource(src Source, path string, e error) error {
	closeError := src.Close()
	if closeError == nil {
		return e
	}
	closeError = ioError("close", path, closeError)
	if e == nil {
		return closeError
	}
	return multierror.Append(e, closeError)
}
