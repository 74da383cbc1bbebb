package elf_loader

// This file contains the error values returned while loading an ELF file or
// reading content from it. Callers should match them using errors.Is.

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// Returned, possibly wrapped, when the environment fails to open, stat,
	// read or close the underlying file.
	ErrIO = errors.New("ELF I/O failure")
	// The first four bytes of the file aren't 0x7f 'E' 'L' 'F'.
	ErrBadMagic = errors.New("invalid ELF signature")
	// The class byte is neither 32-bit nor 64-bit.
	ErrUnsupportedCapacity = errors.New("unsupported ELF class")
	// A read would run past the end of the file, or returned fewer bytes than
	// requested.
	ErrTruncated = errors.New("truncated ELF file")
	// A table is internally inconsistent, e.g. an unterminated string or an
	// entry size smaller than the record it must hold.
	ErrMalformedTable = errors.New("malformed ELF table")
	// No segment or section matched a content lookup.
	ErrNotFound = errors.New("not found")
)

// Holds a failure reported by the environment while accessing an ELF file.
// errors.Is(e, ErrIO) is true for every IOError, and the error returned by
// the file system remains reachable through Unwrap.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func ioError(op, path string, e error) error {
	return &IOError{Op: op, Path: path, Err: e}
}
