package elf_loader

// This file contains functions for reading the raw bytes of segments and
// sections from an already-loaded ELF file. Each call re-opens the file, so
// calls may run concurrently without sharing a handle.

import (
	"github.com/pkg/errors"
)

// Returns the FileSize bytes at the FileOffset of the first segment with the
// given type. Returns ErrNotFound if no program header has that type.
func (f *ELFFile) ReadSegment(t ProgramHeaderType) ([]byte, error) {
	h, ok := f.Segment(t)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "no segment of type 0x%x",
			uint32(t))
	}
	content, e := f.readContent(h.FileOffset, h.FileSize)
	if e != nil {
		return nil, errors.Wrapf(e, "failed reading %s", t)
	}
	return content, nil
}

// Returns the Size bytes at the FileOffset of the first section with the
// given name. Returns ErrNotFound if no section has that name.
func (f *ELFFile) ReadSection(name string) ([]byte, error) {
	h, ok := f.Section(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "no section named %q", name)
	}
	content, e := f.readContent(h.FileOffset, h.Size)
	if e != nil {
		return nil, errors.Wrapf(e, "failed reading section %s", name)
	}
	return content, nil
}

// Opens a new source for the file, reads the range and closes the source
// again, whether or not the read succeeded.
func (f *ELFFile) readContent(offset, size uint64) (content []byte,
	e error) {
	if f.opener == nil {
		return nil, errors.Wrap(ErrIO, "the ELF file wasn't created by Load")
	}
	src, e := f.opener.Open(f.path)
	if e != nil {
		return nil, e
	}
	defer func() {
		e = closeSource(src, f.path, e)
		if e != nil {
			content = nil
		}
	}()
	return readRange(src, f.path, offset, size)
}
