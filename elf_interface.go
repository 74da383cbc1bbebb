package elf_loader

// This file contains the interface used to decode either 32- or 64-bit ELF
// headers and tables. The layout is chosen once, right after the
// identification block is read, and the rest of the loader only talks to this
// interface.

import (
	"github.com/pkg/errors"
)

// Knows the byte layout of the header and table entries for one ELF class.
type classLayout interface {
	// Returns the class this layout decodes.
	Capacity() Capacity
	// Returns the size of the header following the identification block.
	HeaderSize() int
	// Returns the size of one section header record.
	SectionHeaderSize() int
	// Returns the size of one program header record.
	ProgramHeaderSize() int
	// Fills in the header fields of f from the bytes following the
	// identification block.
	DecodeHeader(r *fieldReader, f *ELFFile)
	// Decodes one section header record.
	DecodeSectionHeader(r *fieldReader) SectionHeader
	// Decodes one program header record.
	DecodeProgramHeader(r *fieldReader) ProgramHeader
}

// Returns the layout for the given class. Only the two defined classes have
// one; parseIdentification rejects every other value.
func layoutFor(c Capacity) (classLayout, error) {
	switch c {
	case Capacity32Bit:
		return elf32Layout{}, nil
	case Capacity64Bit:
		return elf64Layout{}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedCapacity, "no layout for class %d",
		uint8(c))
}
