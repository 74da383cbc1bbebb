package elf_loader

// This file contains the class-independent representation of a loaded ELF
// file. Values from 32-bit files are widened so that callers only ever deal
// with one set of types.

import (
	"fmt"
)

// A single entry in the program header table, describing one segment.
type ProgramHeader struct {
	Type            ProgramHeaderType
	Flags           ProgramHeaderFlags
	FileOffset      uint64
	VirtualAddress  uint64
	PhysicalAddress uint64
	FileSize        uint64
	MemorySize      uint64
	Align           uint64
}

func (h *ProgramHeader) String() string {
	return fmt.Sprintf("%s segment at address 0x%x (offset 0x%x in file). "+
		"%d bytes in memory, %d in the file, alignment 0x%x. %s", h.Type,
		h.VirtualAddress, h.FileOffset, h.MemorySize, h.FileSize, h.Align,
		h.Flags)
}

// A single entry in the section header table. Name is only meaningful if
// HasName is set; the null section at index 0 never has a name.
type SectionHeader struct {
	NameIndex      uint32
	Type           SectionHeaderType
	Flags          SectionHeaderFlags
	VirtualAddress uint64
	FileOffset     uint64
	Size           uint64
	LinkedIndex    uint32
	Info           uint32
	Align          uint64
	EntrySize      uint64
	Name           string
	HasName        bool
}

func (h *SectionHeader) String() string {
	return fmt.Sprintf("%s section. %d bytes at address 0x%x (offset 0x%x in "+
		"file). Linked to section %d. %s", h.Type, h.Size, h.VirtualAddress,
		h.FileOffset, h.LinkedIndex, h.Flags)
}

// Tracks parsed data for a 32- or 64-bit ELF file. An ELFFile is never
// modified once Load returns it, so it may be shared between goroutines.
type ELFFile struct {
	Ident                  Identification
	Capacity               Capacity
	Encoding               Encoding
	Type                   ELFFileType
	Machine                MachineType
	Version                Version
	EntryPoint             uint64
	ProgramHeaderOffset    uint64
	SectionHeaderOffset    uint64
	Flags                  uint32
	HeaderSize             uint16
	ProgramHeaderEntrySize uint16
	ProgramHeaderEntries   uint16
	SectionHeaderEntrySize uint16
	SectionHeaderEntries   uint16
	SectionNamesTable      uint16
	Segments               []ProgramHeader
	Sections               []SectionHeader

	// Used by the content readers to re-open the file.
	path   string
	opener Opener
}

func (f *ELFFile) String() string {
	return fmt.Sprintf("%s %s ELF %s for %s, entry point 0x%x. %d segments, "+
		"%d sections", f.Capacity, f.Encoding, f.Type, f.Machine,
		f.EntryPoint, len(f.Segments), len(f.Sections))
}

// Returns the path the file was loaded from.
func (f *ELFFile) Path() string {
	return f.path
}

// Returns a copy of the first program header with the given type. Later
// headers with the same type are ignored. The bool is false if there is no
// such header.
func (f *ELFFile) Segment(t ProgramHeaderType) (ProgramHeader, bool) {
	for _, h := range f.Segments {
		if h.Type == t {
			return h, true
		}
	}
	return ProgramHeader{}, false
}

// Returns a copy of the first section header with the given name. Sections
// without a resolved name never match.
func (f *ELFFile) Section(name string) (SectionHeader, bool) {
	for _, h := range f.Sections {
		if h.HasName && (h.Name == name) {
			return h, true
		}
	}
	return SectionHeader{}, false
}
