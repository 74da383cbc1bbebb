// This package contains functions for loading ELF files and reading the
// contents of their sections and segments.
package elf_loader

// This file contains the layout of 32-bit ELF headers and tables.

const (
	elf32HeaderSize        = 36
	elf32SectionHeaderSize = 40
	elf32ProgramHeaderSize = 32
)

type elf32Layout struct{}

func (elf32Layout) Capacity() Capacity {
	return Capacity32Bit
}

func (elf32Layout) HeaderSize() int {
	return elf32HeaderSize
}

func (elf32Layout) SectionHeaderSize() int {
	return elf32SectionHeaderSize
}

func (elf32Layout) ProgramHeaderSize() int {
	return elf32ProgramHeaderSize
}

// The entry point and table offsets are 32 bits wide here, and get widened.
func (elf32Layout) DecodeHeader(r *fieldReader, f *ELFFile) {
	f.Type = ELFFileType(r.u16())
	f.Machine = MachineType(r.u16())
	f.Version = Version(r.u32())
	f.EntryPoint = r.u32Wide()
	f.ProgramHeaderOffset = r.u32Wide()
	f.SectionHeaderOffset = r.u32Wide()
	f.Flags = r.u32()
	f.HeaderSize = r.u16()
	f.ProgramHeaderEntrySize = r.u16()
	f.ProgramHeaderEntries = r.u16()
	f.SectionHeaderEntrySize = r.u16()
	f.SectionHeaderEntries = r.u16()
	f.SectionNamesTable = r.u16()
}

func (elf32Layout) DecodeSectionHeader(r *fieldReader) SectionHeader {
	var h SectionHeader
	h.NameIndex = r.u32()
	h.Type = SectionHeaderType(r.u32())
	h.Flags = SectionHeaderFlags(r.u32Wide())
	h.VirtualAddress = r.u32Wide()
	h.FileOffset = r.u32Wide()
	h.Size = r.u32Wide()
	h.LinkedIndex = r.u32()
	h.Info = r.u32()
	h.Align = r.u32Wide()
	h.EntrySize = r.u32Wide()
	return h
}

// In 32-bit files the flags come near the end of the record.
func (elf32Layout) DecodeProgramHeader(r *fieldReader) ProgramHeader {
	var h ProgramHeader
	h.Type = ProgramHeaderType(r.u32())
	h.FileOffset = r.u32Wide()
	h.VirtualAddress = r.u32Wide()
	h.PhysicalAddress = r.u32Wide()
	h.FileSize = r.u32Wide()
	h.MemorySize = r.u32Wide()
	h.Flags = ProgramHeaderFlags(r.u32())
	h.Align = r.u32Wide()
	return h
}
