package elf_loader

// This file contains the layout of 64-bit ELF headers and tables. It's largely
// analagous to elf32_format.go, but addresses, offsets and sizes are genuine
// 64-bit fields, and program headers order their fields differently.

const (
	elf64HeaderSize        = 48
	elf64SectionHeaderSize = 64
	elf64ProgramHeaderSize = 56
)

type elf64Layout struct{}

func (elf64Layout) Capacity() Capacity {
	return Capacity64Bit
}

func (elf64Layout) HeaderSize() int {
	return elf64HeaderSize
}

func (elf64Layout) SectionHeaderSize() int {
	return elf64SectionHeaderSize
}

func (elf64Layout) ProgramHeaderSize() int {
	return elf64ProgramHeaderSize
}

// The flags field stays 32 bits wide even in 64-bit files.
func (elf64Layout) DecodeHeader(r *fieldReader, f *ELFFile) {
	f.Type = ELFFileType(r.u16())
	f.Machine = MachineType(r.u16())
	f.Version = Version(r.u32())
	f.EntryPoint = r.u64()
	f.ProgramHeaderOffset = r.u64()
	f.SectionHeaderOffset = r.u64()
	f.Flags = r.u32()
	f.HeaderSize = r.u16()
	f.ProgramHeaderEntrySize = r.u16()
	f.ProgramHeaderEntries = r.u16()
	f.SectionHeaderEntrySize = r.u16()
	f.SectionHeaderEntries = r.u16()
	f.SectionNamesTable = r.u16()
}

func (elf64Layout) DecodeSectionHeader(r *fieldReader) SectionHeader {
	var h SectionHeader
	h.NameIndex = r.u32()
	h.Type = SectionHeaderType(r.u32())
	h.Flags = SectionHeaderFlags(r.u64())
	h.VirtualAddress = r.u64()
	h.FileOffset = r.u64()
	h.Size = r.u64()
	h.LinkedIndex = r.u32()
	h.Info = r.u32()
	h.Align = r.u64()
	h.EntrySize = r.u64()
	return h
}

// Unlike the 32-bit layout, flags immediately follow the type so that the
// 64-bit fields stay aligned.
func (elf64Layout) DecodeProgramHeader(r *fieldReader) ProgramHeader {
	var h ProgramHeader
	h.Type = ProgramHeaderType(r.u32())
	h.Flags = ProgramHeaderFlags(r.u32())
	h.FileOffset = r.u64()
	h.VirtualAddress = r.u64()
	h.PhysicalAddress = r.u64()
	h.FileSize = r.u64()
	h.MemorySize = r.u64()
	h.Align = r.u64()
	return h
}
