package elf_loader

// This file contains the constant tables used to interpret decoded ELF header
// fields, along with their textual forms.

import (
	"fmt"
)

// The ELF class, which determines the width of addresses and offsets in the
// file and so the layout of every header and table.
type Capacity uint8

const (
	CapacityNone  Capacity = 0
	Capacity32Bit Capacity = 1
	Capacity64Bit Capacity = 2
)

func (c Capacity) String() string {
	switch c {
	case CapacityNone:
		return "no class"
	case Capacity32Bit:
		return "32-bit"
	case Capacity64Bit:
		return "64-bit"
	}
	return fmt.Sprintf("unknown ELF class: %d", uint8(c))
}

// The byte order of every multi-byte field after the identification block.
type Encoding uint8

const (
	EncodingNone Encoding = 0
	EncodingLSB  Encoding = 1
	EncodingMSB  Encoding = 2
	EncodingLE            = EncodingLSB
	EncodingBE            = EncodingMSB
)

func (n Encoding) String() string {
	switch n {
	case EncodingNone:
		return "no encoding"
	case EncodingLSB:
		return "little-endian"
	case EncodingMSB:
		return "big-endian"
	}
	return fmt.Sprintf("unknown encoding: %d", uint8(n))
}

// The object file version, found both in the identification block and in the
// header proper.
type Version uint32

const (
	VersionNone    Version = 0
	VersionCurrent Version = 1
)

func (v Version) String() string {
	switch v {
	case VersionNone:
		return "invalid version"
	case VersionCurrent:
		return "current version"
	}
	return fmt.Sprintf("unknown version: %d", uint32(v))
}

type ELFFileType uint16

const (
	ELFTypeNone        ELFFileType = 0
	ELFTypeRelocatable ELFFileType = 1
	ELFTypeExecutable  ELFFileType = 2
	ELFTypeDynamic     ELFFileType = 3
	ELFTypeCore        ELFFileType = 4
	ELFTypeShared                  = ELFTypeDynamic
)

func (t ELFFileType) String() string {
	switch t {
	case ELFTypeNone:
		return "no file type"
	case ELFTypeRelocatable:
		return "relocatable file"
	case ELFTypeExecutable:
		return "executable file"
	case ELFTypeDynamic:
		return "shared file"
	case ELFTypeCore:
		return "core file"
	}
	if t >= 0xff00 {
		return fmt.Sprintf("processor-specific ELF type: 0x%04x", uint16(t))
	}
	return fmt.Sprintf("unknown ELF type: %d", uint16(t))
}

// Identifies the target instruction set. Values missing from the table below
// are still valid; they just don't have a name.
type MachineType uint16

const (
	MachineTypeNone      MachineType = 0
	MachineTypeM32       MachineType = 1
	MachineTypeSPARC     MachineType = 2
	MachineTypeX86       MachineType = 3
	MachineType68K       MachineType = 4
	MachineType88K       MachineType = 5
	MachineType860       MachineType = 7
	MachineTypeMIPS      MachineType = 8
	MachineTypeMIPSRS4BE MachineType = 10
	MachineTypePowerPC   MachineType = 0x14
	MachineTypePowerPC64 MachineType = 0x15
	MachineTypeARM       MachineType = 0x28
	MachineTypeSPARCV9   MachineType = 0x2b
	MachineTypeAMD64     MachineType = 0x3e
	MachineTypeARM64     MachineType = 0xb7
	MachineTypeRISCV     MachineType = 0xf3
	MachineTypeX86_64              = MachineTypeAMD64
	MachineTypeI386                = MachineTypeX86
)

var machineNames = map[MachineType]string{
	MachineTypeNone:      "NONE",
	MachineTypeM32:       "M32",
	MachineTypeSPARC:     "SPARC",
	MachineTypeX86:       "386",
	MachineType68K:       "68K",
	MachineType88K:       "88K",
	MachineType860:       "860",
	MachineTypeMIPS:      "MIPS",
	MachineTypeMIPSRS4BE: "MIPS_RS4_BE",
	MachineTypePowerPC:   "PPC",
	MachineTypePowerPC64: "PPC64",
	MachineTypeARM:       "ARM",
	MachineTypeSPARCV9:   "SPARCV9",
	MachineTypeAMD64:     "X86_64",
	MachineTypeARM64:     "AARCH64",
	MachineTypeRISCV:     "RISCV",
}

// Returns the short name of the machine type and true, or an empty string and
// false if the value isn't in the table.
func (t MachineType) Name() (string, bool) {
	name, ok := machineNames[t]
	return name, ok
}

func (t MachineType) String() string {
	if name, ok := machineNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown machine type: 0x%02x", uint16(t))
}

const (
	NullSegment           ProgramHeaderType = 0
	LoadableSegment       ProgramHeaderType = 1
	DynamicLinkingSegment ProgramHeaderType = 2
	InterpreterSegment    ProgramHeaderType = 3
	NoteSegment           ProgramHeaderType = 4
	ReservedSegment       ProgramHeaderType = 5
	ProgramHeaderSegment  ProgramHeaderType = 6
	TLSSegment            ProgramHeaderType = 7
)

type ProgramHeaderType uint32

func (ht ProgramHeaderType) String() string {
	switch ht {
	case NullSegment:
		return "unused segment"
	case LoadableSegment:
		return "loadable segment"
	case DynamicLinkingSegment:
		return "dynamic linking tables"
	case InterpreterSegment:
		return "interpreter path name segment"
	case NoteSegment:
		return "note segment"
	case ReservedSegment:
		return "reserved segment type"
	case ProgramHeaderSegment:
		return "program header table"
	case TLSSegment:
		return "thread-local storage segment"
	}
	t := uint32(ht)
	if t >= 0x80000000 {
		return fmt.Sprintf("invalid segment type: 0x%x", t)
	}
	if t >= 0x70000000 {
		return fmt.Sprintf("processor-specific segment: 0x%x", t)
	}
	if t >= 0x60000000 {
		return fmt.Sprintf("OS-specific segment: 0x%x", t)
	}
	return fmt.Sprintf("invalid segment type 0x%x", t)
}

type ProgramHeaderFlags uint32

func (t ProgramHeaderFlags) Executable() bool {
	return (t & 1) != 0
}

func (t ProgramHeaderFlags) Writable() bool {
	return (t & 2) != 0
}

func (t ProgramHeaderFlags) Readable() bool {
	return (t & 4) != 0
}

func (t ProgramHeaderFlags) String() string {
	var readStatus, writeStatus, execStatus string
	if !t.Executable() {
		execStatus = "not "
	}
	if !t.Writable() {
		writeStatus = "not "
	}
	if !t.Readable() {
		readStatus = "not "
	}
	return fmt.Sprintf("%sreadable, %swritable, %sexecutable", readStatus,
		writeStatus, execStatus)
}

const (
	NullSection                SectionHeaderType = 0
	BitsSection                SectionHeaderType = 1
	SymbolTableSection         SectionHeaderType = 2
	StringTableSection         SectionHeaderType = 3
	RelaSection                SectionHeaderType = 4
	HashSection                SectionHeaderType = 5
	DynamicLinkingTableSection SectionHeaderType = 6
	NoteSection                SectionHeaderType = 7
	UninitializedSection       SectionHeaderType = 8
	RelSection                 SectionHeaderType = 9
	ReservedSection            SectionHeaderType = 10
	DynamicLoaderSymbolSection SectionHeaderType = 11
)

type SectionHeaderType uint32

func (ht SectionHeaderType) String() string {
	switch ht {
	case NullSection:
		return "unused section"
	case BitsSection:
		return "bits section"
	case SymbolTableSection:
		return "symbol table"
	case StringTableSection:
		return "string table"
	case RelaSection:
		return "relocation entries with addends"
	case HashSection:
		return "symbol hash table"
	case DynamicLinkingTableSection:
		return "dynamic linking table"
	case NoteSection:
		return "note section"
	case UninitializedSection:
		return "uninitialized memory"
	case RelSection:
		return "relocation entries"
	case ReservedSection:
		return "reserved section"
	case DynamicLoaderSymbolSection:
		return "dynamic loader symbol table"
	}
	t := uint32(ht)
	if t >= 0x80000000 {
		return fmt.Sprintf("invalid section type: 0x%x", t)
	}
	if t >= 0x70000000 {
		return fmt.Sprintf("processor-specific section type: 0x%x", t)
	}
	if t >= 0x60000000 {
		return fmt.Sprintf("OS-specific section type: 0x%x", t)
	}
	return fmt.Sprintf("invalid section type: 0x%x", t)
}

// Section flags, widened to 64 bits for both classes.
type SectionHeaderFlags uint64

func (f SectionHeaderFlags) Writable() bool {
	return (f & 1) != 0
}

func (f SectionHeaderFlags) Allocated() bool {
	return (f & 2) != 0
}

func (f SectionHeaderFlags) Executable() bool {
	return (f & 4) != 0
}

func (f SectionHeaderFlags) String() string {
	var writeStatus, allocStatus, execStatus string
	if !f.Writable() {
		writeStatus = "not "
	}
	if !f.Allocated() {
		allocStatus = "not "
	}
	if !f.Executable() {
		execStatus = "not "
	}
	return fmt.Sprintf("%swritable, %sallocated, %sexecutable", writeStatus,
		allocStatus, execStatus)
}
