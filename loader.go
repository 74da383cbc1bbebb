package elf_loader

// This file contains the loading pipeline: the identification block, then the
// header, then the section header table and section names, then the program
// header table. Each step depends on offsets decoded by the previous one, so
// the reads are issued strictly in order.

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Loads the ELF file at the given path. The returned ELFFile is complete: if
// any stage fails, only an error is returned.
func Load(path string, options ...Option) (*ELFFile, error) {
	config := defaultLoadConfig()
	for _, option := range options {
		option(config)
	}
	return load(path, config)
}

// Parses an in-memory ELF image. The image is copied, so the caller may reuse
// raw afterwards. Any opener set through the options is ignored.
func ParseELFFile(raw []byte, options ...Option) (*ELFFile, error) {
	config := defaultLoadConfig()
	for _, option := range options {
		option(config)
	}
	image := make([]byte, len(raw))
	copy(image, raw)
	config.opener = &memoryOpener{raw: image}
	return load("<memory>", config)
}

func load(path string, config *loadConfig) (toReturn *ELFFile, e error) {
	logger := config.logger.With(zap.String("path", path))
	src, e := config.opener.Open(path)
	if e != nil {
		return nil, e
	}
	defer func() {
		e = closeSource(src, path, e)
		if e != nil {
			toReturn = nil
		}
	}()

	raw, e := readRange(src, path, 0, identificationSize)
	if e != nil {
		return nil, errors.Wrap(e, "failed reading ELF identification")
	}
	ident, e := parseIdentification(raw)
	if e != nil {
		return nil, e
	}
	layout, e := layoutFor(ident.Class)
	if e != nil {
		return nil, e
	}
	order := ident.ByteOrder()
	logger.Debug("identified ELF file", zap.Stringer("class", ident.Class),
		zap.Stringer("encoding", ident.Endianness))

	f := &ELFFile{
		Ident:    *ident,
		Capacity: ident.Class,
		Encoding: ident.Endianness,
		path:     path,
		opener:   config.opener,
	}
	raw, e = readRange(src, path, identificationSize,
		uint64(layout.HeaderSize()))
	if e != nil {
		return nil, errors.Wrapf(e, "failed reading %s ELF header",
			layout.Capacity())
	}
	r := newFieldReader(raw, order)
	layout.DecodeHeader(r, f)
	if r.err != nil {
		return nil, errors.Wrapf(r.err, "failed decoding %s ELF header",
			layout.Capacity())
	}
	logger.Debug("decoded ELF header", zap.Stringer("type", f.Type),
		zap.Stringer("machine", f.Machine),
		zap.Uint64("entry", f.EntryPoint),
		zap.Uint64("phoff", f.ProgramHeaderOffset),
		zap.Uint16("phnum", f.ProgramHeaderEntries),
		zap.Uint64("shoff", f.SectionHeaderOffset),
		zap.Uint16("shnum", f.SectionHeaderEntries),
		zap.Uint16("shstrndx", f.SectionNamesTable))

	e = parseSectionHeaders(src, path, layout, order, f)
	if e != nil {
		return nil, e
	}
	logger.Debug("parsed section headers", zap.Int("count", len(f.Sections)))
	e = resolveSectionNames(src, path, f)
	if e != nil {
		return nil, e
	}
	e = parseProgramHeaders(src, path, layout, order, f)
	if e != nil {
		return nil, e
	}
	logger.Debug("parsed program headers", zap.Int("count", len(f.Segments)))
	return f, nil
}

// Returns the position of entry i in a table starting at offset with the
// given entry size, or an error if it would wrap around.
func tableEntryOffset(offset uint64, entrySize uint16, i int) (uint64,
	error) {
	position := offset + uint64(entrySize)*uint64(i)
	if position < offset {
		return 0, errors.Wrapf(ErrTruncated, "entry %d of the table at "+
			"offset 0x%x overflows", i, offset)
	}
	return position, nil
}

// Used during loading to fill in the Sections slice. A zero offset means the
// file has no section header table.
func parseSectionHeaders(src Source, path string, layout classLayout,
	order binary.ByteOrder, f *ELFFile) error {
	if f.SectionHeaderOffset == 0 {
		return nil
	}
	count := int(f.SectionHeaderEntries)
	if (count > 0) &&
		(int(f.SectionHeaderEntrySize) < layout.SectionHeaderSize()) {
		return errors.Wrapf(ErrMalformedTable, "section header entry size "+
			"%d is smaller than the %d byte record", f.SectionHeaderEntrySize,
			layout.SectionHeaderSize())
	}
	sections := make([]SectionHeader, 0, count)
	for i := 0; i < count; i++ {
		position, e := tableEntryOffset(f.SectionHeaderOffset,
			f.SectionHeaderEntrySize, i)
		if e != nil {
			return e
		}
		raw, e := readRange(src, path, position,
			uint64(f.SectionHeaderEntrySize))
		if e != nil {
			return errors.Wrapf(e, "failed reading section header %d", i)
		}
		r := newFieldReader(raw, order)
		header := layout.DecodeSectionHeader(r)
		if r.err != nil {
			return errors.Wrapf(r.err, "failed decoding section header %d", i)
		}
		sections = append(sections, header)
	}
	f.Sections = sections
	return nil
}

// Reads the section names table once and fills in the name of every section
// whose name index isn't 0. Does nothing if there are no sections, or if the
// header doesn't designate a names table.
func resolveSectionNames(src Source, path string, f *ELFFile) error {
	if (len(f.Sections) == 0) || (f.SectionNamesTable == 0) {
		return nil
	}
	index := int(f.SectionNamesTable)
	if index >= len(f.Sections) {
		return errors.Wrapf(ErrMalformedTable, "section names table index "+
			"%d is out of range for %d sections", index, len(f.Sections))
	}
	table := &(f.Sections[index])
	content, e := readRange(src, path, table.FileOffset, table.Size)
	if e != nil {
		return errors.Wrap(e, "couldn't read section names table")
	}
	for i := range f.Sections {
		s := &(f.Sections[i])
		if s.NameIndex == 0 {
			continue
		}
		name, e := readStringAtOffset(s.NameIndex, content)
		if e != nil {
			return errors.Wrapf(e, "couldn't read name of section %d", i)
		}
		s.Name = string(name)
		s.HasName = true
	}
	return nil
}

// Used during loading to fill in the Segments slice. A zero offset means the
// file has no program header table.
func parseProgramHeaders(src Source, path string, layout classLayout,
	order binary.ByteOrder, f *ELFFile) error {
	if f.ProgramHeaderOffset == 0 {
		return nil
	}
	count := int(f.ProgramHeaderEntries)
	if (count > 0) &&
		(int(f.ProgramHeaderEntrySize) < layout.ProgramHeaderSize()) {
		return errors.Wrapf(ErrMalformedTable, "program header entry size "+
			"%d is smaller than the %d byte record", f.ProgramHeaderEntrySize,
			layout.ProgramHeaderSize())
	}
	segments := make([]ProgramHeader, 0, count)
	for i := 0; i < count; i++ {
		position, e := tableEntryOffset(f.ProgramHeaderOffset,
			f.ProgramHeaderEntrySize, i)
		if e != nil {
			return e
		}
		raw, e := readRange(src, path, position,
			uint64(f.ProgramHeaderEntrySize))
		if e != nil {
			return errors.Wrapf(e, "failed reading program header %d", i)
		}
		r := newFieldReader(raw, order)
		header := layout.DecodeProgramHeader(r)
		if r.err != nil {
			return errors.Wrapf(r.err, "failed decoding program header %d", i)
		}
		segments = append(segments, header)
	}
	f.Segments = segments
	return nil
}
