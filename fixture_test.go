package elf_loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Describes one section of a synthesized ELF image. If names is set, the
// section's content is generated from the other sections' names and padded
// with zeros to size.
type testSection struct {
	name   string
	typ    SectionHeaderType
	flags  SectionHeaderFlags
	offset uint64
	data   []byte
	names  bool
	size   uint64
}

type testSegment struct {
	typ    ProgramHeaderType
	flags  ProgramHeaderFlags
	offset uint64
	vaddr  uint64
	data   []byte
}

// Describes a synthesized ELF image. The null section is added in front of
// sections automatically, so sections[i] ends up at index i+1.
type testImage struct {
	class    Capacity
	encoding Encoding
	fileType ELFFileType
	machine  MachineType
	entry    uint64
	flags    uint32
	phoff    uint64
	shoff    uint64
	sections []testSection
	segments []testSegment
	// The image is padded with zeros to at least this many bytes.
	size uint64
}

// The counterpart of fieldReader, for building test images.
type fieldWriter struct {
	data   []byte
	order  binary.ByteOrder
	class  Capacity
	offset int
}

func (w *fieldWriter) u16(v uint16) {
	w.order.PutUint16(w.data[w.offset:], v)
	w.offset += 2
}

func (w *fieldWriter) u32(v uint32) {
	w.order.PutUint32(w.data[w.offset:], v)
	w.offset += 4
}

func (w *fieldWriter) u64(v uint64) {
	w.order.PutUint64(w.data[w.offset:], v)
	w.offset += 8
}

// Writes an address-sized value: 32 bits in 32-bit images, 64 otherwise.
func (w *fieldWriter) addr(v uint64) {
	if w.class == Capacity32Bit {
		w.u32(uint32(v))
		return
	}
	w.u64(v)
}

func (m *testImage) order() binary.ByteOrder {
	if m.encoding == EncodingMSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (m *testImage) sizes() (header, programHeader, sectionHeader int) {
	if m.class == Capacity32Bit {
		return 52, 32, 40
	}
	return 64, 56, 64
}

// Returns the index of the names section, or 0 if there isn't one.
func (m *testImage) namesIndex() int {
	for i := range m.sections {
		if m.sections[i].names {
			return i + 1
		}
	}
	return 0
}

// Returns the names table content and the name index of every section.
func (m *testImage) namesTable() ([]byte, []uint32) {
	table := []byte{0}
	indices := make([]uint32, len(m.sections))
	for i, s := range m.sections {
		if s.name == "" {
			continue
		}
		indices[i] = uint32(len(table))
		table = append(table, []byte(s.name)...)
		table = append(table, 0)
	}
	return table, indices
}

func (m *testImage) sectionContent(s *testSection, names []byte) []byte {
	if !s.names {
		return s.data
	}
	content := append([]byte{}, names...)
	for uint64(len(content)) < s.size {
		content = append(content, 0)
	}
	return content
}

func (m *testImage) build() []byte {
	headerSize, phentsize, shentsize := m.sizes()
	names, nameIndices := m.namesTable()
	shnum := len(m.sections) + 1

	total := uint64(headerSize)
	grow := func(end uint64) {
		if end > total {
			total = end
		}
	}
	grow(m.size)
	if m.phoff != 0 {
		grow(m.phoff + uint64(phentsize*len(m.segments)))
	}
	if m.shoff != 0 {
		grow(m.shoff + uint64(shentsize*shnum))
	}
	for i := range m.sections {
		s := &(m.sections[i])
		grow(s.offset + uint64(len(m.sectionContent(s, names))))
	}
	for _, p := range m.segments {
		grow(p.offset + uint64(len(p.data)))
	}

	raw := make([]byte, total)
	copy(raw, []byte{0x7f, 'E', 'L', 'F', byte(m.class), byte(m.encoding), 1})
	w := &fieldWriter{data: raw, order: m.order(), class: m.class, offset: 16}
	w.u16(uint16(m.fileType))
	w.u16(uint16(m.machine))
	w.u32(uint32(VersionCurrent))
	w.addr(m.entry)
	w.addr(m.phoff)
	w.addr(m.shoff)
	w.u32(m.flags)
	w.u16(uint16(headerSize))
	w.u16(uint16(phentsize))
	w.u16(uint16(len(m.segments)))
	w.u16(uint16(shentsize))
	w.u16(uint16(shnum))
	w.u16(uint16(m.namesIndex()))

	for i, p := range m.segments {
		copy(raw[p.offset:], p.data)
		if m.phoff == 0 {
			continue
		}
		w.offset = int(m.phoff) + i*phentsize
		w.u32(uint32(p.typ))
		if m.class == Capacity64Bit {
			w.u32(uint32(p.flags))
		}
		w.addr(p.offset)
		w.addr(p.vaddr)
		w.addr(p.vaddr)
		w.addr(uint64(len(p.data)))
		w.addr(uint64(len(p.data)))
		if m.class == Capacity32Bit {
			w.u32(uint32(p.flags))
		}
		w.addr(0x1000)
	}

	for i := range m.sections {
		s := &(m.sections[i])
		content := m.sectionContent(s, names)
		copy(raw[s.offset:], content)
		if m.shoff == 0 {
			continue
		}
		// Skip over the null section, which stays all zeros.
		w.offset = int(m.shoff) + (i+1)*shentsize
		w.u32(nameIndices[i])
		w.u32(uint32(s.typ))
		w.addr(uint64(s.flags))
		w.addr(0)
		w.addr(s.offset)
		w.addr(uint64(len(content)))
		w.u32(0)
		w.u32(0)
		w.addr(1)
		w.addr(0)
	}
	return raw
}

var commonSectionNames = []string{".interp", ".note.ABI-tag", ".hash",
	".dynsym", ".dynstr", ".rel.dyn", ".init", ".text", ".fini", ".rodata",
	".data", ".bss"}

// Returns the sections for an image with count sections, including the null
// section, where the section names table is at namesIndex. Section content
// is laid out from dataOffset onwards, and the names table follows it.
func numberedSections(count, namesIndex int, dataOffset uint64) []testSection {
	sections := make([]testSection, 0, count-1)
	offset := dataOffset
	for i := 1; i < count; i++ {
		if i == namesIndex {
			continue
		}
		name := fmt.Sprintf(".x%d", i)
		if i <= len(commonSectionNames) {
			name = commonSectionNames[i-1]
		}
		data := []byte(fmt.Sprintf("contents of section %d", i))
		sections = append(sections, testSection{
			name:   name,
			typ:    BitsSection,
			flags:  2,
			offset: offset,
			data:   data,
		})
		offset += 64
	}
	names := testSection{
		name:   ".shstrtab",
		typ:    StringTableSection,
		offset: offset,
		names:  true,
	}
	if namesIndex <= 0 {
		return sections
	}
	sections = append(sections[:namesIndex-1],
		append([]testSection{names}, sections[namesIndex-1:]...)...)
	return sections
}

// A 32-bit little-endian ARM executable matching the layout of a small
// embedded firmware image.
func armImage() *testImage {
	vendor := make([]byte, 108)
	copy(vendor, "vendor segment")
	vendor[36] = 115
	return &testImage{
		class:    Capacity32Bit,
		encoding: EncodingLSB,
		fileType: ELFTypeExecutable,
		machine:  MachineTypeARM,
		entry:    2130706433,
		phoff:    52,
		shoff:    491832,
		segments: []testSegment{
			{typ: LoadableSegment, flags: 5, offset: 0x1000, vaddr: 0x80000000,
				data: []byte("text segment")},
			{typ: LoadableSegment, flags: 6, offset: 0x1100, vaddr: 0x80001000,
				data: []byte("data segment")},
			{typ: 0x7000f001, flags: 4, offset: 0x1200, data: vendor},
			{typ: 0x7000f001, flags: 4, offset: 0x1300,
				data: []byte("duplicate vendor segment")},
		},
		sections: numberedSections(24, 21, 0x2000),
	}
}

// A 64-bit little-endian x86-64 executable.
func amd64Image() *testImage {
	segments := make([]testSegment, 8)
	for i := range segments {
		segments[i] = testSegment{
			typ:    LoadableSegment,
			flags:  4,
			offset: 0x1000 + uint64(i)*0x100,
			vaddr:  0x400000 + uint64(i)*0x1000,
			data:   []byte(fmt.Sprintf("segment %d", i)),
		}
	}
	segments[0].typ = ProgramHeaderSegment
	segments[1].typ = InterpreterSegment
	segments[1].data = []byte("/lib64/ld-linux-x86-64.so.2\x00")
	segments[5].typ = DynamicLinkingSegment
	segments[6].typ = NoteSegment
	segments[7].typ = 0x6474e551
	return &testImage{
		class:    Capacity64Bit,
		encoding: EncodingLSB,
		fileType: ELFTypeExecutable,
		machine:  MachineTypeX86_64,
		entry:    0x4025e0,
		phoff:    64,
		shoff:    181128,
		segments: segments,
		sections: numberedSections(30, 27, 0x3000),
	}
}

// A 32-bit big-endian SPARC executable whose names table sits at the end of
// the section list.
func sparcImage() *testImage {
	sections := numberedSections(34, 33, 0x1000)
	sections[32].offset = 180668
	sections[32].size = 289
	return &testImage{
		class:    Capacity32Bit,
		encoding: EncodingMSB,
		fileType: ELFTypeExecutable,
		machine:  MachineTypeSPARC,
		entry:    0x10074,
		phoff:    52,
		shoff:    180960,
		segments: []testSegment{
			{typ: LoadableSegment, flags: 5, offset: 0x800, vaddr: 0x10000,
				data: []byte("sparc text")},
		},
		sections: sections,
	}
}

// Writes the image into a fresh in-memory file system and returns it along
// with the file's path.
func memFile(t *testing.T, raw []byte) (afero.Fs, string) {
	fs := afero.NewMemMapFs()
	path := "/bin/test.elf"
	require.NoError(t, afero.WriteFile(fs, path, raw, 0755))
	return fs, path
}

// Writes the image to a real temporary file and returns its path.
func tempFile(t *testing.T, raw []byte) string {
	path := filepath.Join(t.TempDir(), "test.elf")
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), path, raw, 0755))
	return path
}

type readRecord struct {
	offset int64
	length int
}

// Wraps another Opener, recording every read and counting opens and closes.
type recordingOpener struct {
	inner  Opener
	mutex  sync.Mutex
	reads  []readRecord
	opens  int
	closes int
}

type recordingSource struct {
	Source
	opener *recordingOpener
}

func (s *recordingSource) ReadAt(p []byte, offset int64) (int, error) {
	s.opener.mutex.Lock()
	s.opener.reads = append(s.opener.reads, readRecord{offset, len(p)})
	s.opener.mutex.Unlock()
	return s.Source.ReadAt(p, offset)
}

func (s *recordingSource) Close() error {
	s.opener.mutex.Lock()
	s.opener.closes++
	s.opener.mutex.Unlock()
	return s.Source.Close()
}

func (o *recordingOpener) Open(path string) (Source, error) {
	src, e := o.inner.Open(path)
	if e != nil {
		return nil, e
	}
	o.mutex.Lock()
	o.opens++
	o.mutex.Unlock()
	return &recordingSource{Source: src, opener: o}, nil
}

// Returns the end of the furthest byte range read so far.
func (o *recordingOpener) maxReadEnd() int64 {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	var end int64
	for _, r := range o.reads {
		if r.offset+int64(r.length) > end {
			end = r.offset + int64(r.length)
		}
	}
	return end
}

func (o *recordingOpener) readAtOffset(offset int64) bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	for _, r := range o.reads {
		if r.offset == offset {
			return true
		}
	}
	return false
}

func recordingMemOpener(raw []byte) *recordingOpener {
	return &recordingOpener{inner: &memoryOpener{raw: raw}}
}

// A source whose Close fails on demand.
type faultySource struct {
	Source
	closeError error
}

func (s *faultySource) Close() error {
	if s.closeError != nil {
		return s.closeError
	}
	return s.Source.Close()
}

// Opens sources over raw that fail reads at or past failFrom, and optionally
// fail to close. A negative failFrom leaves reads alone.
type faultyOpener struct {
	raw        []byte
	failFrom   int64
	closeError error
}

type offsetFaultySource struct {
	Source
	failFrom int64
}

func (s *offsetFaultySource) ReadAt(p []byte, offset int64) (int, error) {
	if (s.failFrom >= 0) && (offset >= s.failFrom) {
		return 0, io.ErrUnexpectedEOF
	}
	return s.Source.ReadAt(p, offset)
}

func (o *faultyOpener) Open(path string) (Source, error) {
	src, _ := (&memoryOpener{raw: o.raw}).Open(path)
	return &faultySource{
		Source:     &offsetFaultySource{Source: src, failFrom: o.failFrom},
		closeError: o.closeError,
	}, nil
}
