package elf_loader

// This file contains utility functions which aren't associated with specific
// ELF structures.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Extracts the unsigned integer of the given width, in bits, starting at the
// offset in data. Only 8, 16, 32 and 64-bit widths are valid. The value is
// assembled as an integer, so 64-bit fields never lose precision.
func decodeField(data []byte, offset, width int, order binary.ByteOrder) (
	uint64, error) {
	size := width / 8
	if (offset < 0) || (offset+size > len(data)) {
		return 0, errors.Wrapf(ErrTruncated, "%d-bit field at offset %d "+
			"exceeds %d byte buffer", width, offset, len(data))
	}
	b := data[offset : offset+size]
	switch width {
	case 8:
		return uint64(b[0]), nil
	case 16:
		return uint64(order.Uint16(b)), nil
	case 32:
		return uint64(order.Uint32(b)), nil
	case 64:
		return order.Uint64(b), nil
	}
	return 0, errors.Errorf("invalid field width: %d bits", width)
}

// Reads consecutive fields from a fixed-size record. The first error is
// retained and makes every later read return 0, so a decode routine can read
// all of its fields and check err once at the end.
type fieldReader struct {
	data   []byte
	order  binary.ByteOrder
	offset int
	err    error
}

func newFieldReader(data []byte, order binary.ByteOrder) *fieldReader {
	return &fieldReader{
		data:  data,
		order: order,
	}
}

func (r *fieldReader) read(width int) uint64 {
	if r.err != nil {
		return 0
	}
	v, e := decodeField(r.data, r.offset, width, r.order)
	if e != nil {
		r.err = e
		return 0
	}
	r.offset += width / 8
	return v
}

func (r *fieldReader) u8() uint8 {
	return uint8(r.read(8))
}

func (r *fieldReader) u16() uint16 {
	return uint16(r.read(16))
}

func (r *fieldReader) u32() uint32 {
	return uint32(r.read(32))
}

func (r *fieldReader) u64() uint64 {
	return r.read(64)
}

// Reads a 32-bit field and widens it to 64 bits.
func (r *fieldReader) u32Wide() uint64 {
	return r.read(32)
}

// Returns a string starting at the offset in the data, or an error if the
// offset is invalid or the string isn't terminated. This can be used to
// extract strings from string table content.
func readStringAtOffset(offset uint32, data []byte) ([]byte, error) {
	if uint64(offset) >= uint64(len(data)) {
		return nil, errors.Wrapf(ErrMalformedTable, "invalid string offset: "+
			"%d", offset)
	}
	endIndex := offset
	for data[endIndex] != 0 {
		endIndex++
		if uint64(endIndex) >= uint64(len(data)) {
			return nil, errors.Wrapf(ErrMalformedTable, "unterminated string "+
				"starting at offset %d", offset)
		}
	}
	return data[offset:endIndex], nil
}
