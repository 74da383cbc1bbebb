package elf_loader

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// 0x7f 'E' 'L' 'F', read as a big-endian value.
	elfSignature = 0x7f454c46
	// The size of the identification block at the start of every ELF file.
	identificationSize = 16
)

// The contents of the 16-byte block at the start of an ELF file. It tells us
// whether the rest of the file uses the 32- or 64-bit layout and which byte
// order its fields use.
type Identification struct {
	Signature  uint32
	Class      Capacity
	Endianness Encoding
	Version    uint8
	OSABI      uint8
	ABIVersion uint8
}

func (n *Identification) String() string {
	return fmt.Sprintf("%s %s ELF, identification version %d, OS ABI %d",
		n.Class, n.Endianness, n.Version, n.OSABI)
}

// Returns the byte order used by every field after the identification block.
// Only the little-endian encoding value selects little-endian order.
func (n *Identification) ByteOrder() binary.ByteOrder {
	if n.Endianness == EncodingLSB {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Validates and decodes the identification block, which must hold at least 16
// bytes. Returns ErrBadMagic or ErrUnsupportedCapacity if the file can't be
// decoded further.
func parseIdentification(raw []byte) (*Identification, error) {
	if len(raw) < identificationSize {
		return nil, errors.Wrapf(ErrTruncated, "identification block is "+
			"only %d bytes", len(raw))
	}
	// The signature is always compared in big-endian order, regardless of
	// the file's own encoding.
	r := newFieldReader(raw[:identificationSize], binary.BigEndian)
	signature := r.u32()
	if signature != elfSignature {
		return nil, errors.Wrapf(ErrBadMagic, "got 0x%08x", signature)
	}
	class := Capacity(r.u8())
	if (class != Capacity32Bit) && (class != Capacity64Bit) {
		return nil, errors.Wrapf(ErrUnsupportedCapacity, "class %d",
			uint8(class))
	}
	toReturn := &Identification{
		Signature:  signature,
		Class:      class,
		Endianness: Encoding(r.u8()),
		Version:    r.u8(),
		OSABI:      r.u8(),
		ABIVersion: r.u8(),
	}
	if r.err != nil {
		return nil, r.err
	}
	return toReturn, nil
}
