// Package gdt builds and installs the global descriptor table.
//
// Descriptors are packed by hand into their hardware byte layout:
//
//	[limit 0:15][base 0:15][base 16:23][access][flags:4|limit 16:19][base 24:31]
//
// The encoder is a faithful bit packer and never rejects a combination of
// access and flag bits. Policy checks live in Entry.Validate.
package gdt

import "gopherterm/kernel"

// EntrySize is the size in bytes of an encoded descriptor.
const EntrySize = 8

// MaxLimit is the largest segment limit that fits in a descriptor.
const MaxLimit uint32 = 0xFFFFF

// Access byte bits.
const (
	AccessAccessed uint8 = 1 << iota
	AccessRW
	AccessDirConforming
	AccessExecutable
	AccessSegment

	AccessPresent uint8 = 1 << 7

	accessDPLShift = 5
)

// Flag nibble bits.
const (
	FlagReserved uint8 = 1 << iota
	FlagLongMode
	FlagSize
	FlagGranularity
)

var (
	errLimitTooLarge    = &kernel.Error{Module: "gdt", Message: "segment limit does not fit in 20 bits"}
	errSystemDescriptor = &kernel.Error{Module: "gdt", Message: "present descriptor is not a code or data segment"}
	errLongAndSize      = &kernel.Error{Module: "gdt", Message: "long mode and 32-bit size flags are mutually exclusive"}
	errLongData         = &kernel.Error{Module: "gdt", Message: "long mode flag set on a data segment"}
	errReservedFlag     = &kernel.Error{Module: "gdt", Message: "reserved flag bit set"}
)

// AccessDPL returns the access bits for the descriptor privilege level.
// Only the two low bits of level are used.
func AccessDPL(level uint8) uint8 {
	return (level & 0x3) << accessDPLShift
}

// Entry is the decoded form of a segment descriptor.
type Entry struct {
	Base   uint32
	Limit  uint32
	Access uint8

	// Flags holds the 4-bit flag nibble.
	Flags uint8
}

// EncodeEntry packs the descriptor fields. Limit bits above bit 19 and flag
// bits above bit 3 are discarded.
func EncodeEntry(base, limit uint32, access, flags uint8) [EntrySize]byte {
	return [EntrySize]byte{
		byte(limit),
		byte(limit >> 8),
		byte(base),
		byte(base >> 8),
		byte(base >> 16),
		access,
		(flags&0xf)<<4 | byte(limit>>16)&0xf,
		byte(base >> 24),
	}
}

// DecodeEntry unpacks an encoded descriptor.
func DecodeEntry(raw [EntrySize]byte) Entry {
	return Entry{
		Base:   uint32(raw[2]) | uint32(raw[3])<<8 | uint32(raw[4])<<16 | uint32(raw[7])<<24,
		Limit:  uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[6]&0xf)<<16,
		Access: raw[5],
		Flags:  raw[6] >> 4,
	}
}

// Encode packs the entry.
func (e Entry) Encode() [EntrySize]byte {
	return EncodeEntry(e.Base, e.Limit, e.Access, e.Flags)
}

// DPL returns the descriptor privilege level.
func (e Entry) DPL() uint8 {
	return (e.Access >> accessDPLShift) & 0x3
}

// Present reports whether the present bit is set.
func (e Entry) Present() bool {
	return e.Access&AccessPresent != 0
}

// Validate checks that a present entry describes a usable code or data
// segment. Entries without the present bit always pass.
func (e Entry) Validate() *kernel.Error {
	if e.Limit > MaxLimit {
		return errLimitTooLarge
	}

	if !e.Present() {
		return nil
	}

	switch {
	case e.Access&AccessSegment == 0:
		return errSystemDescriptor
	case e.Flags&FlagReserved != 0:
		return errReservedFlag
	case e.Flags&FlagLongMode != 0 && e.Flags&FlagSize != 0:
		return errLongAndSize
	case e.Flags&FlagLongMode != 0 && e.Access&AccessExecutable == 0:
		return errLongData
	}

	return nil
}
