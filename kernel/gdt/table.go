package gdt

import (
	"io"
	"unsafe"

	"gopherterm/kernel"
	"gopherterm/kernel/cpu"
	"gopherterm/kernel/kfmt"
)

const (
	// MaxEntries is the number of descriptors in a Table.
	MaxEntries = 8

	// PointerSize is the size of an encoded 32-bit table pointer.
	PointerSize = 6

	// registerImageSize is the size of the long-mode GDTR image.
	registerImageSize = 10
)

// Indices of the descriptors created by NewFlatTable.
const (
	NullIndex = iota
	KernelCodeIndex
	KernelDataIndex
	UserCodeIndex
	UserDataIndex
)

var (
	// loadGDTFn is replaced by tests.
	loadGDTFn = cpu.LoadGDT

	// registerImage holds the GDTR image handed to lgdt. It lives outside
	// the stack so its address stays valid for the duration of the load.
	registerImage [registerImageSize]byte
)

// Table is a fixed size global descriptor table.
type Table struct {
	entries [MaxEntries][EntrySize]byte
}

// SetGate encodes a descriptor into slot index. Passing an index outside
// [0, MaxEntries) panics.
func (t *Table) SetGate(index uint32, base, limit uint32, access, flags uint8) {
	t.entries[index] = EncodeEntry(base, limit, access, flags)
}

// Raw returns the encoded descriptor at index.
func (t *Table) Raw(index uint32) [EntrySize]byte {
	return t.entries[index]
}

// Entry returns the decoded descriptor at index.
func (t *Table) Entry(index uint32) Entry {
	return DecodeEntry(t.entries[index])
}

// Validate checks every entry and returns the first failure along with the
// index of the offending entry.
func (t *Table) Validate() (uint32, *kernel.Error) {
	for index := range t.entries {
		if err := DecodeEntry(t.entries[index]).Validate(); err != nil {
			return uint32(index), err
		}
	}

	return 0, nil
}

// Base returns the linear address of the first descriptor.
func (t *Table) Base() uintptr {
	return uintptr(unsafe.Pointer(&t.entries[0]))
}

// Limit returns the table size in bytes minus one.
func (t *Table) Limit() uint16 {
	return uint16(MaxEntries*EntrySize - 1)
}

// Pointer is the (limit, base) pair loaded into the descriptor table
// register.
type Pointer struct {
	Limit uint16
	Base  uint32
}

// Pointer returns the 32-bit table pointer for t.
func (t *Table) Pointer() Pointer {
	return Pointer{Limit: t.Limit(), Base: uint32(t.Base())}
}

// Encode packs the pointer as [limit:16][base:32], little endian.
func (p Pointer) Encode() [PointerSize]byte {
	return [PointerSize]byte{
		byte(p.Limit),
		byte(p.Limit >> 8),
		byte(p.Base),
		byte(p.Base >> 8),
		byte(p.Base >> 16),
		byte(p.Base >> 24),
	}
}

// Install loads t into the processor. The table must stay at the same
// address for as long as it is in use.
//
// On amd64 the register takes a 64-bit base, so the image extends the 32-bit
// pointer layout with the upper half of the table address.
func Install(t *Table) {
	ptr := t.Pointer().Encode()
	copy(registerImage[:], ptr[:])

	base := uint64(t.Base())
	for i := PointerSize; i < registerImageSize; i++ {
		registerImage[i] = byte(base >> (8 * uint(i-2)))
	}

	loadGDTFn(uintptr(unsafe.Pointer(&registerImage[0])))
}

// NewFlatTable returns a table initialized with InitFlat.
func NewFlatTable() *Table {
	t := new(Table)
	t.InitFlat()
	return t
}

// InitFlat sets up the flat memory model: a null descriptor followed by ring
// 0 and ring 3 code and data segments that span the full 4GiB address space.
// Other entries are left untouched.
func (t *Table) InitFlat() {
	flags := FlagGranularity | FlagSize

	t.SetGate(NullIndex, 0, 0, 0, 0)
	t.SetGate(KernelCodeIndex, 0, MaxLimit, AccessPresent|AccessDPL(0)|AccessSegment|AccessExecutable|AccessRW, flags)
	t.SetGate(KernelDataIndex, 0, MaxLimit, AccessPresent|AccessDPL(0)|AccessSegment|AccessRW, flags)
	t.SetGate(UserCodeIndex, 0, MaxLimit, AccessPresent|AccessDPL(3)|AccessSegment|AccessExecutable|AccessRW, flags)
	t.SetGate(UserDataIndex, 0, MaxLimit, AccessPresent|AccessDPL(3)|AccessSegment|AccessRW, flags)
}

// Selector returns the segment selector for a GDT index and requested
// privilege level.
func Selector(index uint32, rpl uint8) uint16 {
	return uint16(index<<3) | uint16(rpl&0x3)
}

// DumpTo prints the non-empty descriptors of t.
func (t *Table) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "gdt: base=0x%16x limit=0x%4x\n", uint64(t.Base()), t.Limit())
	for index := range t.entries {
		e := DecodeEntry(t.entries[index])
		if e == (Entry{}) {
			continue
		}

		kfmt.Fprintf(w, "  [%d] sel=0x%2x base=0x%8x limit=0x%5x access=0x%2x flags=0x%x dpl=%d\n",
			index, Selector(uint32(index), e.DPL()), e.Base, e.Limit, e.Access, e.Flags, e.DPL(),
		)
	}
}
