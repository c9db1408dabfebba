// Package multiboot reads the boot information structure that a multiboot2
// compliant boot loader hands over to the kernel.
package multiboot

import "unsafe"

type tagType uint32

// nolint
const (
	tagMbSectionEnd tagType = iota
	tagBootCmdLine
	tagBootLoaderName
	tagModules
	tagBasicMemoryInfo
	tagBiosBootDevice
	tagMemoryMap
	tagVbeInfo
	tagFramebufferInfo
)

// tagHeader precedes each tag. Size includes the header but not the padding
// that aligns the next tag to 8 bytes.
type tagHeader struct {
	tagType tagType
	size    uint32
}

// mmapHeader precedes the entries of a memory map tag.
type mmapHeader struct {
	entrySize    uint32
	entryVersion uint32
}

// FramebufferType defines the type of the initialized framebuffer.
type FramebufferType uint8

const (
	// FramebufferTypeIndexed specifies a 256-color palette.
	FramebufferTypeIndexed FramebufferType = iota

	// FramebufferTypeRGB specifies direct RGB mode.
	FramebufferTypeRGB

	// FramebufferTypeEGA specifies EGA text mode.
	FramebufferTypeEGA
)

// FramebufferInfo provides information about the initialized framebuffer.
type FramebufferInfo struct {
	// The framebuffer physical address.
	PhysAddr uint64

	// Row pitch in bytes.
	Pitch uint32

	// Width and height in pixels (or characters if Type = FramebufferTypeEGA)
	Width, Height uint32

	// Bits per pixel (non EGA modes only).
	Bpp uint8

	Type FramebufferType
}

// MemoryEntryType defines the type of a MemoryMapEntry.
type MemoryEntryType uint32

const (
	// MemAvailable indicates that the memory region is available for use.
	MemAvailable MemoryEntryType = iota + 1

	// MemReserved indicates that the memory region is not available for use.
	MemReserved

	// MemAcpiReclaimable indicates a memory region that holds ACPI info that
	// can be reused by the OS.
	MemAcpiReclaimable

	// MemNvs indicates memory that must be preserved when hibernating.
	MemNvs

	// Any value >= memUnknown is reported as MemReserved.
	memUnknown
)

// MemoryMapEntry describes a memory region.
type MemoryMapEntry struct {
	PhysAddress uint64
	Length      uint64
	Type        MemoryEntryType
}

// MemRegionVisitor is invoked by VisitMemRegions for each memory region. It
// returns false to abort the scan.
type MemRegionVisitor func(entry *MemoryMapEntry) bool

var infoData uintptr

// SetInfoPtr sets the address of the boot information structure. A zero
// pointer means that no boot information is available and every lookup
// reports a missing tag.
func SetInfoPtr(ptr uintptr) {
	infoData = ptr
}

// CmdLine returns the boot command line. The returned string aliases the boot
// information structure and stays valid for as long as that memory is not
// reused.
func CmdLine() string {
	ptr, size := findTagByType(tagBootCmdLine)
	if size == 0 {
		return ""
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	for i, b := range buf {
		if b == 0 {
			return unsafe.String(&buf[0], i)
		}
	}

	return unsafe.String(&buf[0], len(buf))
}

// GetFramebufferInfo returns the framebuffer set up by the boot loader or nil
// if the boot information does not describe one.
func GetFramebufferInfo() *FramebufferInfo {
	ptr, size := findTagByType(tagFramebufferInfo)
	if size == 0 {
		return nil
	}

	return (*FramebufferInfo)(unsafe.Pointer(ptr))
}

// VisitMemRegions invokes visitor for each memory region reported by the boot
// loader. Entries with an unknown type are reported as MemReserved.
func VisitMemRegions(visitor MemRegionVisitor) {
	curPtr, size := findTagByType(tagMemoryMap)
	if size == 0 {
		return
	}

	hdr := (*mmapHeader)(unsafe.Pointer(curPtr))
	if hdr.entrySize == 0 {
		return
	}

	endPtr := curPtr + uintptr(size)
	for curPtr += 8; curPtr+uintptr(hdr.entrySize) <= endPtr; curPtr += uintptr(hdr.entrySize) {
		entry := (*MemoryMapEntry)(unsafe.Pointer(curPtr))
		if entry.Type == 0 || entry.Type >= memUnknown {
			entry.Type = MemReserved
		}

		if !visitor(entry) {
			return
		}
	}
}

// findTagByType returns the address and length of the contents of the first
// tag with the requested type, or (0, 0) if there is no such tag.
func findTagByType(tagType tagType) (uintptr, uint32) {
	if infoData == 0 {
		return 0, 0
	}

	curPtr := infoData + 8
	for hdr := (*tagHeader)(unsafe.Pointer(curPtr)); hdr.tagType != tagMbSectionEnd; hdr = (*tagHeader)(unsafe.Pointer(curPtr)) {
		if hdr.size < 8 {
			break
		}

		if hdr.tagType == tagType {
			return curPtr + 8, hdr.size - 8
		}

		// tags start at 8-byte aligned addresses
		curPtr += uintptr((hdr.size + 7) &^ 7)
	}

	return 0, 0
}
