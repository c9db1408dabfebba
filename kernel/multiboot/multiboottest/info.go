// Package multiboottest assembles multiboot2 boot information structures for
// tests.
package multiboottest

import (
	"encoding/binary"
	"unsafe"
)

// Tag types understood by the builder.
const (
	tagEnd         = 0
	tagCmdLine     = 1
	tagMemoryMap   = 6
	tagFramebuffer = 8

	memoryMapEntrySize = 24
	framebufferTagSize = 8 + 24
)

// pinned keeps every image built by Ptr reachable since callers only hold
// its address.
var pinned [][]uint64

// Info is a boot information structure under construction. The zero value
// holds no tags.
type Info struct {
	tags []byte
}

// CmdLine appends a NUL terminated command line tag.
func (i *Info) CmdLine(cmdline string) *Info {
	body := append([]byte(cmdline), 0)
	return i.tag(tagCmdLine, body)
}

// Framebuffer appends a framebuffer tag.
func (i *Info) Framebuffer(addr uint64, pitch, width, height uint32, bpp, fbType uint8) *Info {
	body := make([]byte, framebufferTagSize-8)
	binary.LittleEndian.PutUint64(body[0:], addr)
	binary.LittleEndian.PutUint32(body[8:], pitch)
	binary.LittleEndian.PutUint32(body[12:], width)
	binary.LittleEndian.PutUint32(body[16:], height)
	body[20] = bpp
	body[21] = fbType
	return i.tag(tagFramebuffer, body)
}

// MemRegion is a single memory map entry.
type MemRegion struct {
	Addr, Length uint64
	Type         uint32
}

// MemoryMap appends a memory map tag with the supplied regions.
func (i *Info) MemoryMap(regions ...MemRegion) *Info {
	body := make([]byte, 8+len(regions)*memoryMapEntrySize)
	binary.LittleEndian.PutUint32(body[0:], memoryMapEntrySize)
	for index, r := range regions {
		entry := body[8+index*memoryMapEntrySize:]
		binary.LittleEndian.PutUint64(entry[0:], r.Addr)
		binary.LittleEndian.PutUint64(entry[8:], r.Length)
		binary.LittleEndian.PutUint32(entry[16:], r.Type)
	}
	return i.tag(tagMemoryMap, body)
}

func (i *Info) tag(tagType uint32, body []byte) *Info {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], tagType)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(8+len(body)))

	i.tags = append(i.tags, hdr[:]...)
	i.tags = append(i.tags, body...)
	for len(i.tags)%8 != 0 {
		i.tags = append(i.tags, 0)
	}
	return i
}

// Ptr terminates the structure and returns the address of an 8-byte aligned
// copy of it.
func (i *Info) Ptr() uintptr {
	image := make([]byte, 8, 8+len(i.tags)+8)
	image = append(image, i.tags...)
	image = append(image, make([]byte, 8)...)
	binary.LittleEndian.PutUint32(image[len(image)-8:], tagEnd)
	binary.LittleEndian.PutUint32(image[len(image)-4:], 8)
	binary.LittleEndian.PutUint32(image[0:], uint32(len(image)))

	backing := make([]uint64, len(image)/8)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), len(image)), image)
	pinned = append(pinned, backing)

	return uintptr(unsafe.Pointer(&backing[0]))
}
