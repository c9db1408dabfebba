// Package console drives the VGA text mode framebuffer and hardware cursor.
package console

import (
	"image/color"
	"io"

	"gopherterm/device"
	"gopherterm/kernel"
	"gopherterm/kernel/kfmt"
	"gopherterm/kernel/mem"
)

const (
	// DefaultWidth and DefaultHeight describe VGA text mode 0x3.
	DefaultWidth  = 80
	DefaultHeight = 25

	// DefaultFramebufferAddr is the physical address of the color text
	// mode framebuffer.
	DefaultFramebufferAddr uintptr = 0xB8000

	// DefaultFg and DefaultBg select light gray text on black.
	DefaultFg uint8 = 7
	DefaultBg uint8 = 0

	// BlankGlyph is written to cleared and erased cells.
	BlankGlyph byte = 0x00

	dacWriteIndexPort uint16 = 0x3C8
	dacDataPort       uint16 = 0x3C9
)

var errNoFramebuffer = &kernel.Error{Module: "vga_text", Message: "framebuffer not initialized"}

// TextSurface owns the VGA text framebuffer. Each cell occupies two bytes: the
// glyph followed by an attribute byte that packs the background color in the
// high nibble and the foreground color in the low nibble.
//
// TextSurface only tracks the logical cursor; programming the hardware cursor
// is the job of Cursor.
type TextSurface struct {
	width  uint32
	height uint32

	fb []byte

	row, col uint32

	fg, bg               uint8
	defaultFg, defaultBg uint8

	lastPut byte

	palette color.Palette
	ports   device.PortIO
}

// NewTextSurface returns a width x height surface. The framebuffer is bound
// later by Init. ports is used for palette updates and may be nil if the
// palette is never changed.
func NewTextSurface(width, height uint32, ports device.PortIO) *TextSurface {
	return &TextSurface{
		width:     width,
		height:    height,
		defaultFg: DefaultFg,
		defaultBg: DefaultBg,
		fg:        DefaultFg,
		bg:        DefaultBg,
		ports:     ports,
		palette: color.Palette{
			color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}, /* black */
			color.RGBA{R: 0x00, G: 0x00, B: 0xaa, A: 0xff}, /* blue */
			color.RGBA{R: 0x00, G: 0xaa, B: 0x00, A: 0xff}, /* green */
			color.RGBA{R: 0x00, G: 0xaa, B: 0xaa, A: 0xff}, /* cyan */
			color.RGBA{R: 0xaa, G: 0x00, B: 0x00, A: 0xff}, /* red */
			color.RGBA{R: 0xaa, G: 0x00, B: 0xaa, A: 0xff}, /* magenta */
			color.RGBA{R: 0xaa, G: 0x55, B: 0x00, A: 0xff}, /* brown */
			color.RGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}, /* light gray */
			color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}, /* dark gray */
			color.RGBA{R: 0x55, G: 0x55, B: 0xff, A: 0xff}, /* light blue */
			color.RGBA{R: 0x55, G: 0xff, B: 0x55, A: 0xff}, /* light green */
			color.RGBA{R: 0x55, G: 0xff, B: 0xff, A: 0xff}, /* light cyan */
			color.RGBA{R: 0xff, G: 0x55, B: 0x55, A: 0xff}, /* light red */
			color.RGBA{R: 0xff, G: 0x55, B: 0xff, A: 0xff}, /* light magenta */
			color.RGBA{R: 0xff, G: 0xff, B: 0x55, A: 0xff}, /* yellow */
			color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, /* white */
		},
	}
}

// SetDefaultColors overrides the colors applied by Init. Values are masked to
// 4 bits.
func (s *TextSurface) SetDefaultColors(fg, bg uint8) {
	s.defaultFg, s.defaultBg = fg&0xf, bg&0xf
}

// Init binds the surface to fb, moves the cursor to (0,0) and applies the
// default colors. fb must hold at least width*height*2 bytes.
func (s *TextSurface) Init(fb []byte) {
	s.fb = fb
	s.row, s.col = 0, 0
	s.fg, s.bg = s.defaultFg, s.defaultBg
	s.lastPut = BlankGlyph
}

// Ready reports whether Init has bound a framebuffer.
func (s *TextSurface) Ready() bool {
	return s.fb != nil
}

// Framebuffer returns the bound framebuffer.
func (s *TextSurface) Framebuffer() []byte {
	return s.fb
}

// Dimensions returns the surface width and height in characters.
func (s *TextSurface) Dimensions() (uint32, uint32) {
	return s.width, s.height
}

// Position returns the logical cursor row and column.
func (s *TextSurface) Position() (uint32, uint32) {
	return s.row, s.col
}

// SetPosition moves the logical cursor. No bounds checks are applied.
func (s *TextSurface) SetPosition(row, col uint32) {
	s.row, s.col = row, col
}

// Colors returns the active foreground and background colors.
func (s *TextSurface) Colors() (fg, bg uint8) {
	return s.fg, s.bg
}

// SetColors changes the active colors. Values are masked to 4 bits.
func (s *TextSurface) SetColors(fg, bg uint8) {
	s.fg, s.bg = fg&0xf, bg&0xf
}

// DefaultColors returns the colors applied by Init.
func (s *TextSurface) DefaultColors() (fg, bg uint8) {
	return s.defaultFg, s.defaultBg
}

// Attr returns the attribute byte for the active colors.
func (s *TextSurface) Attr() byte {
	return MakeAttr(s.fg, s.bg)
}

// LastPut returns the glyph most recently placed with Put.
func (s *TextSurface) LastPut() byte {
	return s.lastPut
}

// WriteCell stores ch and attr at (row, col). The row is not checked
// against the surface height.
func (s *TextSurface) WriteCell(row, col uint32, ch, attr byte) {
	offset := s.width*row*2 + col*2
	s.fb[offset] = ch
	s.fb[offset+1] = attr
}

// Cell returns the glyph and attribute stored at (row, col).
func (s *TextSurface) Cell(row, col uint32) (byte, byte) {
	offset := s.width*row*2 + col*2
	return s.fb[offset], s.fb[offset+1]
}

// Put writes ch at (row, col) using the active colors and records it as the
// last written glyph.
func (s *TextSurface) Put(row, col uint32, ch byte) {
	s.WriteCell(row, col, ch, s.Attr())
	s.lastPut = ch
}

// Clear blanks every visible cell with the active colors, moves the cursor to
// (0,0) and resets the last written glyph.
func (s *TextSurface) Clear() {
	cell := [2]byte{BlankGlyph, s.Attr()}
	mem.MemsetPattern(s.fb[:s.width*s.height*2], cell[:])

	s.row, s.col = 0, 0
	s.lastPut = BlankGlyph
}

// ScrollUp moves every row up by one line and blanks the last row with the
// active colors. The logical cursor is left untouched.
func (s *TextSurface) ScrollUp() {
	stride := s.width * 2
	copy(s.fb[:stride*(s.height-1)], s.fb[stride:stride*s.height])

	cell := [2]byte{BlankGlyph, s.Attr()}
	mem.MemsetPattern(s.fb[stride*(s.height-1):stride*s.height], cell[:])
}

// Palette returns the active color palette.
func (s *TextSurface) Palette() color.Palette {
	return s.palette
}

// SetPaletteColor updates the color definition for the specified palette
// index and loads it into the DAC. Indices beyond the palette are ignored.
func (s *TextSurface) SetPaletteColor(index uint8, rgba color.RGBA) {
	if int(index) >= len(s.palette) {
		return
	}

	s.palette[index] = rgba
	if s.ports == nil {
		return
	}

	// The DAC expects 6-bit color components.
	s.ports.WritePort(dacWriteIndexPort, index)
	s.ports.WritePort(dacDataPort, rgba.R>>2)
	s.ports.WritePort(dacDataPort, rgba.G>>2)
	s.ports.WritePort(dacDataPort, rgba.B>>2)
}

// MakeAttr packs fg and bg into a VGA attribute byte.
func MakeAttr(fg, bg uint8) byte {
	return (bg&0xf)<<4 | fg&0xf
}

// SplitAttr unpacks a VGA attribute byte.
func SplitAttr(attr byte) (fg, bg uint8) {
	return attr & 0xf, attr >> 4
}

// DriverName returns the name of this driver.
func (s *TextSurface) DriverName() string {
	return "vga_text"
}

// DriverVersion returns the version of this driver.
func (s *TextSurface) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit checks that a framebuffer is bound and reports its geometry.
func (s *TextSurface) DriverInit(w io.Writer) *kernel.Error {
	if s.fb == nil {
		return errNoFramebuffer
	}

	kfmt.Fprintf(w, "%dx%d text mode, fg=%d bg=%d\n", s.width, s.height, s.fg, s.bg)
	return nil
}
