package main

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"

	"gopherterm/device/tty"
	"gopherterm/device/video/console"
)

const (
	crtcCursorStart  = 0x0A
	crtcCursorHidden = 0x20
)

// cellWidth measures runes as a narrow-locale terminal would so that the
// console grid does not depend on the host locale.
var cellWidth = newCellWidth()

func newCellWidth() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return cond
}

// glyphRune maps a framebuffer glyph to the rune drawn on the host terminal.
// Glyphs follow code page 437; control glyphs and runes that do not occupy a
// single column are drawn as blanks and '?' respectively.
func glyphRune(glyph byte) rune {
	if glyph < 0x20 || glyph == 0x7f {
		return ' '
	}

	r := charmap.CodePage437.DecodeByte(glyph)
	if cellWidth.RuneWidth(r) != 1 {
		return '?'
	}
	return r
}

// attrStyle converts a VGA attribute byte to a tcell style using the surface
// palette.
func attrStyle(surface *console.TextSurface, attr byte) tcell.Style {
	palette := surface.Palette()
	fg, bg := console.SplitAttr(attr)

	return tcell.StyleDefault.
		Foreground(paletteColor(palette[fg])).
		Background(paletteColor(palette[bg]))
}

func paletteColor(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// draw renders the framebuffer, the hardware cursor and a status line.
func (e *emulator) draw(screen tcell.Screen) {
	surface := e.term.Surface()
	width, height := surface.Dimensions()

	for row := uint32(0); row < height; row++ {
		for col := uint32(0); col < width; col++ {
			offset := (row*width + col) * 2
			screen.SetContent(int(col), int(row), glyphRune(e.fb[offset]), nil, attrStyle(surface, e.fb[offset+1]))
		}
	}

	if e.ports.Register(crtcCursorStart)&crtcCursorHidden != 0 {
		screen.HideCursor()
	} else {
		// a pending wrap on the last row leaves the offset one past the
		// last cell
		offset := uint32(e.cursor.Offset())
		row, col := offset/width, offset%width
		if row >= height {
			row, col = height-1, width-1
		}
		screen.ShowCursor(int(col), int(row))
	}

	drawText(screen, 0, int(height), tcell.StyleDefault.Reverse(true), e.status())
	screen.Show()
}

func (e *emulator) status() string {
	in := e.term.Stream(tty.StreamInput)
	out := e.term.Stream(tty.StreamOutput)
	errs := e.term.Stream(tty.StreamError)

	return fmt.Sprintf(" in %d/%d  out %d/%d  err %d/%d  key %s  ^C quit  ^L clear ",
		in.Offset(), in.Cap(), out.Offset(), out.Cap(), errs.Offset(), errs.Cap(), e.term.LastKey())
}

// drawText writes s starting at (x, y) and returns the column after the last
// cell drawn.
func drawText(screen tcell.Screen, x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x += cellWidth.RuneWidth(r)
	}
	return x
}
