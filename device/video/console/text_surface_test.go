package console

import (
	"bytes"
	"image/color"
	"testing"

	"gopherterm/device/devicetest"
)

func newTestSurface() (*TextSurface, []byte) {
	fb := make([]byte, DefaultWidth*DefaultHeight*2)
	s := NewTextSurface(DefaultWidth, DefaultHeight, nil)
	s.Init(fb)
	return s, fb
}

func TestTextSurfaceInit(t *testing.T) {
	s := NewTextSurface(40, 10, nil)
	if s.Ready() {
		t.Fatal("expected surface without a framebuffer not to be ready")
	}

	s.SetDefaultColors(0x1e, 0x21)
	s.SetPosition(3, 4)
	s.Init(make([]byte, 40*10*2))

	if !s.Ready() {
		t.Fatal("expected surface to be ready after Init")
	}

	if row, col := s.Position(); row != 0 || col != 0 {
		t.Fatalf("expected Init to reset the cursor to (0,0); got (%d,%d)", row, col)
	}

	if fg, bg := s.Colors(); fg != 0xe || bg != 0x1 {
		t.Fatalf("expected masked default colors fg:14 bg:1; got fg:%d bg:%d", fg, bg)
	}

	if w, h := s.Dimensions(); w != 40 || h != 10 {
		t.Fatalf("expected dimensions 40x10; got %dx%d", w, h)
	}
}

func TestTextSurfaceWriteCell(t *testing.T) {
	s, fb := newTestSurface()

	specs := []struct {
		row, col  uint32
		expOffset int
	}{
		{0, 0, 0},
		{0, 79, 158},
		{1, 0, 160},
		{24, 79, DefaultWidth*DefaultHeight*2 - 2},
	}

	for specIndex, spec := range specs {
		s.WriteCell(spec.row, spec.col, 'X', 0x1f)

		if fb[spec.expOffset] != 'X' || fb[spec.expOffset+1] != 0x1f {
			t.Errorf("[spec %d] expected cell (%d,%d) at byte offset %d", specIndex, spec.row, spec.col, spec.expOffset)
		}

		if ch, attr := s.Cell(spec.row, spec.col); ch != 'X' || attr != 0x1f {
			t.Errorf("[spec %d] expected Cell to return ('X', 0x1f); got (%q, 0x%x)", specIndex, ch, attr)
		}
	}
}

func TestTextSurfacePut(t *testing.T) {
	s, fb := newTestSurface()
	s.SetColors(2, 4)

	s.Put(0, 1, 'A')

	if fb[2] != 'A' || fb[3] != MakeAttr(2, 4) {
		t.Fatalf("expected Put to write glyph and active attribute; got (%q, 0x%x)", fb[2], fb[3])
	}

	if got := s.LastPut(); got != 'A' {
		t.Fatalf("expected last put glyph to be 'A'; got %q", got)
	}
}

func TestTextSurfaceClear(t *testing.T) {
	s, fb := newTestSurface()
	for i := range fb {
		fb[i] = 0xDE
	}
	s.SetColors(7, 1)
	s.Put(3, 3, 'Z')
	s.SetPosition(3, 4)

	s.Clear()

	expAttr := MakeAttr(7, 1)
	for i := 0; i < len(fb); i += 2 {
		if fb[i] != BlankGlyph || fb[i+1] != expAttr {
			t.Fatalf("expected cell at byte %d to be cleared; got (0x%x, 0x%x)", i, fb[i], fb[i+1])
		}
	}

	if row, col := s.Position(); row != 0 || col != 0 {
		t.Fatalf("expected Clear to reset the cursor; got (%d,%d)", row, col)
	}

	if s.LastPut() != BlankGlyph {
		t.Fatal("expected Clear to reset the last put glyph")
	}
}

func TestTextSurfaceScrollUp(t *testing.T) {
	s, fb := newTestSurface()
	for row := uint32(0); row < DefaultHeight; row++ {
		s.WriteCell(row, 0, byte('a'+row), 0x07)
	}

	s.ScrollUp()

	for row := uint32(0); row < DefaultHeight-1; row++ {
		if ch, _ := s.Cell(row, 0); ch != byte('a'+row+1) {
			t.Errorf("expected row %d to contain %q after scrolling; got %q", row, 'a'+row+1, ch)
		}
	}

	last := fb[(DefaultHeight-1)*DefaultWidth*2:]
	if !bytes.Equal(last[:2], []byte{BlankGlyph, s.Attr()}) {
		t.Fatalf("expected last row to be blanked; got % x", last[:2])
	}
}

func TestAttrPacking(t *testing.T) {
	specs := []struct {
		fg, bg uint8
		exp    byte
	}{
		{7, 0, 0x07},
		{15, 1, 0x1f},
		{0x17, 0x12, 0x27},
	}

	for specIndex, spec := range specs {
		if got := MakeAttr(spec.fg, spec.bg); got != spec.exp {
			t.Errorf("[spec %d] expected MakeAttr(%d, %d) = 0x%x; got 0x%x", specIndex, spec.fg, spec.bg, spec.exp, got)
		}
	}

	if fg, bg := SplitAttr(0x1f); fg != 15 || bg != 1 {
		t.Fatalf("expected SplitAttr(0x1f) to return (15, 1); got (%d, %d)", fg, bg)
	}
}

func TestTextSurfaceSetPaletteColor(t *testing.T) {
	var ports devicetest.Ports
	s := NewTextSurface(DefaultWidth, DefaultHeight, &ports)

	s.SetPaletteColor(1, color.RGBA{R: 255, G: 128, B: 64})

	if got := s.Palette()[1]; got != (color.RGBA{R: 255, G: 128, B: 64}) {
		t.Fatalf("expected palette entry 1 to be updated; got %v", got)
	}

	exp := []devicetest.PortWrite{
		{Port: 0x3C8, Value: 1},
		{Port: 0x3C9, Value: 63},
		{Port: 0x3C9, Value: 32},
		{Port: 0x3C9, Value: 16},
	}
	writes := ports.Writes()
	if len(writes) != len(exp) {
		t.Fatalf("expected %d DAC writes; got %d", len(exp), len(writes))
	}
	for i := range exp {
		if writes[i] != exp[i] {
			t.Errorf("expected DAC write %d to be %v; got %v", i, exp[i], writes[i])
		}
	}

	ports.Reset()
	s.SetPaletteColor(16, color.RGBA{})
	if len(ports.Writes()) != 0 {
		t.Fatal("expected out of range palette index to be a no-op")
	}
}

func TestTextSurfaceDriverInit(t *testing.T) {
	var buf bytes.Buffer

	s := NewTextSurface(DefaultWidth, DefaultHeight, nil)
	if err := s.DriverInit(&buf); err != errNoFramebuffer {
		t.Fatalf("expected errNoFramebuffer; got %v", err)
	}

	s.Init(make([]byte, DefaultWidth*DefaultHeight*2))
	if err := s.DriverInit(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exp, got := "80x25 text mode, fg=7 bg=0\n", buf.String(); got != exp {
		t.Fatalf("expected DriverInit to log %q; got %q", exp, got)
	}

	if s.DriverName() != "vga_text" {
		t.Fatalf("unexpected driver name %q", s.DriverName())
	}
}
