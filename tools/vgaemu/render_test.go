package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestGlyphRune(t *testing.T) {
	specs := []struct {
		glyph byte
		exp   rune
	}{
		{0x00, ' '},
		{0x0a, ' '},
		{'A', 'A'},
		{'~', '~'},
		{0x7f, ' '},
		{0xb0, '░'},
		{0xc4, '─'},
		{0xdb, '█'},
		{0xe1, 'ß'},
	}

	for specIndex, spec := range specs {
		if got := glyphRune(spec.glyph); got != spec.exp {
			t.Errorf("[spec %d] expected glyph 0x%x to render as %q; got %q", specIndex, spec.glyph, spec.exp, got)
		}
	}
}

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(40, 13)
	t.Cleanup(screen.Fini)

	return screen
}

func TestDraw(t *testing.T) {
	e := newTestEmulator(t)
	screen := newTestScreen(t)

	e.typeString("clear\r")
	e.term.Surface().SetColors(0xe, 0x1)
	e.term.Write([]byte("ok"))
	e.draw(screen)

	specs := []struct {
		x     int
		exp   rune
		expFg tcell.Color
		expBg tcell.Color
	}{
		{0, '>', tcell.NewRGBColor(0xaa, 0xaa, 0xaa), tcell.NewRGBColor(0, 0, 0)},
		{2, 'o', tcell.NewRGBColor(0xff, 0xff, 0x55), tcell.NewRGBColor(0, 0, 0xaa)},
		{3, 'k', tcell.NewRGBColor(0xff, 0xff, 0x55), tcell.NewRGBColor(0, 0, 0xaa)},
		{4, ' ', tcell.NewRGBColor(0xaa, 0xaa, 0xaa), tcell.NewRGBColor(0, 0, 0)},
	}

	for specIndex, spec := range specs {
		r, _, style, _ := screen.GetContent(spec.x, 0)
		if r != spec.exp {
			t.Errorf("[spec %d] expected %q at column %d; got %q", specIndex, spec.exp, spec.x, r)
		}

		fg, bg, _ := style.Decompose()
		if fg != spec.expFg || bg != spec.expBg {
			t.Errorf("[spec %d] expected colors %v/%v at column %d; got %v/%v", specIndex, spec.expFg, spec.expBg, spec.x, fg, bg)
		}
	}

	if x, y, visible := screen.GetCursor(); !visible || x != 4 || y != 0 {
		t.Fatalf("expected a visible cursor at (4,0); got (%d,%d) visible: %t", x, y, visible)
	}

	// status line below the console
	var status []rune
	for x := 0; x < 10; x++ {
		r, _, _, _ := screen.GetContent(x, 12)
		status = append(status, r)
	}
	if exp := " in 0/256 "; string(status) != exp {
		t.Fatalf("expected status line to start with %q; got %q", exp, string(status))
	}
}

func TestDrawHiddenCursor(t *testing.T) {
	e := newTestEmulator(t)
	screen := newTestScreen(t)

	// cursor shape register with the disable bit set
	e.ports.WritePort(0x3D4, 0x0A)
	e.ports.WritePort(0x3D5, 0x20)
	e.draw(screen)

	if _, _, visible := screen.GetCursor(); visible {
		t.Fatal("expected the cursor to be hidden")
	}
}

func TestDrawCursorPastLastCell(t *testing.T) {
	specs := []struct {
		row, col       uint32
		expCol, expRow int
	}{
		{0, 0, 0, 0},
		{11, 39, 39, 11},
		{12, 0, 39, 11},
	}

	e := newTestEmulator(t)
	screen := newTestScreen(t)

	for specIndex, spec := range specs {
		e.cursor.MoveTo(spec.row, spec.col)
		e.draw(screen)

		if col, row, visible := screen.GetCursor(); !visible || col != spec.expCol || row != spec.expRow {
			t.Errorf("[spec %d] expected the cursor at (%d,%d); got (%d,%d) visible=%t", specIndex, spec.expCol, spec.expRow, col, row, visible)
		}
	}
}
