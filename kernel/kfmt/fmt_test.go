package kfmt

import (
	"bytes"
	"testing"
)

func TestPrintf(t *testing.T) {
	defer func() {
		outputSink = nil
	}()

	// mute vet warnings about non-standard verbs
	printfn := Printf

	specs := []struct {
		fn        func()
		expOutput string
	}{
		{func() { printfn("no args") }, "no args"},
		{func() { printfn("%t|%t", true, false) }, "true|false"},
		{func() { printfn("%s arg", "STRING") }, "STRING arg"},
		{func() { printfn("%s arg", []byte("BYTES")) }, "BYTES arg"},
		{func() { printfn("'%5s'", "ABC") }, "'  ABC'"},
		{func() { printfn("'%2s'", "ABCDE") }, "'ABCDE'"},
		{func() { printfn("%c%c", byte('o'), 'k') }, "ok"},
		{func() { printfn("%c", 'é') }, "?"},
		{func() { printfn("%d", uint8(10)) }, "10"},
		{func() { printfn("%o", uint16(0777)) }, "777"},
		{func() { printfn("0x%x", uint32(0xb8000)) }, "0xb8000"},
		{func() { printfn("0x%x", uintptr(0xb8000)) }, "0xb8000"},
		{func() { printfn("'%6d'", uint64(123)) }, "'   123'"},
		{func() { printfn("0x%4x", uint16(0xe)) }, "0x000e"},
		{func() { printfn("%d", int8(-10)) }, "-10"},
		{func() { printfn("'%5d'", int(-42)) }, "'  -42'"},
		{func() { printfn("%x", int32(-0xff)) }, "-ff"},
		{func() { printfn("'%5x'", int64(-0xff)) }, "'-00ff'"},
		{func() { printfn("%d", 0) }, "0"},
		{func() { printfn("%%%s%d%t", "foo", 123, true) }, "%foo123true"},
		{func() { printfn("extra", 1, 2) }, "extra%!(EXTRA)%!(EXTRA)"},
		{func() { printfn("missing %s") }, "missing %!(MISSING)"},
		{func() { printfn("trailing %") }, "trailing %!(NOVERB)"},
		{func() { printfn("bad %q", 1) }, "bad %!(BADVERB)"},
		{func() { printfn("not bool %t", "foo") }, "not bool %!(BADTYPE)"},
		{func() { printfn("not int %d", "foo") }, "not int %!(BADTYPE)"},
		{func() { printfn("not string %s", 1) }, "not string %!(BADTYPE)"},
		{func() { printfn("not char %c", "x") }, "not char %!(BADTYPE)"},
	}

	var buf bytes.Buffer
	SetOutputSink(&buf)

	for specIndex, spec := range specs {
		buf.Reset()
		spec.fn()

		if got := buf.String(); got != spec.expOutput {
			t.Errorf("[spec %d] expected to get\n%q\ngot:\n%q", specIndex, spec.expOutput, got)
		}
	}
}

func TestPrintfBeforeSinkIsSet(t *testing.T) {
	defer func() {
		outputSink = nil
	}()

	outputSink = nil
	Printf("early %s %d\n", "boot", 1)

	var buf bytes.Buffer
	SetOutputSink(&buf)

	if exp, got := "early boot 1\n", buf.String(); got != exp {
		t.Fatalf("expected early output %q to be replayed; got %q", exp, got)
	}

	if GetOutputSink() != &buf {
		t.Fatal("expected GetOutputSink to return the active sink")
	}
}

func TestFprintf(t *testing.T) {
	var buf bytes.Buffer

	Fprintf(&buf, "[%s] %d cells", "vga", 2000)

	if exp, got := "[vga] 2000 cells", buf.String(); got != exp {
		t.Fatalf("expected to get %q; got %q", exp, got)
	}
}
