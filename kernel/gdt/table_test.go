package gdt

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"

	"gopherterm/kernel/cpu"
)

func TestTableSetGate(t *testing.T) {
	var tbl Table

	tbl.SetGate(1, 0, 0xFFFFF, 0x9A, 0xC)

	if exp, got := [EntrySize]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00}, tbl.Raw(1); got != exp {
		t.Fatalf("expected entry 1 to be % x; got % x", exp, got)
	}

	for _, index := range []uint32{0, 2, MaxEntries - 1} {
		if got := tbl.Raw(index); got != ([EntrySize]byte{}) {
			t.Errorf("expected entry %d to remain empty; got % x", index, got)
		}
	}

	if exp, got := (Entry{Limit: 0xFFFFF, Access: 0x9A, Flags: 0xC}), tbl.Entry(1); got != exp {
		t.Fatalf("expected decoded entry %+v; got %+v", exp, got)
	}
}

func TestTableSetGateOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected SetGate with an out of range index to panic")
		}
	}()

	var tbl Table
	tbl.SetGate(MaxEntries, 0, 0, 0, 0)
}

func TestPointerEncode(t *testing.T) {
	specs := []struct {
		ptr Pointer
		exp [PointerSize]byte
	}{
		{Pointer{}, [PointerSize]byte{}},
		{Pointer{Limit: 0x27, Base: 0x00105000}, [PointerSize]byte{0x27, 0x00, 0x00, 0x50, 0x10, 0x00}},
		{Pointer{Limit: 0xFFFF, Base: 0xDEADBEEF}, [PointerSize]byte{0xFF, 0xFF, 0xEF, 0xBE, 0xAD, 0xDE}},
	}

	for specIndex, spec := range specs {
		if got := spec.ptr.Encode(); got != spec.exp {
			t.Errorf("[spec %d] expected encoded pointer % x; got % x", specIndex, spec.exp, got)
		}
	}
}

func TestTablePointer(t *testing.T) {
	tbl := new(Table)
	ptr := tbl.Pointer()

	if exp := uint16(MaxEntries*EntrySize - 1); ptr.Limit != exp {
		t.Fatalf("expected limit %d; got %d", exp, ptr.Limit)
	}

	if exp := uint32(uintptr(unsafe.Pointer(tbl))); ptr.Base != exp {
		t.Fatalf("expected base 0x%x; got 0x%x", exp, ptr.Base)
	}
}

func TestInstall(t *testing.T) {
	defer func() {
		loadGDTFn = cpu.LoadGDT
	}()

	var (
		tbl       = NewFlatTable()
		loadCount int
		loadedAt  uintptr
	)

	loadGDTFn = func(regImage uintptr) {
		loadCount++
		loadedAt = regImage
	}

	Install(tbl)

	if loadCount != 1 {
		t.Fatalf("expected lgdt to be issued once; got %d", loadCount)
	}

	if exp := uintptr(unsafe.Pointer(&registerImage[0])); loadedAt != exp {
		t.Fatalf("expected register image at 0x%x; got 0x%x", exp, loadedAt)
	}

	var exp [registerImageSize]byte
	limit, base := tbl.Limit(), uint64(tbl.Base())
	exp[0], exp[1] = byte(limit), byte(limit>>8)
	for i := 0; i < 8; i++ {
		exp[2+i] = byte(base >> (8 * uint(i)))
	}

	if registerImage != exp {
		t.Fatalf("expected register image % x; got % x", exp, registerImage)
	}
}

func TestNewFlatTable(t *testing.T) {
	tbl := NewFlatTable()

	specs := []struct {
		index uint32
		exp   [EntrySize]byte
	}{
		{NullIndex, [EntrySize]byte{}},
		{KernelCodeIndex, [EntrySize]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00}},
		{KernelDataIndex, [EntrySize]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x92, 0xCF, 0x00}},
		{UserCodeIndex, [EntrySize]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFA, 0xCF, 0x00}},
		{UserDataIndex, [EntrySize]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0xF2, 0xCF, 0x00}},
	}

	for specIndex, spec := range specs {
		if got := tbl.Raw(spec.index); got != spec.exp {
			t.Errorf("[spec %d] expected entry %d to be % x; got % x", specIndex, spec.index, spec.exp, got)
		}
	}

	if index, err := tbl.Validate(); err != nil {
		t.Fatalf("expected flat table to validate; entry %d failed with %v", index, err)
	}
}

func TestTableValidateReportsIndex(t *testing.T) {
	tbl := NewFlatTable()
	tbl.SetGate(6, 0, MaxLimit, AccessPresent|AccessSegment|AccessRW, FlagLongMode)

	index, err := tbl.Validate()
	if err != errLongData {
		t.Fatalf("expected errLongData; got %v", err)
	}

	if index != 6 {
		t.Fatalf("expected failing index 6; got %d", index)
	}
}

func TestSelector(t *testing.T) {
	specs := []struct {
		index uint32
		rpl   uint8
		exp   uint16
	}{
		{NullIndex, 0, 0x00},
		{KernelCodeIndex, 0, 0x08},
		{KernelDataIndex, 0, 0x10},
		{UserCodeIndex, 3, 0x1b},
		{UserDataIndex, 3, 0x23},
		{UserDataIndex, 7, 0x23},
	}

	for specIndex, spec := range specs {
		if got := Selector(spec.index, spec.rpl); got != spec.exp {
			t.Errorf("[spec %d] expected selector 0x%x; got 0x%x", specIndex, spec.exp, got)
		}
	}
}

func TestTableDumpTo(t *testing.T) {
	var buf bytes.Buffer
	NewFlatTable().DumpTo(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if exp := 5; len(lines) != exp {
		t.Fatalf("expected %d lines of output; got %d:\n%s", exp, len(lines), buf.String())
	}

	if !strings.HasPrefix(lines[0], "gdt: base=0x") || !strings.HasSuffix(lines[0], "limit=0x003f") {
		t.Fatalf("unexpected header line: %q", lines[0])
	}

	exp := "  [4] sel=0x23 base=0x00000000 limit=0xfffff access=0xf2 flags=0xc dpl=3"
	if got := lines[4]; got != exp {
		t.Fatalf("expected user data line %q; got %q", exp, got)
	}
}
