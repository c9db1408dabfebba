package kmain

import (
	"io"

	"gopherterm/kernel"
	"gopherterm/kernel/gdt"
	"gopherterm/kernel/hal"
	"gopherterm/kernel/kfmt"
	"gopherterm/kernel/mem"
	"gopherterm/kernel/multiboot"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// flatGDT is a package variable so the table keeps a fixed address
	// after it is loaded.
	flatGDT gdt.Table

	// The following functions are replaced by tests.
	installGDTFn   = gdt.Install
	initTerminalFn = hal.InitTerminal
	activeOutputFn = func() io.Writer { return hal.ActiveTerminal() }
	pollKeyboardFn = hal.PollKeyboard
	keepRunningFn  = func() bool { return true }
	panicFn        = kfmt.Panic
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. The rt0 code passes the address of the multiboot info
// block; the framebuffer and command line it describes override the default
// terminal configuration.
//
// Kmain is not expected to return. If it does, it panics and halts the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	flatGDT.InitFlat()
	if _, err := flatGDT.Validate(); err != nil {
		panicFn(err)
		return
	}
	installGDTFn(&flatGDT)

	cfg := hal.DefaultConfig()
	hal.ApplyBootInfo(&cfg)
	if err := initTerminalFn(cfg); err != nil {
		panicFn(err)
		return
	}

	kfmt.Printf("[kmain] gdt: code=0x%2x data=0x%2x\n",
		gdt.Selector(gdt.KernelCodeIndex, 0),
		gdt.Selector(gdt.KernelDataIndex, 0),
	)
	kfmt.Printf("[kmain] mem: %d KiB available\n", uint64(availableMemory()/mem.Kb))
	kfmt.Fprintf(activeOutputFn(), "gopherterm %dx%d\n\n", cfg.Width, cfg.Height)

	for keepRunningFn() {
		pollKeyboardFn()
	}

	panicFn(errKmainReturned)
}

// availableMemory sums the regions that the boot loader marks as usable.
func availableMemory() mem.Size {
	var total mem.Size
	multiboot.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) bool {
		if entry.Type == multiboot.MemAvailable {
			total += mem.Size(entry.Length)
		}
		return true
	})

	return total
}
