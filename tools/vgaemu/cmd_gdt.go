package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gopherterm/kernel/gdt"
)

func newGDTCmd() *cobra.Command {
	var (
		entries []string
		empty   bool
	)

	cmd := &cobra.Command{
		Use:   "gdt",
		Short: "Encode and dump a global descriptor table",
		Long: `Gdt builds the flat-model descriptor table used by the kernel, applies any
--entry overrides and prints the decoded table followed by the raw descriptor
bytes. Entries are given as index:base:limit:access:flags, for example
--entry 5:0:0xfffff:0x9a:0xa.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := gdt.NewFlatTable()
			if empty {
				tbl = new(gdt.Table)
			}

			for _, spec := range entries {
				if err := applyEntry(tbl, spec); err != nil {
					return err
				}
			}

			return dumpTable(cmd.OutOrStdout(), tbl)
		},
	}

	cmd.Flags().StringArrayVarP(&entries, "entry", "e", nil, "descriptor override as index:base:limit:access:flags")
	cmd.Flags().BoolVar(&empty, "empty", false, "start from an empty table instead of the flat model")

	return cmd
}

// applyEntry parses an index:base:limit:access:flags override and stores it
// in tbl.
func applyEntry(tbl *gdt.Table, spec string) error {
	parts := strings.Split(spec, ":")
	if len(parts) != 5 {
		return errors.Errorf("entry %q: expected index:base:limit:access:flags", spec)
	}

	var values [5]uint64
	for i, bits := range [5]int{8, 32, 32, 8, 8} {
		v, err := strconv.ParseUint(parts[i], 0, bits)
		if err != nil {
			return errors.Wrapf(err, "entry %q: field %d", spec, i)
		}
		values[i] = v
	}

	index := uint32(values[0])
	if index >= gdt.MaxEntries {
		return errors.Errorf("entry %q: index %d out of range [0, %d)", spec, index, gdt.MaxEntries)
	}
	if values[2] > uint64(gdt.MaxLimit) {
		return errors.Errorf("entry %q: limit 0x%x does not fit in 20 bits", spec, values[2])
	}
	if values[4] > 0xf {
		return errors.Errorf("entry %q: flags 0x%x do not fit in 4 bits", spec, values[4])
	}

	tbl.SetGate(index, uint32(values[1]), uint32(values[2]), uint8(values[3]), uint8(values[4]))
	return nil
}

// dumpTable prints the decoded table, the raw descriptors and any policy
// violations.
func dumpTable(w io.Writer, tbl *gdt.Table) error {
	tbl.DumpTo(w)

	fmt.Fprintln(w, "raw:")
	for index := uint32(0); index < gdt.MaxEntries; index++ {
		raw := tbl.Raw(index)
		fmt.Fprintf(w, "  [%d] % x\n", index, raw[:])
	}

	ptr := tbl.Pointer().Encode()
	fmt.Fprintf(w, "pointer: % x\n", ptr[:])

	if index, err := tbl.Validate(); err != nil {
		return errors.Wrapf(err, "entry %d", index)
	}
	return nil
}
