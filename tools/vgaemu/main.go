// Command vgaemu runs the kernel terminal stack against an emulated VGA text
// console and PS/2 keyboard. The screen is rendered with tcell; keystrokes
// come from the host terminal or, optionally, from a serial line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "vgaemu",
	Short:             "Hosted emulator for the gopherterm console stack",
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newGDTCmd())
	rootCmd.AddCommand(newPortsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[vgaemu] error: %v\n", err)
		os.Exit(1)
	}
}
