package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// The port enumerators are replaced by tests.
var (
	listPortsFn         = serial.GetPortsList
	listDetailedPortsFn = enumerator.GetDetailedPortsList
)

func newPortsCmd() *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:     "ports",
		Short:   "List serial ports usable with run --serial",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if details {
				return printDetailedPorts(cmd.OutOrStdout())
			}
			return printPorts(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "show USB details")
	return cmd
}

func printPorts(w io.Writer) error {
	ports, err := listPortsFn()
	if err != nil {
		return errors.Wrap(err, "unable to list serial ports")
	}

	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}

	for _, name := range ports {
		fmt.Fprintf(w, "%s\n", name)
	}
	return nil
}

func printDetailedPorts(w io.Writer) error {
	ports, err := listDetailedPortsFn()
	if err != nil {
		return errors.Wrap(err, "unable to list serial ports")
	}

	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}

	for _, port := range ports {
		fmt.Fprintf(w, "%s", port.Name)
		if port.IsUSB {
			fmt.Fprintf(w, " [USB %s:%s]", port.VID, port.PID)
			if port.Product != "" {
				fmt.Fprintf(w, " %s", port.Product)
			}
			if port.SerialNumber != "" {
				fmt.Fprintf(w, " (SN %s)", port.SerialNumber)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
