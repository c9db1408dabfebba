// Package cpu exposes the privileged amd64 instructions needed by the console
// and segmentation code. The function bodies live in cpu_amd64.s.
package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// LoadGDT loads the descriptor table register image stored at regImage into
// GDTR. The image uses the long-mode layout: a 16-bit limit followed by a
// 64-bit linear base address.
func LoadGDT(regImage uintptr)
