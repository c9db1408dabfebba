package kernel

// Error describes a failure reported by a kernel module. Errors are declared
// as package-level pointers so that returning one never needs the allocator,
// which may not be available when the console comes up.
type Error struct {
	// Module names the subsystem that reported the error (e.g. "tty").
	Module string

	// Message is a human readable description of the failure.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// AsError converts e into a plain error value, taking care to return an
// untyped nil when e is nil so that callers comparing against nil behave.
func AsError(e *Error) error {
	if e == nil {
		return nil
	}

	return e
}
