package kernel

import "testing"

func TestKernelError(t *testing.T) {
	err := &Error{
		Module:  "tty",
		Message: "terminal not ready",
	}

	if err.Error() != err.Message {
		t.Fatalf("expected err.Error() to return %q; got %q", err.Message, err.Error())
	}
}

func TestAsError(t *testing.T) {
	if err := AsError(nil); err != nil {
		t.Fatalf("expected AsError(nil) to return an untyped nil; got %#v", err)
	}

	kerr := &Error{Module: "gdt", Message: "bad entry"}
	if err := AsError(kerr); err != kerr {
		t.Fatalf("expected AsError to return the supplied error; got %v", err)
	}
}
