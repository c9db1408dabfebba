package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	specs := []struct {
		input string
		exp   string
	}{
		{"", ""},
		{"\n", "prefix: \n"},
		{"no line break", "prefix: no line break"},
		{"line feed at the end\n", "prefix: line feed at the end\n"},
		{"\nline feed at the start", "prefix: \nprefix: line feed at the start"},
		{"one\ntwo\nthree", "prefix: one\nprefix: two\nprefix: three"},
	}

	var buf bytes.Buffer
	for specIndex, spec := range specs {
		buf.Reset()
		w := PrefixWriter{Sink: &buf, Prefix: []byte("prefix: ")}

		n, err := w.Write([]byte(spec.input))
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			continue
		}

		if n != len(spec.input) {
			t.Errorf("[spec %d] expected writer to report %d bytes written; got %d", specIndex, len(spec.input), n)
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected to get %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestPrefixWriterAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	w := PrefixWriter{Sink: &buf, Prefix: []byte("> ")}

	w.Write([]byte("mapped "))
	w.Write([]byte("fb\ninit"))
	w.Write([]byte("ialized\n"))

	if exp, got := "> mapped fb\n> initialized\n", buf.String(); got != exp {
		t.Fatalf("expected to get %q; got %q", exp, got)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestPrefixWriterSinkError(t *testing.T) {
	w := PrefixWriter{Sink: failingWriter{}, Prefix: []byte("> ")}

	if _, err := w.Write([]byte("line\n")); err == nil {
		t.Fatal("expected sink error to be propagated")
	}
	if _, err := w.Write([]byte("partial")); err == nil {
		t.Fatal("expected sink error to be propagated")
	}
}
