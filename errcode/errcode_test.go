package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":             OK,
		"range":          Range,
		"checksum":       Checksum,
		"io":             IO,
		"sealed":         Sealed,
		"invalid_params": InvalidParams,
		"unsupported":    Unsupported,
		"busy":           Busy,
		"timeout":        Timeout,
		"error":          Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfWalksWrappedChain(t *testing.T) {
	cause := errors.New("nack")
	e := Wrap(IO, "read_block", cause)
	if Of(e) != IO {
		t.Fatalf("Of(E)=%q", Of(e))
	}
	outer := fmt.Errorf("df read: %w", e)
	if Of(outer) != IO {
		t.Fatalf("Of(wrapped)=%q", Of(outer))
	}
	if !errors.Is(outer, cause) {
		t.Fatal("cause lost through Unwrap")
	}
	if Of(nil) != OK {
		t.Fatal("nil must map to ok")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("plain error must map to generic code")
	}
	if Of(Checksum) != Checksum {
		t.Fatal("bare code must map to itself")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(IO, "op", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
}

func TestErrorText(t *testing.T) {
	e := &E{C: Range, Op: "df_write", Msg: "payload length"}
	if got := e.Error(); got != "df_write: range: payload length" {
		t.Fatalf("got %q", got)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(Checksum, "op", "")) || !Retryable(Wrap(IO, "op", errors.New("x"))) {
		t.Fatal("checksum and io are transient")
	}
	if Retryable(New(Range, "op", "")) || Retryable(New(Sealed, "op", "")) {
		t.Fatal("range and sealed are not transient")
	}
}
