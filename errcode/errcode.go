package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Range         Code = "range"    // address or length outside the permitted window; never retried
	Checksum      Code = "checksum" // response frame failed validation; the exchange may be retried
	IO            Code = "io"       // bus primitive failure, cause wrapped
	Sealed        Code = "sealed"   // device security level forbids the operation
	InvalidParams Code = "invalid_params"
	Unsupported   Code = "unsupported"
	Busy          Code = "busy"
	Timeout       Code = "timeout"

	Error Code = "error" // generic fallback
)

// E keeps an operation name, a short message and an optional cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// New builds an *E without a cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around a cause. A nil cause yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
// Wrapped chains are walked through Unwrap.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	for e := err; e != nil; {
		if c, ok := e.(Code); ok {
			return c
		}
		if x, ok := e.(coder); ok {
			return x.Code()
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return Error
}

// Is reports whether err carries code c.
func Is(err error, c Code) bool { return err != nil && Of(err) == c }

// Retryable reports whether repeating the whole exchange may succeed.
func Retryable(err error) bool {
	switch Of(err) {
	case Checksum, IO, Busy, Timeout:
		return true
	}
	return false
}
