package dftable

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"bq28z610-go/errcode"
)

// Type is a data-flash storage format: U1 U2 U4 I1 I2 I4 F4 H1 H2 or Sn.
type Type string

// Kind is the format letter (U, I, F, H, S).
func (t Type) Kind() byte {
	if t == "" {
		return 0
	}
	return t[0]
}

// Size is the number of flash bytes the type occupies; 0 if invalid. For
// strings it includes the length byte.
func (t Type) Size() int {
	if len(t) < 2 {
		return 0
	}
	n, err := strconv.Atoi(string(t[1:]))
	if err != nil {
		return 0
	}
	switch t.Kind() {
	case 'U', 'I':
		if n == 1 || n == 2 || n == 4 {
			return n
		}
	case 'H':
		if n == 1 || n == 2 {
			return n
		}
	case 'F':
		if n == 4 {
			return n
		}
	case 'S':
		if n >= 2 && n <= 32 {
			return n
		}
	}
	return 0
}

func (t Type) Valid() bool { return t.Size() > 0 }

// Value is a decoded field.
type Value struct {
	Field Field
	Raw   []byte
}

// Decode interprets raw flash bytes as f. raw may be longer than the field.
func (f Field) Decode(raw []byte) (Value, error) {
	n := f.Type.Size()
	if n == 0 {
		return Value{}, errcode.New(errcode.InvalidParams, "df_decode", "unknown type "+string(f.Type))
	}
	if len(raw) < n {
		return Value{}, errcode.New(errcode.Range, "df_decode", "need "+strconv.Itoa(n)+" bytes")
	}
	b := make([]byte, n)
	copy(b, raw)
	return Value{Field: f, Raw: b}, nil
}

// Uint returns the unsigned reading of U and H fields.
func (v Value) Uint() uint64 {
	switch len(v.Raw) {
	case 1:
		return uint64(v.Raw[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(v.Raw))
	case 4:
		return uint64(binary.LittleEndian.Uint32(v.Raw))
	}
	return 0
}

// Int returns the two's-complement reading of I fields.
func (v Value) Int() int64 {
	switch len(v.Raw) {
	case 1:
		return int64(int8(v.Raw[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(v.Raw)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(v.Raw)))
	}
	return 0
}

func (v Value) Float() float32 {
	if len(v.Raw) != 4 {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(v.Raw))
}

// Text returns the string of an S field. The length byte is clamped to the
// field size.
func (v Value) Text() string {
	if len(v.Raw) == 0 {
		return ""
	}
	n := int(v.Raw[0])
	if n > len(v.Raw)-1 {
		n = len(v.Raw) - 1
	}
	return string(v.Raw[1 : 1+n])
}

// String formats the value for display: decimal for numbers, hex and binary
// for H fields.
func (v Value) String() string {
	switch v.Field.Type.Kind() {
	case 'U':
		return strconv.FormatUint(v.Uint(), 10)
	case 'I':
		return strconv.FormatInt(v.Int(), 10)
	case 'F':
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case 'H':
		if len(v.Raw) == 1 {
			return fmt.Sprintf("0x%02X = 0b%08b", v.Raw[0], v.Raw[0])
		}
		u := v.Uint()
		return fmt.Sprintf("0x%04X = 0b%016b", u, u)
	case 'S':
		return v.Text()
	}
	return fmt.Sprintf("% X", v.Raw)
}

// Line is the one-line description used by listings and diffs.
func (v Value) Line() string {
	s := fmt.Sprintf("0x%04X: (%s) [%s] = %s", v.Field.Addr, v.Field.Type, v.Field.Name, v.String())
	if v.Field.Unit != "" && v.Field.Type.Kind() != 'H' && v.Field.Type.Kind() != 'S' {
		s += " " + v.Field.Unit
	}
	return s
}

// Encode converts text into the bytes written to flash. Numbers accept Go
// literal prefixes (0x, 0b, 0o). Strings are written with their length byte
// only, not padded to the field size.
func (f Field) Encode(text string) ([]byte, error) {
	n := f.Type.Size()
	if n == 0 {
		return nil, errcode.New(errcode.InvalidParams, "df_encode", "unknown type "+string(f.Type))
	}
	bits := n * 8
	out := make([]byte, n)
	switch f.Type.Kind() {
	case 'U', 'H':
		u, err := strconv.ParseUint(text, 0, bits)
		if err != nil {
			return nil, encodeErr(f, err)
		}
		putLE(out, u)
	case 'I':
		i, err := strconv.ParseInt(text, 0, bits)
		if err != nil {
			return nil, encodeErr(f, err)
		}
		putLE(out, uint64(i))
	case 'F':
		x, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, encodeErr(f, err)
		}
		binary.LittleEndian.PutUint32(out, math.Float32bits(float32(x)))
	case 'S':
		if len(text) > n-1 {
			return nil, errcode.New(errcode.Range, "df_encode", f.Key+": at most "+strconv.Itoa(n-1)+" characters")
		}
		out = append(out[:0], byte(len(text)))
		out = append(out, text...)
	}
	return out, nil
}

func encodeErr(f Field, err error) error {
	c := errcode.InvalidParams
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		c = errcode.Range
	}
	return &errcode.E{C: c, Op: "df_encode", Msg: f.Key, Err: err}
}

func putLE(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
}
