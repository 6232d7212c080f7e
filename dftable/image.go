package dftable

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
	"bq28z610-go/x/conv"
)

// Image is a sparse copy of data flash keyed by byte address.
type Image map[uint16]byte

// Put stores b starting at addr.
func (img Image) Put(addr uint16, b []byte) {
	for i, v := range b {
		img[addr+uint16(i)] = v
	}
}

// Bytes returns n bytes starting at addr, or false if any is missing.
func (img Image) Bytes(addr uint16, n int) ([]byte, bool) {
	out := make([]byte, n)
	for i := range out {
		v, ok := img[addr+uint16(i)]
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Has reports whether the image covers every byte of f.
func (img Image) Has(f Field) bool {
	for a := uint32(f.Addr); a <= uint32(f.End()); a++ {
		if _, ok := img[uint16(a)]; !ok {
			return false
		}
	}
	return true
}

// ParseDump reads the text dump format, one chunk per line:
//
//	0x4000: [ 0A 1B 2C ... ]
//
// Blank lines and lines starting with '#' are skipped.
func ParseDump(r io.Reader) (Image, error) {
	img := Image{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || s[0] == '#' {
			continue
		}
		addrStr, rest, ok := strings.Cut(s, ":")
		if !ok {
			return nil, dumpErr(line, "missing ':'")
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(addrStr), 0, 16)
		if err != nil {
			return nil, dumpErr(line, "bad address "+addrStr)
		}
		rest = strings.TrimSpace(rest)
		rest = strings.TrimSuffix(strings.TrimPrefix(rest, "["), "]")
		for i, tok := range strings.Fields(rest) {
			v, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return nil, dumpErr(line, "bad byte "+tok)
			}
			a := addr + uint64(i)
			if a > uint64(bq28z610.DataFlashMax) {
				return nil, dumpErr(line, "runs past data flash")
			}
			img[uint16(a)] = byte(v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

func dumpErr(line int, msg string) error {
	return errcode.New(errcode.InvalidParams, "dump_parse", "line "+strconv.Itoa(line)+": "+msg)
}

// WriteDump writes img as 32-byte lines in address order. Gaps start a new
// line.
func WriteDump(w io.Writer, img Image) error {
	addrs := make([]int, 0, len(img))
	for a := range img {
		addrs = append(addrs, int(a))
	}
	sort.Ints(addrs)

	bw := bufio.NewWriter(w)
	var chunk []byte
	var start int
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		_, err := bw.Write(AppendDumpLine(nil, uint16(start), chunk))
		chunk = chunk[:0]
		return err
	}
	for _, a := range addrs {
		if len(chunk) > 0 && (a != start+len(chunk) || len(chunk) == bq28z610.PayloadMax) {
			if err := flush(); err != nil {
				return err
			}
		}
		if len(chunk) == 0 {
			start = a
		}
		chunk = append(chunk, img[uint16(a)])
	}
	if err := flush(); err != nil {
		return err
	}
	return bw.Flush()
}

// AppendDumpLine formats one dump line including the newline.
func AppendDumpLine(dst []byte, addr uint16, chunk []byte) []byte {
	dst = conv.U16Hex(dst, addr)
	dst = append(dst, ':', ' ')
	dst = conv.BytesHex(dst, chunk)
	return append(dst, '\n')
}

// Range is an inclusive address span.
type Range struct{ Lo, Hi uint16 }

func (r Range) overlaps(f Field) bool { return f.Addr <= r.Hi && f.End() >= r.Lo }

// RaTable is the impedance table; it changes during normal gauging and is
// usually left out of comparisons.
var RaTable = Range{Lo: 0x4102, Hi: 0x41DE}

// Describe decodes every table field the image covers, in address order.
func Describe(t *Table, img Image) []Value {
	var out []Value
	for _, f := range t.Fields() {
		raw, ok := img.Bytes(f.Addr, f.Type.Size())
		if !ok {
			continue
		}
		v, err := f.Decode(raw)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Diff is a field whose value differs between two images. A side that does
// not cover the field has Missing set.
type Diff struct {
	Field    Field
	A, B     Value
	AMissing bool
	BMissing bool
}

// Compare returns the fields that differ between a and b, skipping fields
// that overlap any excluded range or are absent from both images.
func Compare(t *Table, a, b Image, exclude ...Range) []Diff {
	var out []Diff
outer:
	for _, f := range t.Fields() {
		for _, r := range exclude {
			if r.overlaps(f) {
				continue outer
			}
		}
		n := f.Type.Size()
		ra, okA := a.Bytes(f.Addr, n)
		rb, okB := b.Bytes(f.Addr, n)
		if !okA && !okB {
			continue
		}
		d := Diff{Field: f, AMissing: !okA, BMissing: !okB}
		if okA {
			d.A, _ = f.Decode(ra)
		}
		if okB {
			d.B, _ = f.Decode(rb)
		}
		if okA && okB && d.A.String() == d.B.String() {
			continue
		}
		out = append(out, d)
	}
	return out
}
