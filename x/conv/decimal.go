// Package conv holds allocation-free number formatting used where fmt is
// unavailable or too heavy (TinyGo builds, driver error messages).
package conv

// Utoa writes the base-10 form of n at the end of buf and returns the used tail.
// A 20-byte buffer fits any uint64.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	if i == 0 {
		return buf
	}
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 || i == 0 {
			return buf[i:]
		}
	}
}

// Itoa is Utoa for signed values; buf needs 20 bytes for any int64.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	s := Utoa(buf, uint64(-n))
	start := len(buf) - len(s)
	if start == 0 {
		return s
	}
	buf[start-1] = '-'
	return buf[start-1:]
}

// AppendInt appends the base-10 form of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	var b [20]byte
	return append(dst, Itoa(b[:], n)...)
}
