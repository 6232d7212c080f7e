package conv

const hexd = "0123456789ABCDEF"

// U8Hex appends 2-digit uppercase hex of n to dst, without 0x.
func U8Hex(dst []byte, n uint8) []byte {
	return append(dst, hexd[n>>4], hexd[n&0xF])
}

// U16Hex appends 0x-prefixed 4-digit uppercase hex of n to dst.
func U16Hex(dst []byte, n uint16) []byte {
	dst = append(dst, '0', 'x')
	dst = U8Hex(dst, uint8(n>>8))
	return U8Hex(dst, uint8(n))
}

// U32Hex appends 0x-prefixed 8-digit uppercase hex of n to dst.
func U32Hex(dst []byte, n uint32) []byte {
	dst = append(dst, '0', 'x')
	for shift := 24; shift >= 0; shift -= 8 {
		dst = U8Hex(dst, uint8(n>>uint(shift)))
	}
	return dst
}

// BytesHex appends p as "[ AA BB CC ]", the layout used by data-flash dumps.
func BytesHex(dst []byte, p []byte) []byte {
	dst = append(dst, '[', ' ')
	for _, b := range p {
		dst = U8Hex(dst, b)
		dst = append(dst, ' ')
	}
	return append(dst, ']')
}
