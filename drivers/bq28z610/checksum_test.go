package bq28z610

import "testing"

func TestChecksumExample(t *testing.T) {
	data := []byte{0x35, 0x00, 0x23, 0x01, 0x67, 0x45, 0xAB, 0x89, 0xEF, 0xCD}
	if got := Checksum(data); got != 0x0A {
		t.Fatalf("checksum=%#02x", got)
	}
}

func TestChecksumComplementsSum(t *testing.T) {
	data := []byte{0x2A, 0x46, 0x64, 0x00, 0xFF, 0x80, 0x7F}
	for n := 0; n <= len(data); n++ {
		var sum byte
		for _, b := range data[:n] {
			sum += b
		}
		if sum+Checksum(data[:n]) != 0xFF {
			t.Fatalf("n=%d sum=%#02x cs=%#02x", n, sum, Checksum(data[:n]))
		}
	}
}

func TestValidateAllZero(t *testing.T) {
	var f Frame
	if Validate(&f) {
		t.Fatal("all-zero frame accepted")
	}
}

func TestValidateGoodFrame(t *testing.T) {
	f := makeFrame(MACDeviceType, []byte{0x10, 0x26})
	if !Validate(&f) {
		t.Fatal("valid frame rejected")
	}
	full := makeFrame(0x4000, make([]byte, PayloadMax))
	if !Validate(&full) {
		t.Fatal("full frame rejected")
	}
}

func TestValidateAnyNonZero(t *testing.T) {
	// A wrong checksum still passes as long as the low byte of the sum is
	// non-zero; only a zero sum is rejected.
	f := makeFrame(MACDeviceType, []byte{0x10, 0x26})
	f[checksumIndex] -= 0x10
	if !Validate(&f) {
		t.Fatal("non-zero sum rejected")
	}
	f[checksumIndex] = 0x100 - 0x37 // 0x01+0x00+0x10+0x26 = 0x37
	if Validate(&f) {
		t.Fatal("zero sum accepted")
	}
}

func TestValidateOversizedLength(t *testing.T) {
	var f Frame
	f[lengthIndex] = 0xFF
	f[0] = 1
	if !Validate(&f) {
		t.Fatal("clamped length should still sum")
	}
}
