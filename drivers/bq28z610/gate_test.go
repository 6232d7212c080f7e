package bq28z610

import "testing"

func TestIsAddressValid(t *testing.T) {
	cases := []struct {
		addr uint16
		want bool
	}{
		{0x3FFF, false},
		{0x4000, true},
		{0x462A, true},
		{0x5FFF, true},
		{0x6000, false},
	}
	for _, c := range cases {
		if got := IsAddressValid(c.addr, DataFlashMin, DataFlashMax); got != c.want {
			t.Fatalf("addr=%#04x got=%v", c.addr, got)
		}
		if got := IsDataFlashAddress(c.addr); got != c.want {
			t.Fatalf("df addr=%#04x got=%v", c.addr, got)
		}
	}
}

func TestIsPayloadSizeValid(t *testing.T) {
	for n, want := range map[int]bool{-1: false, 0: false, 1: true, 16: true, 32: true, 33: false} {
		if got := IsPayloadSizeValid(n); got != want {
			t.Fatalf("n=%d got=%v", n, got)
		}
	}
}
