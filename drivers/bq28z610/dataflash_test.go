package bq28z610

import (
	"bytes"
	"math"
	"testing"

	"bq28z610-go/errcode"
)

func TestWriteDataFlashExactWrites(t *testing.T) {
	f := newFakeGauge()
	d, _ := newTestDevice(f, noSealCheck)
	if err := d.WriteU2(DFDesignCapacityMAh, 0x0064); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x3E, 0x2A, 0x46, 0x64, 0x00},
		{0x60, 0x2B, 0x06},
	}
	if len(f.writes) != len(want) {
		t.Fatalf("writes=%v", f.writes)
	}
	for i := range want {
		if !bytes.Equal(f.writes[i], want[i]) {
			t.Fatalf("write %d = % X", i, f.writes[i])
		}
	}
}

func TestDataFlashGate(t *testing.T) {
	f := newFakeGauge()
	d, _ := newTestDevice(f, nil)
	var one [1]byte
	if err := d.ReadDataFlash(0x3FFF, one[:]); !errcode.Is(err, errcode.Range) {
		t.Fatalf("below window: %v", err)
	}
	if err := d.WriteDataFlash(0x6000, one[:]); !errcode.Is(err, errcode.Range) {
		t.Fatalf("above window: %v", err)
	}
	if err := d.ReadDataFlash(0x4000, make([]byte, 33)); !errcode.Is(err, errcode.Range) {
		t.Fatalf("33 bytes: %v", err)
	}
	if err := d.WriteDataFlash(0x4000, nil); !errcode.Is(err, errcode.Range) {
		t.Fatalf("empty: %v", err)
	}
	if err := d.WriteString(DFDeviceName, string(make([]byte, 32))); !errcode.Is(err, errcode.Range) {
		t.Fatalf("long string: %v", err)
	}
	if f.calls != 0 {
		t.Fatalf("gate let %d bus calls through", f.calls)
	}
}

func TestDataFlashSealed(t *testing.T) {
	f := newFakeGauge()
	f.opStatus = uint32(Sealed) << opStatusSecShift
	d, _ := newTestDevice(f, nil)

	if err := d.WriteU1(DFTCSetRSOCThreshold, 60); !errcode.Is(err, errcode.Sealed) {
		t.Fatalf("write err=%v", err)
	}
	if _, err := d.ReadU1(DFTCSetRSOCThreshold); !errcode.Is(err, errcode.Sealed) {
		t.Fatalf("read err=%v", err)
	}
	for _, w := range f.writes {
		if w[0] == regMACDataChecksum || (w[0] == regAltManufacturerAccess && len(w) > 3) {
			t.Fatalf("data flash touched while sealed: % X", w)
		}
	}
	if len(f.cmds) != 2 || f.cmds[0] != MACOperationStatus {
		t.Fatalf("expected only security checks, got %v", f.cmds)
	}
}

func TestDataFlashTypedRoundTrip(t *testing.T) {
	f := newFakeGauge()
	d, _ := newTestDevice(f, nil)

	if err := d.WriteI2(DFOTCThreshold, 550); err != nil {
		t.Fatal(err)
	}
	if v, err := d.ReadI2(DFOTCThreshold); err != nil || v != 550 {
		t.Fatalf("I2=%d err=%v", v, err)
	}
	if err := d.WriteI2(DFChargeTermTaperCurrent, -20); err != nil {
		t.Fatal(err)
	}
	if v, err := d.ReadI2(DFChargeTermTaperCurrent); err != nil || v != -20 {
		t.Fatalf("negative I2=%d err=%v", v, err)
	}
	if err := d.WriteU1(DFTCClearRSOCThreshold, 55); err != nil {
		t.Fatal(err)
	}
	if v, err := d.ReadU1(DFTCClearRSOCThreshold); err != nil || v != 55 {
		t.Fatalf("U1=%d err=%v", v, err)
	}

	f.putDF(0x4000, 0x80)
	if v, err := d.ReadI1(0x4000); err != nil || v != -128 {
		t.Fatalf("I1=%d err=%v", v, err)
	}
	f.putDF(0x4010, 0x78, 0x56, 0x34, 0x12)
	if v, err := d.ReadU4(0x4010); err != nil || v != 0x12345678 {
		t.Fatalf("U4=%#x err=%v", v, err)
	}
	bits := math.Float32bits(1.5)
	f.putDF(0x4020, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	if v, err := d.ReadF4(0x4020); err != nil || v != 1.5 {
		t.Fatalf("F4=%v err=%v", v, err)
	}
}

func TestDataFlashStrings(t *testing.T) {
	f := newFakeGauge()
	d, _ := newTestDevice(f, nil)
	f.putDF(DFDeviceName, 7, 'b', 'q', '2', '8', 'z', '6', '1', 0xFF)
	if s, err := d.ReadString(DFDeviceName); err != nil || s != "bq28z61" {
		t.Fatalf("s=%q err=%v", s, err)
	}
	if err := d.WriteString(DFManufacturerName, "Texas Inst."); err != nil {
		t.Fatal(err)
	}
	if s, err := d.ReadString(DFManufacturerName); err != nil || s != "Texas Inst." {
		t.Fatalf("s=%q err=%v", s, err)
	}
}

func TestDumpDataFlash(t *testing.T) {
	f := newFakeGauge()
	f.putDF(0x5FFF, 0xEE)
	d, _ := newTestDevice(f, nil)
	var addrs []uint16
	var last byte
	err := d.DumpDataFlash(func(addr uint16, chunk []byte) error {
		addrs = append(addrs, addr)
		last = chunk[len(chunk)-1]
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 256 || addrs[0] != 0x4000 || addrs[255] != 0x5FE0 {
		t.Fatalf("chunks=%d first=%#04x", len(addrs), addrs[0])
	}
	if last != 0xEE {
		t.Fatalf("last byte=%#02x", last)
	}
	if n := countSub(f.cmds, MACOperationStatus); n != 1 {
		t.Fatalf("security checks=%d", n)
	}
}

func countSub(cmds []uint16, sub uint16) int {
	n := 0
	for _, c := range cmds {
		if c == sub {
			n++
		}
	}
	return n
}

func TestConfigureKeepsSealedGuard(t *testing.T) {
	f := newFakeGauge()
	f.opStatus = uint32(Sealed) << opStatusSecShift
	f.putDF(DFTCSetRSOCThreshold, 60)
	d, _ := newTestDevice(f, nil)

	var events int
	d.Configure(Config{Observer: ObserverFunc(func(Event) { events++ })})
	if _, err := d.ReadU1(DFTCSetRSOCThreshold); !errcode.Is(err, errcode.Sealed) {
		t.Fatalf("partial Configure dropped the guard: err=%v", err)
	}
	if events == 0 {
		t.Fatal("observer not installed")
	}

	d.SetCheckSealed(false)
	v, err := d.ReadU1(DFTCSetRSOCThreshold)
	if err != nil || v != 60 {
		t.Fatalf("v=%d err=%v", v, err)
	}
}
