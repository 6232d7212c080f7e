package bq28z610

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bq28z610-go/errcode"
)

func TestReadBlockDeviceType(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACDeviceType] = []byte{0x10, 0x26}
	d, sl := newTestDevice(f, nil)

	var out [PayloadMax]byte
	n, err := d.ReadBlock(MACDeviceType, out[:])
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || !bytes.Equal(out[:n], []byte{0x10, 0x26}) {
		t.Fatalf("payload=% X", out[:n])
	}
	if w, _ := ComposeWord(out[:n], 0, true); w != 0x2610 {
		t.Fatalf("word=%#04x", w)
	}

	want := [][]byte{{0x3E, 0x01, 0x00}, {0x3E}}
	if len(f.writes) != len(want) {
		t.Fatalf("writes=%v", f.writes)
	}
	for i := range want {
		if !bytes.Equal(f.writes[i], want[i]) {
			t.Fatalf("write %d = % X", i, f.writes[i])
		}
	}
	// 2 writes + address, payload and trailer reads.
	if f.calls != 5 {
		t.Fatalf("calls=%d", f.calls)
	}
	if len(sl.got) != 1 || sl.got[0] != 5*time.Millisecond {
		t.Fatalf("sleeps=%v", sl.got)
	}
}

func TestReadBlockShortOutput(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACDAStatus1] = bytes.Repeat([]byte{0x5A}, PayloadMax)
	d, _ := newTestDevice(f, nil)
	var out [4]byte
	n, err := d.ReadBlock(MACDAStatus1, out[:])
	if err != nil || n != 4 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestReadBlockRejectsZeroFrame(t *testing.T) {
	f := newFakeGauge()
	f.corrupt = true
	d, _ := newTestDevice(f, nil)

	out := bytes.Repeat([]byte{0xAA}, 8)
	n, err := d.ReadBlock(MACDeviceType, out)
	if !errcode.Is(err, errcode.Checksum) {
		t.Fatalf("err=%v", err)
	}
	if !errcode.Retryable(err) {
		t.Fatal("checksum failure should be retryable")
	}
	if n != 0 || !bytes.Equal(out, bytes.Repeat([]byte{0xAA}, 8)) {
		t.Fatalf("output mutated: n=%d % X", n, out)
	}
}

func TestReadBlockRejectsBadLength(t *testing.T) {
	for _, length := range []byte{3, 40} {
		f := newFakeGauge()
		fr := makeFrame(MACDeviceType, []byte{0x10, 0x26})
		fr[lengthIndex] = length
		if !Validate(&fr) {
			t.Fatalf("len=%d: frame should pass the checksum test", length)
		}
		f.raw[MACDeviceType] = fr
		d, _ := newTestDevice(f, nil)
		var out [PayloadMax]byte
		if _, err := d.ReadBlock(MACDeviceType, out[:]); !errcode.Is(err, errcode.Checksum) {
			t.Fatalf("len=%d err=%v", length, err)
		}
	}
}

func TestReadBlockBusError(t *testing.T) {
	for call := 1; call <= 5; call++ {
		f := newFakeGauge()
		f.mac[MACDeviceType] = []byte{0x10, 0x26}
		f.failAt = call
		d, _ := newTestDevice(f, nil)
		var out [2]byte
		_, err := d.ReadBlock(MACDeviceType, out[:])
		if !errcode.Is(err, errcode.IO) || !errors.Is(err, errBus) {
			t.Fatalf("call %d: err=%v", call, err)
		}
		if out != [2]byte{} {
			t.Fatalf("call %d: output mutated", call)
		}
	}
}

func TestWriteBlockWireFormat(t *testing.T) {
	f := newFakeGauge()
	d, sl := newTestDevice(f, nil)

	if err := d.WriteBlock(DFDesignCapacityMAh, []byte{0x64, 0x00}); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x3E, 0x2A, 0x46, 0x64, 0x00},
		{0x60, 0x2B, 0x06},
	}
	if len(f.writes) != 2 {
		t.Fatalf("writes=%v", f.writes)
	}
	for i := range want {
		if !bytes.Equal(f.writes[i], want[i]) {
			t.Fatalf("write %d = % X", i, f.writes[i])
		}
	}
	if len(sl.got) != 1 || sl.got[0] != SettleFlashWrite {
		t.Fatalf("sleeps=%v", sl.got)
	}
	if f.df[DFDesignCapacityMAh-DataFlashMin] != 0x64 {
		t.Fatal("fake did not accept the write")
	}
}

func TestWriteBlockRejectsLength(t *testing.T) {
	for _, n := range []int{0, 33} {
		f := newFakeGauge()
		d, sl := newTestDevice(f, nil)
		err := d.WriteBlock(0x4000, make([]byte, n))
		if !errcode.Is(err, errcode.Range) {
			t.Fatalf("len=%d err=%v", n, err)
		}
		if errcode.Retryable(err) {
			t.Fatal("range errors are not retryable")
		}
		if f.calls != 0 || len(sl.got) != 0 {
			t.Fatalf("len=%d touched the bus: calls=%d", n, f.calls)
		}
	}
}

func TestCommandSettle(t *testing.T) {
	f := newFakeGauge()
	d, sl := newTestDevice(f, nil)
	steps := []struct {
		run  func() error
		sub  uint16
		wait time.Duration
	}{
		{d.DeviceReset, MACDeviceReset, 500 * time.Millisecond},
		{d.ToggleChargeFET, MACChargeFET, 500 * time.Millisecond},
		{d.ToggleDischargeFET, MACDischargeFET, 500 * time.Millisecond},
		{d.ToggleGauging, MACGaugeEnable, 500 * time.Millisecond},
		{d.ToggleFETControl, MACFETControl, 500 * time.Millisecond},
		{d.PermanentFailDataReset, MACPermanentFailDataReset, 1000 * time.Millisecond},
		{d.Seal, MACSealDevice, 500 * time.Millisecond},
	}
	for i, s := range steps {
		if err := s.run(); err != nil {
			t.Fatal(err)
		}
		if f.cmds[i] != s.sub || sl.got[i] != s.wait {
			t.Fatalf("step %d: sub=%#04x wait=%v", i, f.cmds[i], sl.got[i])
		}
	}
	if err := d.LifetimeDataReset(); err != nil {
		t.Fatal(err)
	}
	if len(sl.got) != len(steps) {
		t.Fatalf("lifetime reset should not wait: %v", sl.got)
	}
}

func TestObserverSeesExchange(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACDeviceType] = []byte{0x10, 0x26}
	var kinds []EventKind
	d, _ := newTestDevice(f, func(c *Config) {
		c.Observer = ObserverFunc(func(e Event) { kinds = append(kinds, e.Kind) })
	})
	if _, err := d.DeviceType(); err != nil {
		t.Fatal(err)
	}
	want := []EventKind{EventCommand, EventSettle, EventCommand, EventFrame}
	if len(kinds) != len(want) {
		t.Fatalf("events=%v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d = %s", i, kinds[i])
		}
	}
}

func TestFirmwareVersion(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACFirmwareVersion] = []byte{0x26, 0x10, 0x00, 0x17, 0x00, 0x16, 0x00, 0x03, 0x85, 0x00, 0x00}
	d, _ := newTestDevice(f, nil)
	fw, err := d.FirmwareVersion()
	if err != nil {
		t.Fatal(err)
	}
	want := FirmwareVersion{DeviceNumber: 0x2610, Version: 0x0017, Build: 0x0016, ITVersion: 0x0385}
	if fw != want {
		t.Fatalf("fw=%+v", fw)
	}
}

func TestMACShortPayload(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACGaugingStatus] = []byte{0x01, 0x02}
	d, _ := newTestDevice(f, nil)
	if _, err := d.GaugingStatus(); !errcode.Is(err, errcode.Checksum) {
		t.Fatalf("err=%v", err)
	}
}

// txRecord is one bus transaction as seen by lockedBus.
type txRecord struct {
	w     []byte
	nRead int
}

// lockedBus serialises access to a fakeGauge and records every Tx.
type lockedBus struct {
	mu  sync.Mutex
	g   *fakeGauge
	log []txRecord
}

func (b *lockedBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, txRecord{w: append([]byte(nil), w...), nRead: len(r)})
	return b.g.Tx(addr, w, r)
}

func TestReadBlockExchangesDoNotInterleave(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACDeviceType] = []byte{0x10, 0x26}
	f.mac[MACHardwareVersion] = []byte{0xA1, 0x00}
	bus := &lockedBus{g: f}
	cfg := DefaultConfig()
	cfg.Sleep = func(time.Duration) {}
	d := New(bus, cfg)

	const workers, rounds = 8, 25
	var wg sync.WaitGroup
	errc := make(chan error, workers*rounds)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				if i%2 == 0 {
					if v, err := d.DeviceType(); err != nil || v != 0x2610 {
						errc <- fmt.Errorf("device type %#04x: %v", v, err)
					}
				} else {
					var out [PayloadMax]byte
					n, err := d.ReadBlock(MACHardwareVersion, out[:])
					if err != nil || !bytes.Equal(out[:n], []byte{0xA1, 0x00}) {
						errc <- fmt.Errorf("hardware version % X: %v", out[:n], err)
					}
				}
			}
		}(i)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Error(err)
	}

	// Each exchange is [3E lo hi], [3E], then reads of 2, 32 and 2 bytes.
	log := bus.log
	if len(log) != workers*rounds*5 {
		t.Fatalf("tx count=%d", len(log))
	}
	for i := 0; i < len(log); i += 5 {
		sel, ptr := log[i], log[i+1]
		if len(sel.w) != 3 || sel.w[0] != regAltManufacturerAccess || sel.nRead != 0 {
			t.Fatalf("tx %d: want subcommand write, got w=% X r=%d", i, sel.w, sel.nRead)
		}
		if !bytes.Equal(ptr.w, []byte{regAltManufacturerAccess}) || ptr.nRead != 0 {
			t.Fatalf("tx %d: want pointer write, got w=% X r=%d", i+1, ptr.w, ptr.nRead)
		}
		for k, n := range []int{2, 32, 2} {
			rd := log[i+2+k]
			if len(rd.w) != 0 || rd.nRead != n {
				t.Fatalf("tx %d: want %d-byte read, got w=% X r=%d", i+2+k, n, rd.w, rd.nRead)
			}
		}
	}
}
