package bq28z610

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeGauge)(nil)

var errBus = errors.New("nack")

// Scripted BQ28Z610-like fake: MAC payloads by subcommand, an 8 KiB data
// flash, and standard word registers.
type fakeGauge struct {
	mac      map[uint16][]byte
	raw      map[uint16]Frame // served verbatim
	words    map[byte]uint16
	df       [int(DataFlashMax-DataFlashMin) + 1]byte
	opStatus uint32

	corrupt bool // answer every block read with zeros
	failAt  int  // 1-based Tx call to fail, 0 = never

	calls  int
	writes [][]byte
	cmds   []uint16 // words written to 0x3E

	sub     uint16
	pending []byte
	frame   Frame
	cursor  int
}

func newFakeGauge() *fakeGauge {
	return &fakeGauge{
		mac:      map[uint16][]byte{},
		raw:      map[uint16]Frame{},
		words:    map[byte]uint16{},
		opStatus: uint32(Unsealed) << opStatusSecShift,
	}
}

func (f *fakeGauge) Tx(addr uint16, w, r []byte) error {
	f.calls++
	if f.failAt == f.calls {
		return errBus
	}
	if len(w) > 0 && len(r) > 0 {
		v := f.words[w[0]]
		r[0], r[1] = byte(v), byte(v>>8)
		return nil
	}
	if len(w) > 0 {
		f.writes = append(f.writes, append([]byte(nil), w...))
		switch w[0] {
		case regAltManufacturerAccess:
			switch {
			case len(w) == 1:
				f.frame = f.respond(f.sub)
				f.cursor = 0
			case len(w) == 3:
				f.sub = uint16(w[1]) | uint16(w[2])<<8
				f.cmds = append(f.cmds, f.sub)
			default:
				f.pending = append([]byte(nil), w[1:]...)
			}
		case regMACDataChecksum:
			f.commit(w[1], w[2])
		}
		return nil
	}
	f.cursor += copy(r, f.frame[f.cursor:])
	return nil
}

func (f *fakeGauge) respond(sub uint16) Frame {
	if f.corrupt {
		return Frame{}
	}
	if fr, ok := f.raw[sub]; ok {
		return fr
	}
	if p, ok := f.mac[sub]; ok {
		return makeFrame(sub, p)
	}
	if sub == MACOperationStatus {
		var p [4]byte
		p[0], p[1], p[2], p[3] = byte(f.opStatus), byte(f.opStatus>>8), byte(f.opStatus>>16), byte(f.opStatus>>24)
		return makeFrame(sub, p[:])
	}
	if IsDataFlashAddress(sub) {
		off := int(sub - DataFlashMin)
		end := off + PayloadMax
		if end > len(f.df) {
			end = len(f.df)
		}
		return makeFrame(sub, f.df[off:end])
	}
	return Frame{}
}

func (f *fakeGauge) commit(cs, length byte) {
	p := f.pending
	f.pending = nil
	if len(p) < addrSize || Checksum(p) != cs || int(length) != len(p)+chkLenSize {
		return
	}
	addr := uint16(p[0]) | uint16(p[1])<<8
	if IsDataFlashAddress(addr) {
		copy(f.df[addr-DataFlashMin:], p[addrSize:])
	}
}

func (f *fakeGauge) putDF(addr uint16, b ...byte) { copy(f.df[addr-DataFlashMin:], b) }

func makeFrame(sub uint16, payload []byte) Frame {
	var fr Frame
	PutWord(fr[:2], sub)
	copy(fr[dataIndex:], payload)
	fr[checksumIndex] = Checksum(fr[:dataIndex+len(payload)])
	fr[lengthIndex] = byte(len(payload) + serviceSize)
	return fr
}

type sleepLog struct{ got []time.Duration }

func (s *sleepLog) sleep(d time.Duration) { s.got = append(s.got, d) }

func newTestDevice(f *fakeGauge, mod func(*Config)) (*Device, *sleepLog) {
	sl := &sleepLog{}
	cfg := DefaultConfig()
	cfg.Sleep = sl.sleep
	if mod != nil {
		mod(&cfg)
	}
	return New(f, cfg), sl
}

func noSealCheck(c *Config) { c.CheckSealed = false }
