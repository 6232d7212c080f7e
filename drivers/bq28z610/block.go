package bq28z610

import (
	"time"

	"bq28z610-go/errcode"
)

// Frame is a raw AltManufacturerAccess() block response:
// [addr lo, addr hi, data0..data31, checksum, length].
type Frame [FrameSize]byte

// Address echoed by the gauge.
func (f *Frame) Address() uint16 { return word(f[:], 0) }

// Length is the total length byte: address + payload + checksum + length.
func (f *Frame) Length() int { return int(f[lengthIndex]) }

func (f *Frame) Checksum() byte { return f[checksumIndex] }

// Payload returns the data bytes announced by the length byte, or nil when
// the length cannot describe a payload of at most 32 bytes.
func (f *Frame) Payload() []byte {
	n := f.Length() - serviceSize
	if n < 0 || n > PayloadMax {
		return nil
	}
	return f[dataIndex : dataIndex+n]
}

// ReadBlock performs one MAC block read for a subcommand or data-flash
// address and copies the payload into out. It returns the number of bytes
// copied, which is min(len(out), payload length).
//
// On a validation failure out is left untouched and the error carries
// errcode.Checksum; the whole exchange may be retried. Bus failures carry
// errcode.IO.
func (d *Device) ReadBlock(sub uint16, out []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readBlock(sub, out)
}

func (d *Device) readBlock(sub uint16, out []byte) (int, error) {
	const op = "block_read"
	if err := d.sendWord(regAltManufacturerAccess, sub); err != nil {
		return 0, d.busErr(op, regAltManufacturerAccess, err)
	}
	d.settle(SettleRead)
	if err := d.sendCommand(regAltManufacturerAccess); err != nil {
		return 0, d.busErr(op, regAltManufacturerAccess, err)
	}
	d.frame = Frame{}
	if err := d.requestBlock(); err != nil {
		return 0, d.busErr(op, regAltManufacturerAccess, err)
	}
	if !Validate(&d.frame) {
		d.emit(Event{Kind: EventFrameReject, Sub: sub, Data: d.frame[:]})
		return 0, errcode.New(errcode.Checksum, op, "frame failed validation")
	}
	p := d.frame.Payload()
	if p == nil {
		d.emit(Event{Kind: EventFrameReject, Sub: sub, Data: d.frame[:]})
		return 0, errcode.New(errcode.Checksum, op, "frame length out of range")
	}
	d.emit(Event{Kind: EventFrame, Sub: sub, Data: p})
	return copy(out, p), nil
}

// Command writes a command-only subcommand and waits settle before
// returning. A zero settle returns immediately after the write.
func (d *Device) Command(sub uint16, settle time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.command(sub, settle)
}

func (d *Device) command(sub uint16, settle time.Duration) error {
	if err := d.sendWord(regAltManufacturerAccess, sub); err != nil {
		return d.busErr("command", regAltManufacturerAccess, err)
	}
	if settle > 0 {
		d.settle(settle)
	}
	return nil
}

// WriteBlock writes payload at addr using the block protocol:
//
//	0x3E <- [addr lo, addr hi, payload...]
//	0x60 <- [checksum(addr + payload), len(payload) + 4]
//
// then waits SettleFlashWrite. Payloads outside [1, 32] bytes are rejected
// with errcode.Range before any bus traffic. No read-back is performed; some
// data-flash locations silently ignore writes.
func (d *Device) WriteBlock(addr uint16, payload []byte) error {
	if !IsPayloadSizeValid(len(payload)) {
		return errcode.New(errcode.Range, "block_write", "payload length")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeBlock(addr, payload)
}

func (d *Device) writeBlock(addr uint16, payload []byte) error {
	const op = "block_write"
	n := addrSize + len(payload)
	body := d.w[1 : 1+n]
	PutWord(body, addr)
	copy(body[addrSize:], payload)
	if err := d.sendData(d.w[:], regAltManufacturerAccess, n); err != nil {
		return d.busErr(op, regAltManufacturerAccess, err)
	}
	d.c[1] = Checksum(body)
	d.c[2] = byte(len(payload) + serviceSize)
	if err := d.sendData(d.c[:], regMACDataChecksum, chkLenSize); err != nil {
		return d.busErr(op, regMACDataChecksum, err)
	}
	d.settle(SettleFlashWrite)
	return nil
}

func (d *Device) settle(t time.Duration) {
	d.emit(Event{Kind: EventSettle, Delay: t})
	d.sleep(t)
}
