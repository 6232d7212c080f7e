package bq28z610

import "bq28z610-go/errcode"

// Register-level primitives. All of them assume d.mu is held and use the
// Device scratch buffers, so they never allocate.

// sendCommand selects reg without a payload; used to point the next read at
// AltManufacturerAccess().
func (d *Device) sendCommand(reg byte) error {
	d.w[0] = reg
	d.emit(Event{Kind: EventCommand, Reg: reg})
	return d.i2c.Tx(d.addr, d.w[:1], nil)
}

// sendWord writes a 16-bit value LSB first: 0x4321 to REG -> [REG, 0x21, 0x43].
func (d *Device) sendWord(reg byte, v uint16) error {
	d.w[0] = reg
	PutWord(d.w[1:3], v)
	d.emit(Event{Kind: EventCommand, Reg: reg, Sub: v, Data: d.w[1:3]})
	return d.i2c.Tx(d.addr, d.w[:3], nil)
}

// sendData writes reg followed by the n bytes already staged, in wire order,
// at buf[1:].
func (d *Device) sendData(buf []byte, reg byte, n int) error {
	buf[0] = reg
	d.emit(Event{Kind: EventWrite, Reg: reg, Data: buf[1 : 1+n]})
	return d.i2c.Tx(d.addr, buf[:1+n], nil)
}

// requestBytes reads len(buf) bytes from the last selected register.
func (d *Device) requestBytes(buf []byte) error {
	return d.i2c.Tx(d.addr, nil, buf)
}

// requestBlock fills d.frame in three reads: address, payload, trailer.
func (d *Device) requestBlock() error {
	if err := d.requestBytes(d.frame[:dataIndex]); err != nil {
		return err
	}
	if err := d.requestBytes(d.frame[dataIndex:checksumIndex]); err != nil {
		return err
	}
	return d.requestBytes(d.frame[checksumIndex:])
}

// Standard commands are plain 16-bit words (LOW then HIGH) read with a
// repeated start.

func (d *Device) readWord(reg byte) (uint16, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:2]); err != nil {
		return 0, d.busErr("read_word", reg, err)
	}
	return word(d.r[:], 0), nil
}

func (d *Device) readS16(reg byte) (int16, error) {
	u, err := d.readWord(reg)
	return int16(u), err
}

// busErr reports a failed primitive and wraps it as errcode.IO.
func (d *Device) busErr(op string, reg byte, err error) error {
	d.emit(Event{Kind: EventBusError, Reg: reg, Err: err})
	return errcode.Wrap(errcode.IO, op, err)
}
