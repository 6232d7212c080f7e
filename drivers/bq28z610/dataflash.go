package bq28z610

import (
	"math"

	"bq28z610-go/errcode"
)

// Data flash is reached through the same block protocol as MAC subcommands,
// using the flash address as the subcommand. Values are stored LSB first.

// ReadDataFlash fills out (1..32 bytes) from data flash starting at addr.
func (d *Device) ReadDataFlash(addr uint16, out []byte) error {
	const op = "df_read"
	if !IsDataFlashAddress(addr) || !IsPayloadSizeValid(len(out)) {
		return errcode.New(errcode.Range, op, "address or length outside data flash")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.guardSealed(op); err != nil {
		return err
	}
	var buf [PayloadMax]byte
	n, err := d.readBlock(addr, buf[:])
	if err != nil {
		return err
	}
	if n < len(out) {
		return errcode.New(errcode.Checksum, op, "short payload")
	}
	copy(out, buf[:len(out)])
	return nil
}

// WriteDataFlash writes data (1..32 bytes) to data flash at addr.
func (d *Device) WriteDataFlash(addr uint16, data []byte) error {
	const op = "df_write"
	if !IsDataFlashAddress(addr) || !IsPayloadSizeValid(len(data)) {
		return errcode.New(errcode.Range, op, "address or length outside data flash")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.guardSealed(op); err != nil {
		return err
	}
	return d.writeBlock(addr, data)
}

// guardSealed refuses data-flash access on a sealed gauge, which would
// answer reads with zeros and drop writes. Caller holds d.mu.
func (d *Device) guardSealed(op string) error {
	if !d.checkSealed {
		return nil
	}
	m, err := d.securityMode()
	if err != nil {
		return err
	}
	if m == Sealed {
		return errcode.New(errcode.Sealed, op, "data flash not accessible while sealed")
	}
	return nil
}

// Typed accessors. Names follow the TI data-flash type column.

func (d *Device) ReadU1(addr uint16) (uint8, error) {
	var b [1]byte
	err := d.ReadDataFlash(addr, b[:])
	return b[0], err
}

func (d *Device) WriteU1(addr uint16, v uint8) error {
	b := [1]byte{v}
	return d.WriteDataFlash(addr, b[:])
}

func (d *Device) ReadI1(addr uint16) (int8, error) {
	v, err := d.ReadU1(addr)
	return int8(v), err
}

func (d *Device) ReadU2(addr uint16) (uint16, error) {
	var b [2]byte
	if err := d.ReadDataFlash(addr, b[:]); err != nil {
		return 0, err
	}
	return word(b[:], 0), nil
}

func (d *Device) WriteU2(addr uint16, v uint16) error {
	var b [2]byte
	PutWord(b[:], v)
	return d.WriteDataFlash(addr, b[:])
}

func (d *Device) ReadI2(addr uint16) (int16, error) {
	v, err := d.ReadU2(addr)
	return int16(v), err
}

func (d *Device) WriteI2(addr uint16, v int16) error { return d.WriteU2(addr, uint16(v)) }

func (d *Device) ReadU4(addr uint16) (uint32, error) {
	var b [4]byte
	if err := d.ReadDataFlash(addr, b[:]); err != nil {
		return 0, err
	}
	return dword(b[:], 0), nil
}

func (d *Device) ReadI4(addr uint16) (int32, error) {
	v, err := d.ReadU4(addr)
	return int32(v), err
}

// ReadF4 reads an IEEE-754 single stored LSB first (calibration gains).
func (d *Device) ReadF4(addr uint16) (float32, error) {
	v, err := d.ReadU4(addr)
	return math.Float32frombits(v), err
}

// ReadString reads a length-prefixed ASCII string: the first payload byte is
// the string length, the remaining bytes are the characters.
func (d *Device) ReadString(addr uint16) (string, error) {
	var buf [PayloadMax]byte
	if err := d.ReadDataFlash(addr, buf[:]); err != nil {
		return "", err
	}
	n := int(buf[0])
	if n > PayloadMax-1 {
		n = PayloadMax - 1
	}
	return string(buf[1 : 1+n]), nil
}

// WriteString stores s with its length prefix. s must fit a single block.
func (d *Device) WriteString(addr uint16, s string) error {
	if len(s) > PayloadMax-1 {
		return errcode.New(errcode.Range, "df_write", "string longer than 31 bytes")
	}
	var buf [PayloadMax]byte
	buf[0] = byte(len(s))
	copy(buf[1:], s)
	return d.WriteDataFlash(addr, buf[:1+len(s)])
}
