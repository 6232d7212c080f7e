package bq28z610

// SecurityMode mirrors OperationStatus()[SEC1:SEC0].
type SecurityMode uint8

const (
	FullAccess SecurityMode = 1
	Unsealed   SecurityMode = 2
	Sealed     SecurityMode = 3
)

const opStatusSecShift = 8

func (m SecurityMode) String() string {
	switch m {
	case FullAccess:
		return "full_access"
	case Unsealed:
		return "unsealed"
	case Sealed:
		return "sealed"
	default:
		return "reserved"
	}
}

// SecurityModeOf extracts the security mode from an OperationStatus value.
// Gauges in FULL ACCESS report 0b00 rather than the documented 0b01, so both
// map to FullAccess.
func SecurityModeOf(operationStatus uint32) SecurityMode {
	m := SecurityMode(operationStatus>>opStatusSecShift) & 0x03
	if m == 0 {
		return FullAccess
	}
	return m
}

func (d *Device) SecurityMode() (SecurityMode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.securityMode()
}

// securityMode assumes d.mu is held.
func (d *Device) securityMode() (SecurityMode, error) {
	var buf [PayloadMax]byte
	if err := d.readMAC(MACOperationStatus, &buf, 4); err != nil {
		return 0, err
	}
	return SecurityModeOf(dword(buf[:], 0)), nil
}

// Unseal moves SEALED to UNSEALED by writing the two key words to
// AltManufacturerAccess(), low word first.
func (d *Device) Unseal(key uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeKey(key)
}

// FullAccess moves UNSEALED to FULL ACCESS with the same two-word sequence.
func (d *Device) FullAccess(key uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeKey(key)
}

func (d *Device) writeKey(key uint32) error {
	if err := d.sendWord(regAltManufacturerAccess, uint16(key)); err != nil {
		return d.busErr("unseal", regAltManufacturerAccess, err)
	}
	d.settle(SettleKeyWord)
	if err := d.sendWord(regAltManufacturerAccess, uint16(key>>16)); err != nil {
		return d.busErr("unseal", regAltManufacturerAccess, err)
	}
	d.settle(SettleUnseal)
	return nil
}
