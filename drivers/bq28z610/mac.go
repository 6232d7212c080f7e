package bq28z610

import "bq28z610-go/errcode"

// readMAC runs a block read into buf and requires at least min payload bytes.
// Caller holds d.mu.
func (d *Device) readMAC(sub uint16, buf *[PayloadMax]byte, min int) error {
	n, err := d.readBlock(sub, buf[:])
	if err != nil {
		return err
	}
	if n < min {
		return errcode.New(errcode.Checksum, "mac_read", "short payload")
	}
	return nil
}

func (d *Device) macWord(sub uint16) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	if err := d.readMAC(sub, &buf, 2); err != nil {
		return 0, err
	}
	return word(buf[:], 0), nil
}

func (d *Device) macDword(sub uint16) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	if err := d.readMAC(sub, &buf, 4); err != nil {
		return 0, err
	}
	return dword(buf[:], 0), nil
}

// ---------------- Identification ----------------

// DeviceType returns the IC part number (0x2610).
func (d *Device) DeviceType() (uint16, error) { return d.macWord(MACDeviceType) }

func (d *Device) HardwareVersion() (uint16, error) { return d.macWord(MACHardwareVersion) }

// ChemicalID of the OCV tables used by the gauging algorithm.
func (d *Device) ChemicalID() (uint16, error) { return d.macWord(MACChemicalID) }

// FirmwareVersion as reported by MAC 0x0002. Word fields are sent MSB first.
type FirmwareVersion struct {
	DeviceNumber uint16
	Version      uint16
	Build        uint16
	FirmwareType uint8
	ITVersion    uint16
}

func (d *Device) FirmwareVersion() (FirmwareVersion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	var fw FirmwareVersion
	if err := d.readMAC(MACFirmwareVersion, &buf, 9); err != nil {
		return fw, err
	}
	// Lengths are checked above; ComposeWord cannot fail here.
	fw.DeviceNumber, _ = ComposeWord(buf[:], 1, false)
	fw.Version, _ = ComposeWord(buf[:], 3, false)
	fw.Build, _ = ComposeWord(buf[:], 5, false)
	fw.FirmwareType = buf[6]
	fw.ITVersion, _ = ComposeWord(buf[:], 8, false)
	return fw, nil
}

// ---------------- Commands ----------------

// DeviceReset resets the gauge. Not available when sealed.
func (d *Device) DeviceReset() error { return d.Command(MACDeviceReset, SettleReset) }

// ToggleChargeFET flips the CHG FET test drive (RAM only, cleared by reset or
// seal). The CHG FET only turns on while the DSG FET is on.
func (d *Device) ToggleChargeFET() error { return d.Command(MACChargeFET, SettleFET) }

// ToggleDischargeFET flips the DSG FET test drive (RAM only).
func (d *Device) ToggleDischargeFET() error { return d.Command(MACDischargeFET, SettleFET) }

// ToggleGauging flips ManufacturingStatus[GAUGE_EN].
func (d *Device) ToggleGauging() error { return d.Command(MACGaugeEnable, SettleFET) }

// ToggleFETControl flips ManufacturingStatus[FET_EN]: firmware FET control on
// or off.
func (d *Device) ToggleFETControl() error { return d.Command(MACFETControl, SettleFET) }

// LifetimeDataReset clears the lifetime counters in data flash.
func (d *Device) LifetimeDataReset() error { return d.Command(MACLifetimeDataReset, 0) }

// PermanentFailDataReset clears PF data in data flash.
func (d *Device) PermanentFailDataReset() error {
	return d.Command(MACPermanentFailDataReset, SettlePFReset)
}

// Seal moves the gauge from UNSEALED or FULL ACCESS to SEALED.
func (d *Device) Seal() error { return d.Command(MACSealDevice, SettleSeal) }
