package bq28z610

// Standard data commands. Integer units only.

func (d *Device) stdWord(reg byte) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readWord(reg)
}

func (d *Device) stdS16(reg byte) (int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readS16(reg)
}

func (d *Device) ManufacturerAccessControl() (uint16, error) {
	return d.stdWord(regManufacturerAccessControl)
}

// Temperature_dC converts Temperature() (0.1 K) to 0.1 °C.
func (d *Device) Temperature_dC() (int32, error) {
	v, err := d.stdWord(regTemperature)
	if err != nil {
		return 0, err
	}
	return int32(v) - 2731, nil
}

func (d *Device) Voltage_mV() (uint16, error)            { return d.stdWord(regVoltage) }
func (d *Device) BatteryStatus() (uint16, error)         { return d.stdWord(regBatteryStatus) }
func (d *Device) Current_mA() (int16, error)             { return d.stdS16(regCurrent) }
func (d *Device) RemainingCapacity_mAh() (uint16, error) { return d.stdWord(regRemainingCapacity) }
func (d *Device) FullChargeCapacity_mAh() (uint16, error) {
	return d.stdWord(regFullChargeCapacity)
}
func (d *Device) AverageCurrent_mA() (int16, error)      { return d.stdS16(regAverageCurrent) }
func (d *Device) CycleCount() (uint16, error)            { return d.stdWord(regCycleCount) }
func (d *Device) RelativeStateOfCharge() (uint16, error) { return d.stdWord(regRelativeStateOfCharge) }
func (d *Device) StateOfHealth() (uint16, error)         { return d.stdWord(regStateOfHealth) }
func (d *Device) ChargingVoltage_mV() (uint16, error)    { return d.stdWord(regChargingVoltage) }
func (d *Device) ChargingCurrent_mA() (uint16, error)    { return d.stdWord(regChargingCurrent) }
func (d *Device) DesignCapacity_mAh() (uint16, error)    { return d.stdWord(regDesignCapacity) }

// Snapshot collects the standard telemetry in one pass.
// Zero values remain where individual reads fail.
type Snapshot struct {
	Voltage_mV             uint16
	Current_mA             int16
	AverageCurrent_mA      int16
	Temperature_dC         int32
	RemainingCapacity_mAh  uint16
	FullChargeCapacity_mAh uint16
	DesignCapacity_mAh     uint16
	RSOC_pct               uint16
	SOH_pct                uint16
	CycleCount             uint16
	ChargingVoltage_mV     uint16
	ChargingCurrent_mA     uint16
	BatteryStatus          uint16
}

func (d *Device) Snapshot() Snapshot {
	var s Snapshot
	d.SnapshotInto(&s)
	return s
}

func (d *Device) SnapshotInto(out *Snapshot) {
	var s Snapshot
	if v, e := d.Voltage_mV(); e == nil {
		s.Voltage_mV = v
	}
	if v, e := d.Current_mA(); e == nil {
		s.Current_mA = v
	}
	if v, e := d.AverageCurrent_mA(); e == nil {
		s.AverageCurrent_mA = v
	}
	if v, e := d.Temperature_dC(); e == nil {
		s.Temperature_dC = v
	}
	if v, e := d.RemainingCapacity_mAh(); e == nil {
		s.RemainingCapacity_mAh = v
	}
	if v, e := d.FullChargeCapacity_mAh(); e == nil {
		s.FullChargeCapacity_mAh = v
	}
	if v, e := d.DesignCapacity_mAh(); e == nil {
		s.DesignCapacity_mAh = v
	}
	if v, e := d.RelativeStateOfCharge(); e == nil {
		s.RSOC_pct = v
	}
	if v, e := d.StateOfHealth(); e == nil {
		s.SOH_pct = v
	}
	if v, e := d.CycleCount(); e == nil {
		s.CycleCount = v
	}
	if v, e := d.ChargingVoltage_mV(); e == nil {
		s.ChargingVoltage_mV = v
	}
	if v, e := d.ChargingCurrent_mA(); e == nil {
		s.ChargingCurrent_mA = v
	}
	if v, e := d.BatteryStatus(); e == nil {
		s.BatteryStatus = v
	}
	*out = s
}
