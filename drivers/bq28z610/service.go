package bq28z610

import "bq28z610-go/x/mathx"

// Service procedures built from several exchanges. Each exchange locks on its
// own; a procedure as a whole is not atomic.

func (d *Device) configuredKey() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unsealKey
}

// unsealIfSealed unseals with the configured key and reports whether the gauge
// was sealed.
func (d *Device) unsealIfSealed() (bool, error) {
	m, err := d.SecurityMode()
	if err != nil {
		return false, err
	}
	if m != Sealed {
		return false, nil
	}
	return true, d.Unseal(d.configuredKey())
}

// SetChargeFET drives the CHG FET test state to on. Firmware FET control is
// disabled first, and the gauge is left unsealed if it had to be unsealed.
func (d *Device) SetChargeFET(on bool) error {
	return d.setTestFET(msCHGTest, on, d.ToggleChargeFET)
}

// SetDischargeFET drives the DSG FET test state to on.
func (d *Device) SetDischargeFET(on bool) error {
	return d.setTestFET(msDSGTest, on, d.ToggleDischargeFET)
}

func (d *Device) setTestFET(bit uint8, on bool, toggle func() error) error {
	ms, err := d.ManufacturingStatus()
	if err != nil {
		return err
	}
	if ms&(1<<msFETEn) != 0 {
		if err := d.ToggleFETControl(); err != nil {
			return err
		}
	}
	if (ms&(1<<bit) != 0) == on {
		return nil
	}
	if _, err := d.unsealIfSealed(); err != nil {
		return err
	}
	return toggle()
}

// SetFETControl brings ManufacturingStatus[FET_EN] to on, resealing the gauge
// afterwards if it was sealed.
func (d *Device) SetFETControl(on bool) error {
	ms, err := d.ManufacturingStatus()
	if err != nil {
		return err
	}
	if (ms&(1<<msFETEn) != 0) == on {
		return nil
	}
	wasSealed, err := d.unsealIfSealed()
	if err != nil {
		return err
	}
	if err := d.ToggleFETControl(); err != nil {
		return err
	}
	if wasSealed {
		return d.Seal()
	}
	return nil
}

// IsPermanentFail reports OperationStatus[PF] with BatteryStatus[TCA] and
// BatteryStatus[TDA] all set.
func (d *Device) IsPermanentFail() (bool, error) {
	op, err := d.OperationStatus()
	if err != nil {
		return false, err
	}
	bs, err := d.BatteryStatus()
	if err != nil {
		return false, err
	}
	return op&(1<<osPF) != 0 && bs&(1<<bsTCA) != 0 && bs&(1<<bsTDA) != 0, nil
}

// Default RSOC thresholds for charge limiting.
const (
	ChargeStopDefault_pct   = 60
	ChargeResumeDefault_pct = 55
)

// SetChargingSocThreshold makes the gauge turn the CHG FET off when RSOC
// reaches stop and back on below resume. Disabling only clears
// FET Options[CHGFET]; the thresholds are left as they are.
// Thresholds are clamped to 0..100 and only written when they differ.
func (d *Device) SetChargingSocThreshold(enabled bool, stop, resume uint8) error {
	fet, err := d.ReadU1(DFFETOptions)
	if err != nil {
		return err
	}
	if next := mathx.SetBit(fet, fetOptCHGFET, enabled); next != fet {
		if err := d.WriteU1(DFFETOptions, next); err != nil {
			return err
		}
	}
	if !enabled {
		return nil
	}
	if err := d.writeU1IfChanged(DFTCSetRSOCThreshold, mathx.Clamp(stop, 0, rsocPercentMax)); err != nil {
		return err
	}
	if err := d.writeU1IfChanged(DFTCClearRSOCThreshold, mathx.Clamp(resume, 0, rsocPercentMax)); err != nil {
		return err
	}
	cfg, err := d.ReadU2(DFSOCFlagConfigA)
	if err != nil {
		return err
	}
	next := mathx.SetBit(cfg, socTCSetV, false)
	next = mathx.SetBit(next, socTCClearV, false)
	next = mathx.SetBit(next, socTCSetRSOC, true)
	next = mathx.SetBit(next, socTCClearRSOC, true)
	if next == cfg {
		return nil
	}
	return d.WriteU2(DFSOCFlagConfigA, next)
}

func (d *Device) writeU1IfChanged(addr uint16, v uint8) error {
	cur, err := d.ReadU1(addr)
	if err != nil {
		return err
	}
	if cur == v {
		return nil
	}
	return d.WriteU1(addr, v)
}

// ResetRaTableFlags restores the Ra table flags to "never updated": cell
// tables in use, xCell tables unused.
func (d *Device) ResetRaTableFlags() error {
	for _, f := range [...]struct {
		addr uint16
		v    uint16
	}{
		{DFCell0RaFlag, raTableUsed},
		{DFCell1RaFlag, raTableUsed},
		{DFXCell0RaFlag, raTableNotUsed},
		{DFXCell1RaFlag, raTableNotUsed},
	} {
		if err := d.WriteU2(f.addr, f.v); err != nil {
			return err
		}
	}
	return nil
}

// LearningParams seed a learning cycle.
type LearningParams struct {
	DesignCapacity_mAh int16
	DesignEnergy_cWh   int16 // pack voltage x capacity / 10
	QMaxCell1_mAh      int16
	QMaxCell2_mAh      int16
	CycleCount         uint16 // 0 for a new pack
}

// LearningCycleInit writes design capacity and energy, QMax (pack = lower
// cell), Update Status 0x04 and the cycle count, then resets the Ra flags.
func (d *Device) LearningCycleInit(p LearningParams) error {
	steps := [...]struct {
		addr uint16
		v    int16
	}{
		{DFDesignCapacityMAh, p.DesignCapacity_mAh},
		{DFDesignCapacityCWh, p.DesignEnergy_cWh},
		{DFQmaxCell1, p.QMaxCell1_mAh},
		{DFQmaxCell2, p.QMaxCell2_mAh},
		{DFQmaxPack, mathx.Min(p.QMaxCell1_mAh, p.QMaxCell2_mAh)},
	}
	for _, s := range steps {
		if err := d.WriteI2(s.addr, s.v); err != nil {
			return err
		}
	}
	if err := d.WriteU1(DFUpdateStatus, updateLearning); err != nil {
		return err
	}
	if err := d.WriteU2(DFCycleCount, p.CycleCount); err != nil {
		return err
	}
	return d.ResetRaTableFlags()
}

// LearningSample is one line of a learning-cycle log.
type LearningSample struct {
	CellVoltage1_mV uint16
	CellVoltage2_mV uint16
	PackVoltage_mV  uint16
	Current_mA      int16
	Temperature_dC  int32
	RSOC_pct        uint16
	QMaxCell1_mAh   int16
	QMaxCell2_mAh   int16
	QMaxPack_mAh    int16
	GaugingStatus   uint32
	UpdateStatus    uint8
}

// LearningSample gathers the values worth logging during a learning cycle.
// The first failing read aborts the sample.
func (d *Device) LearningSample() (LearningSample, error) {
	var s LearningSample
	da, err := d.DAStatus1()
	if err != nil {
		return s, err
	}
	s.CellVoltage1_mV = da.CellVoltage1_mV
	s.CellVoltage2_mV = da.CellVoltage2_mV
	s.PackVoltage_mV = da.PackVoltage_mV
	if s.RSOC_pct, err = d.RelativeStateOfCharge(); err != nil {
		return s, err
	}
	if s.GaugingStatus, err = d.GaugingStatus(); err != nil {
		return s, err
	}
	if s.Current_mA, err = d.Current_mA(); err != nil {
		return s, err
	}
	if s.Temperature_dC, err = d.Temperature_dC(); err != nil {
		return s, err
	}
	if s.QMaxCell1_mAh, err = d.ReadI2(DFQmaxCell1); err != nil {
		return s, err
	}
	if s.QMaxCell2_mAh, err = d.ReadI2(DFQmaxCell2); err != nil {
		return s, err
	}
	if s.QMaxPack_mAh, err = d.ReadI2(DFQmaxPack); err != nil {
		return s, err
	}
	s.UpdateStatus, err = d.ReadU1(DFUpdateStatus)
	return s, err
}

// OCCThreshold_mA is the overcurrent-in-charge trip threshold.
func (d *Device) OCCThreshold_mA() (int16, error) { return d.ReadI2(DFOCCThreshold) }

// SetOCCThreshold_mA should stay at or below FullChargeCapacity/2.
func (d *Device) SetOCCThreshold_mA(mA int16) error { return d.WriteI2(DFOCCThreshold, mA) }
