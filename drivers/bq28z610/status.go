package bq28z610

// ---------------- Status words ----------------

func (d *Device) SafetyAlert() (uint32, error)     { return d.macDword(MACSafetyAlert) }
func (d *Device) SafetyStatus() (uint32, error)    { return d.macDword(MACSafetyStatus) }
func (d *Device) PFAlert() (uint32, error)         { return d.macDword(MACPFAlert) }
func (d *Device) PFStatus() (uint32, error)        { return d.macDword(MACPFStatus) }
func (d *Device) OperationStatus() (uint32, error) { return d.macDword(MACOperationStatus) }
func (d *Device) GaugingStatus() (uint32, error)   { return d.macDword(MACGaugingStatus) }

func (d *Device) ChargingStatus() (uint16, error)      { return d.macWord(MACChargingStatus) }
func (d *Device) ManufacturingStatus() (uint16, error) { return d.macWord(MACManufacturingStatus) }

// ---------------- DAStatus1 (0x0071) ----------------

// DAStatus1 holds the cell and pack measurements. Power in cW.
type DAStatus1 struct {
	CellVoltage1_mV uint16
	CellVoltage2_mV uint16
	BatVoltage_mV   uint16 // VC2 (BAT) terminal
	PackVoltage_mV  uint16
	CellCurrent1_mA int16
	CellCurrent2_mA int16
	CellPower1_cW   int16
	CellPower2_cW   int16
	Power_cW        int16 // Voltage() x Current()
	AvgPower_cW     int16 // Voltage() x AverageCurrent()
}

const (
	daCellVoltage1 = 0
	daCellVoltage2 = 2
	daBatVoltage   = 8
	daPackVoltage  = 10
	daCellCurrent1 = 12
	daCellCurrent2 = 14
	daCellPower1   = 20
	daCellPower2   = 22
	daPower        = 28
	daAvgPower     = 30
)

func (d *Device) DAStatus1() (DAStatus1, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	var s DAStatus1
	if err := d.readMAC(MACDAStatus1, &buf, PayloadMax); err != nil {
		return s, err
	}
	b := buf[:]
	s.CellVoltage1_mV = word(b, daCellVoltage1)
	s.CellVoltage2_mV = word(b, daCellVoltage2)
	s.BatVoltage_mV = word(b, daBatVoltage)
	s.PackVoltage_mV = word(b, daPackVoltage)
	s.CellCurrent1_mA = int16(word(b, daCellCurrent1))
	s.CellCurrent2_mA = int16(word(b, daCellCurrent2))
	s.CellPower1_cW = int16(word(b, daCellPower1))
	s.CellPower2_cW = int16(word(b, daCellPower2))
	s.Power_cW = int16(word(b, daPower))
	s.AvgPower_cW = int16(word(b, daAvgPower))
	return s, nil
}

// CellVoltages returns the two cell voltages from DAStatus1.
func (d *Device) CellVoltages() (cell1_mV, cell2_mV uint16, err error) {
	s, err := d.DAStatus1()
	return s.CellVoltage1_mV, s.CellVoltage2_mV, err
}

// ---------------- Impedance Track status ----------------

// ITStatus1 (0x0073): IT simulation results. Temperatures in 0.1 K.
type ITStatus1 struct {
	TrueRemQ_mAh     int16 // before filtering; may be negative or above FCC
	TrueRemE_cWh     int16
	InitialQ_mAh     int16
	InitialE_cWh     int16
	TrueFullChgQ_mAh int16
	TrueFullChgE_cWh int16
	TSim_dK          uint16
	TAmbient_dK      uint16
	RaScale0         uint16
	RaScale1         uint16
	CompRes1         uint16
	CompRes2         uint16
}

func (d *Device) ITStatus1() (ITStatus1, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	var s ITStatus1
	if err := d.readMAC(MACITStatus1, &buf, 24); err != nil {
		return s, err
	}
	b := buf[:]
	s.TrueRemQ_mAh = int16(word(b, 0))
	s.TrueRemE_cWh = int16(word(b, 2))
	s.InitialQ_mAh = int16(word(b, 4))
	s.InitialE_cWh = int16(word(b, 6))
	s.TrueFullChgQ_mAh = int16(word(b, 8))
	s.TrueFullChgE_cWh = int16(word(b, 10))
	s.TSim_dK = word(b, 12)
	s.TAmbient_dK = word(b, 14)
	s.RaScale0 = word(b, 16)
	s.RaScale1 = word(b, 18)
	s.CompRes1 = word(b, 20)
	s.CompRes2 = word(b, 22)
	return s, nil
}

// LStatus is the learned status of the resistance table (ITStatus2 byte 1).
//
//	0x00 IT disabled, 0x04 learning, 0x05 QMax updated,
//	0x06 resistance table updated, 0x0E learning finished
type LStatus uint8

// QMaxStatus is CF1:CF0: 0 battery OK, 1 QMax first updated, 2 QMax and Ra
// updated in the learning cycle.
func (l LStatus) QMaxStatus() uint8 { return uint8(l) & 0x03 }
func (l LStatus) ITEnabled() bool   { return l&(1<<2) != 0 }
func (l LStatus) QMaxField() bool   { return l&(1<<3) != 0 }

// ITStatus2 (0x0074): gauging grid points and DOD bookkeeping.
type ITStatus2 struct {
	PackGrid         uint8
	LStatus          LStatus
	CellGrid1        uint8
	CellGrid2        uint8
	StateTime_s      uint32 // since the last discharge/charge/rest change
	DOD0_1           uint16
	DOD0_2           uint16
	DOD0PassedQ_mAh  int16
	DOD0PassedE_cWh  int16
	DOD0Time         uint16
	DODEOC1, DODEOC2 uint16
}

const itDOD0PassedQ = 14

func (d *Device) ITStatus2() (ITStatus2, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	var s ITStatus2
	if err := d.readMAC(MACITStatus2, &buf, 24); err != nil {
		return s, err
	}
	b := buf[:]
	s.PackGrid = b[0]
	s.LStatus = LStatus(b[1])
	s.CellGrid1 = b[2]
	s.CellGrid2 = b[3]
	s.StateTime_s, _ = ComposeValue(b, 6, 9)
	s.DOD0_1 = word(b, 10)
	s.DOD0_2 = word(b, 12)
	s.DOD0PassedQ_mAh = int16(word(b, itDOD0PassedQ))
	s.DOD0PassedE_cWh = int16(word(b, 16))
	s.DOD0Time = word(b, 18)
	s.DODEOC1 = word(b, 20)
	s.DODEOC2 = word(b, 22)
	return s, nil
}

// DOD0PassedQ is the charge passed since the last DOD0 update.
func (d *Device) DOD0PassedQ() (int16, error) {
	s, err := d.ITStatus2()
	return s.DOD0PassedQ_mAh, err
}

// ITStatus3 (0x0075): QMax bookkeeping and thermal model.
type ITStatus3 struct {
	QMax1_mAh       uint16
	QMax2_mAh       uint16
	QMaxDOD0_1      uint16
	QMaxDOD0_2      uint16
	QMaxPassedQ_mAh uint16
	QMaxTime        uint16 // hours / 16
	Tk              uint16
	Ta              uint16
	RawDOD0_1       uint16
	RawDOD0_2       uint16
}

func (d *Device) ITStatus3() (ITStatus3, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf [PayloadMax]byte
	var s ITStatus3
	if err := d.readMAC(MACITStatus3, &buf, 20); err != nil {
		return s, err
	}
	b := buf[:]
	s.QMax1_mAh = word(b, 0)
	s.QMax2_mAh = word(b, 2)
	s.QMaxDOD0_1 = word(b, 4)
	s.QMaxDOD0_2 = word(b, 6)
	s.QMaxPassedQ_mAh = word(b, 8)
	s.QMaxTime = word(b, 10)
	s.Tk = word(b, 12)
	s.Ta = word(b, 14)
	s.RawDOD0_1 = word(b, 16)
	s.RawDOD0_2 = word(b, 18)
	return s, nil
}
