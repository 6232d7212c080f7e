package bq28z610

import "testing"

func sealedFake() *fakeGauge {
	f := newFakeGauge()
	f.opStatus = uint32(Sealed) << opStatusSecShift
	return f
}

func TestSetFETControlReseals(t *testing.T) {
	f := sealedFake()
	f.mac[MACManufacturingStatus] = []byte{0x00, 0x00} // FET_EN clear
	d, _ := newTestDevice(f, nil)
	if err := d.SetFETControl(true); err != nil {
		t.Fatal(err)
	}
	want := []uint16{
		MACManufacturingStatus,
		MACOperationStatus,
		uint16(DefaultUnsealKey & 0xFFFF), uint16(DefaultUnsealKey >> 16),
		MACFETControl,
		MACSealDevice,
	}
	if len(f.cmds) != len(want) {
		t.Fatalf("cmds=%04X", f.cmds)
	}
	for i := range want {
		if f.cmds[i] != want[i] {
			t.Fatalf("cmd %d = %#04x", i, f.cmds[i])
		}
	}
}

func TestSetFETControlNoop(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACManufacturingStatus] = []byte{1 << msFETEn, 0x00}
	d, _ := newTestDevice(f, nil)
	if err := d.SetFETControl(true); err != nil {
		t.Fatal(err)
	}
	if len(f.cmds) != 1 {
		t.Fatalf("cmds=%04X", f.cmds)
	}
}

func TestSetChargeFET(t *testing.T) {
	f := sealedFake()
	// FET_EN set, CHG_TEST clear.
	f.mac[MACManufacturingStatus] = []byte{1 << msFETEn, 0x00}
	d, _ := newTestDevice(f, func(c *Config) { c.UnsealKey = 0x11223344 })
	if err := d.SetChargeFET(true); err != nil {
		t.Fatal(err)
	}
	want := []uint16{
		MACManufacturingStatus,
		MACFETControl,
		MACOperationStatus,
		0x3344, 0x1122,
		MACChargeFET,
	}
	if len(f.cmds) != len(want) {
		t.Fatalf("cmds=%04X", f.cmds)
	}
	for i := range want {
		if f.cmds[i] != want[i] {
			t.Fatalf("cmd %d = %#04x", i, f.cmds[i])
		}
	}
}

func TestSetDischargeFETAlreadyThere(t *testing.T) {
	f := newFakeGauge()
	f.mac[MACManufacturingStatus] = []byte{1 << msDSGTest, 0x00}
	d, _ := newTestDevice(f, nil)
	if err := d.SetDischargeFET(true); err != nil {
		t.Fatal(err)
	}
	if countSub(f.cmds, MACDischargeFET) != 0 {
		t.Fatal("toggled a FET already in the requested state")
	}
}

func TestIsPermanentFail(t *testing.T) {
	f := newFakeGauge()
	f.opStatus |= 1 << osPF
	f.words[regBatteryStatus] = 1<<bsTCA | 1<<bsTDA
	d, _ := newTestDevice(f, nil)
	pf, err := d.IsPermanentFail()
	if err != nil || !pf {
		t.Fatalf("pf=%v err=%v", pf, err)
	}
	f.words[regBatteryStatus] = 1 << bsTCA
	if pf, _ := d.IsPermanentFail(); pf {
		t.Fatal("TDA clear must not report PF")
	}
}

func TestSetChargingSocThreshold(t *testing.T) {
	f := newFakeGauge()
	f.putDF(DFSOCFlagConfigA, 0x8C, 0x0C) // TI default 0x0C8C
	f.putDF(DFTCClearRSOCThreshold, 55)
	d, _ := newTestDevice(f, nil)

	if err := d.SetChargingSocThreshold(true, 150, 55); err != nil {
		t.Fatal(err)
	}
	if v := f.df[DFFETOptions-DataFlashMin]; v != 1<<fetOptCHGFET {
		t.Fatalf("FET Options=%#02x", v)
	}
	if v := f.df[DFTCSetRSOCThreshold-DataFlashMin]; v != 100 {
		t.Fatalf("set threshold=%d", v)
	}
	if v := f.df[DFTCClearRSOCThreshold-DataFlashMin]; v != 55 {
		t.Fatalf("clear threshold=%d", v)
	}
	off := DFSOCFlagConfigA - DataFlashMin
	if v := uint16(f.df[off]) | uint16(f.df[off+1])<<8; v != 0x0CCC {
		t.Fatalf("SOC Flag Config A=%#04x", v)
	}

	writes := len(f.writes)
	if err := d.SetChargingSocThreshold(false, 0, 0); err != nil {
		t.Fatal(err)
	}
	if v := f.df[DFFETOptions-DataFlashMin]; v != 0 {
		t.Fatalf("FET Options after disable=%#02x", v)
	}
	if v := f.df[DFTCSetRSOCThreshold-DataFlashMin]; v != 100 {
		t.Fatal("disable must leave thresholds alone")
	}
	if len(f.writes) == writes {
		t.Fatal("disable wrote nothing")
	}
}

func TestLearningCycleInit(t *testing.T) {
	f := newFakeGauge()
	d, _ := newTestDevice(f, nil)
	p := LearningParams{
		DesignCapacity_mAh: 3000,
		DesignEnergy_cWh:   2220,
		QMaxCell1_mAh:      3050,
		QMaxCell2_mAh:      2990,
		CycleCount:         12,
	}
	if err := d.LearningCycleInit(p); err != nil {
		t.Fatal(err)
	}
	rd := func(addr uint16) uint16 {
		o := addr - DataFlashMin
		return uint16(f.df[o]) | uint16(f.df[o+1])<<8
	}
	checks := []struct {
		addr uint16
		want uint16
	}{
		{DFDesignCapacityMAh, 3000},
		{DFDesignCapacityCWh, 2220},
		{DFQmaxCell1, 3050},
		{DFQmaxCell2, 2990},
		{DFQmaxPack, 2990},
		{DFCycleCount, 12},
		{DFCell0RaFlag, 0xFF55},
		{DFCell1RaFlag, 0xFF55},
		{DFXCell0RaFlag, 0xFFFF},
		{DFXCell1RaFlag, 0xFFFF},
	}
	for _, c := range checks {
		if got := rd(c.addr); got != c.want {
			t.Fatalf("%#04x=%d want %d", c.addr, got, c.want)
		}
	}
	if f.df[DFUpdateStatus-DataFlashMin] != 0x04 {
		t.Fatal("update status not set to learning")
	}
}

func TestStatusStructs(t *testing.T) {
	f := newFakeGauge()
	da := make([]byte, PayloadMax)
	PutWord(da[0:], 3712)
	PutWord(da[2:], 3705)
	PutWord(da[10:], 7417)
	PutWord(da[12:], 0xFF9C) // -100 mA
	f.mac[MACDAStatus1] = da

	it2 := make([]byte, 24)
	it2[1] = 0x0E
	it2[6], it2[7], it2[8], it2[9] = 0x10, 0x0E, 0x00, 0x00
	PutWord(it2[14:], 250)
	f.mac[MACITStatus2] = it2

	d, _ := newTestDevice(f, nil)
	s, err := d.DAStatus1()
	if err != nil {
		t.Fatal(err)
	}
	if s.CellVoltage1_mV != 3712 || s.CellVoltage2_mV != 3705 || s.PackVoltage_mV != 7417 || s.CellCurrent1_mA != -100 {
		t.Fatalf("DAStatus1=%+v", s)
	}
	c1, c2, err := d.CellVoltages()
	if err != nil || c1 != 3712 || c2 != 3705 {
		t.Fatalf("cells=%d,%d err=%v", c1, c2, err)
	}

	it, err := d.ITStatus2()
	if err != nil {
		t.Fatal(err)
	}
	if !it.LStatus.ITEnabled() || !it.LStatus.QMaxField() || it.LStatus.QMaxStatus() != 2 {
		t.Fatalf("LStatus=%#02x", uint8(it.LStatus))
	}
	if it.StateTime_s != 3600 {
		t.Fatalf("state time=%d", it.StateTime_s)
	}
	if q, err := d.DOD0PassedQ(); err != nil || q != 250 {
		t.Fatalf("DOD0 passed Q=%d err=%v", q, err)
	}
}
