package gaugesim

import "bq28z610-go/x/mathx"

// word answers a standard command read.
func (g *Gauge) word(reg byte) uint16 {
	full := float64(g.opts.DesignCap_mAh)
	switch reg {
	case regManufacturerAccessControl:
		return uint16(g.sec) << 13
	case regTemperature:
		return uint16(int32(g.opts.Temp_dC) + 2731)
	case regVoltage:
		return g.opts.Cell1_mV + g.opts.Cell2_mV
	case regBatteryStatus:
		var v uint16
		if g.opts.Current_mA < 0 {
			v |= 1 << 6 // DSG
		}
		if g.opStatus&(1<<opPF) != 0 {
			v |= 1<<14 | 1<<11 // TCA, TDA
		}
		return v
	case regCurrent, regAverageCurrent:
		return uint16(g.opts.Current_mA)
	case regRemainingCapacity:
		return uint16(g.remaining)
	case regFullChargeCapacity, regDesignCapacity:
		return g.opts.DesignCap_mAh
	case regCycleCount:
		return g.cycles
	case regRelativeStateOfCharge:
		return uint16(mathx.Clamp(g.remaining*100/full+0.5, 0, 100))
	case regStateOfHealth:
		return 100
	case regChargingVoltage:
		return 8400
	case regChargingCurrent:
		return 1500
	}
	return 0
}
