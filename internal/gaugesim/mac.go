package gaugesim

import (
	"encoding/binary"

	"bq28z610-go/drivers/bq28z610"
)

const (
	frameChecksum = bq28z610.FrameSize - 2
	frameLength   = bq28z610.FrameSize - 1
)

// subcommand handles a bare 16-bit write to AltManufacturerAccess().
func (g *Gauge) subcommand(v uint16) {
	g.sub = v
	prev := g.lastKey
	g.lastKey = v
	switch {
	case g.sec == bq28z610.Sealed &&
		prev == uint16(g.opts.UnsealKey) && v == uint16(g.opts.UnsealKey>>16):
		g.setSecurity(bq28z610.Unsealed)
		return
	case g.sec == bq28z610.Unsealed &&
		prev == uint16(g.opts.FullAccessKey) && v == uint16(g.opts.FullAccessKey>>16):
		g.setSecurity(bq28z610.FullAccess)
		g.lastKey = 0
		return
	}
	if g.sec == bq28z610.Sealed {
		return
	}
	switch v {
	case bq28z610.MACDeviceReset:
		g.mfgStatus = 1<<mfgGAUG | 1<<mfgFET
		g.opStatus |= 1<<opCHG | 1<<opDSG
	case bq28z610.MACChargeFET:
		g.mfgStatus ^= 1 << mfgCHG
		g.driveFETs()
	case bq28z610.MACDischargeFET:
		g.mfgStatus ^= 1 << mfgDSG
		g.driveFETs()
	case bq28z610.MACGaugeEnable:
		g.mfgStatus ^= 1 << mfgGAUG
	case bq28z610.MACFETControl:
		g.mfgStatus ^= 1 << mfgFET
		g.driveFETs()
	case bq28z610.MACLifetimeDataReset:
		o := 0x4280 - int(bq28z610.DataFlashMin)
		for i := 0; i < 8; i++ {
			g.df[o+i] = 0
		}
		g.df[o+8] = 0x80 // max temp -128
		g.df[o+9] = 0x7F // min temp 127
	case bq28z610.MACPermanentFailDataReset:
		g.opStatus &^= 1 << opPF
	case bq28z610.MACSealDevice:
		g.setSecurity(bq28z610.Sealed)
		g.mfgStatus &^= 1<<mfgCHG | 1<<mfgDSG
		g.driveFETs()
	}
}

func (g *Gauge) setSecurity(m bq28z610.SecurityMode) {
	g.sec = m
	g.opStatus = g.opStatus&^(3<<opSEC0) | uint32(m)<<opSEC0
}

// driveFETs mirrors the FET drive into OperationStatus. With FET_EN set the
// firmware keeps both FETs on; otherwise the test bits decide, and CHG
// follows DSG.
func (g *Gauge) driveFETs() {
	chg, dsg := true, true
	if g.mfgStatus&(1<<mfgFET) == 0 {
		dsg = g.mfgStatus&(1<<mfgDSG) != 0
		chg = dsg && g.mfgStatus&(1<<mfgCHG) != 0
	}
	g.opStatus &^= 1<<opCHG | 1<<opDSG
	if chg {
		g.opStatus |= 1 << opCHG
	}
	if dsg {
		g.opStatus |= 1 << opDSG
	}
}

// respond builds the frame returned for the last subcommand.
func (g *Gauge) respond(sub uint16) bq28z610.Frame {
	if g.corrupt {
		return bq28z610.Frame{}
	}
	var p [bq28z610.PayloadMax]byte
	n := 0
	switch {
	case bq28z610.IsDataFlashAddress(sub):
		if g.sec == bq28z610.Sealed {
			return bq28z610.Frame{}
		}
		o := int(sub - bq28z610.DataFlashMin)
		n = copy(p[:], g.df[o:])
	case sub == bq28z610.MACDeviceType:
		n = le16(p[:], 0x2610)
	case sub == bq28z610.MACFirmwareVersion:
		copy(p[:], []byte{0x26, 0x10, 0x00, 0x17, 0x00, 0x16, 0x00, 0x03, 0x85, 0x00, 0x00})
		n = 11
	case sub == bq28z610.MACHardwareVersion:
		n = le16(p[:], 0x00A1)
	case sub == bq28z610.MACChemicalID:
		n = le16(p[:], 0x1210)
	case sub == bq28z610.MACOperationStatus:
		n = le32(p[:], g.opStatus)
	case sub == bq28z610.MACManufacturingStatus:
		n = le16(p[:], g.mfgStatus)
	case sub == bq28z610.MACChargingStatus:
		n = le16(p[:], 1<<3|1<<10) // RT, MV
	case sub == bq28z610.MACGaugingStatus:
		n = le32(p[:], 1<<12|1<<11) // QEN, VOK
	case sub == bq28z610.MACSafetyAlert, sub == bq28z610.MACSafetyStatus,
		sub == bq28z610.MACPFAlert, sub == bq28z610.MACPFStatus:
		n = le32(p[:], 0)
	case sub == bq28z610.MACDAStatus1:
		g.daStatus1(p[:])
		n = 32
	case sub == bq28z610.MACITStatus1, sub == bq28z610.MACITStatus2:
		n = 24
	case sub == bq28z610.MACITStatus3:
		n = 20
	default:
		return bq28z610.Frame{}
	}
	return makeFrame(sub, p[:n])
}

func (g *Gauge) daStatus1(p []byte) {
	c1, c2 := g.opts.Cell1_mV, g.opts.Cell2_mV
	i := g.opts.Current_mA
	binary.LittleEndian.PutUint16(p[0:], c1)
	binary.LittleEndian.PutUint16(p[2:], c2)
	binary.LittleEndian.PutUint16(p[8:], c1+c2)
	binary.LittleEndian.PutUint16(p[10:], c1+c2)
	binary.LittleEndian.PutUint16(p[12:], uint16(i))
	binary.LittleEndian.PutUint16(p[14:], uint16(i))
	p1 := int32(c1) * int32(i) / 10000
	p2 := int32(c2) * int32(i) / 10000
	binary.LittleEndian.PutUint16(p[20:], uint16(int16(p1)))
	binary.LittleEndian.PutUint16(p[22:], uint16(int16(p2)))
	binary.LittleEndian.PutUint16(p[28:], uint16(int16(p1+p2)))
	binary.LittleEndian.PutUint16(p[30:], uint16(int16(p1+p2)))
}

// stage keeps a data-flash write until the checksum/length write commits it.
func (g *Gauge) stage(b []byte) {
	g.staged = append(g.staged[:0], b...)
}

func (g *Gauge) commit(cs, length byte) {
	p := g.staged
	g.staged = g.staged[:0]
	if len(p) < 3 || bq28z610.Checksum(p) != cs || int(length) != len(p)+2 {
		return
	}
	addr := binary.LittleEndian.Uint16(p)
	if g.sec == bq28z610.Sealed || !bq28z610.IsDataFlashAddress(addr) {
		return
	}
	o := int(addr - bq28z610.DataFlashMin)
	copy(g.df[o:], p[2:])
	if addr == bq28z610.DFCycleCount {
		g.cycles = binary.LittleEndian.Uint16(g.df[o:])
	}
}

func makeFrame(sub uint16, payload []byte) bq28z610.Frame {
	var fr bq28z610.Frame
	binary.LittleEndian.PutUint16(fr[:2], sub)
	copy(fr[2:], payload)
	fr[frameChecksum] = bq28z610.Checksum(fr[:2+len(payload)])
	fr[frameLength] = byte(len(payload) + 4)
	return fr
}

func le16(p []byte, v uint16) int { binary.LittleEndian.PutUint16(p, v); return 2 }
func le32(p []byte, v uint32) int { binary.LittleEndian.PutUint32(p, v); return 4 }
