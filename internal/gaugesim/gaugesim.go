// Package gaugesim is a host-side BQ28Z610 simulator that speaks the register
// and block protocol over the drivers.I2C contract. gaugectl uses it with
// --sim, and host-side tests use it instead of hardware.
package gaugesim

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"bq28z610-go/drivers/bq28z610"
)

var _ drivers.I2C = (*Gauge)(nil)

var (
	ErrNoDevice = errors.New("gaugesim: no device at address")
	ErrInjected = errors.New("gaugesim: injected bus error")
)

// Standard command registers.
const (
	regManufacturerAccessControl = 0x00
	regTemperature               = 0x06
	regVoltage                   = 0x08
	regBatteryStatus             = 0x0A
	regCurrent                   = 0x0C
	regRemainingCapacity         = 0x10
	regFullChargeCapacity        = 0x12
	regAverageCurrent            = 0x14
	regCycleCount                = 0x2A
	regRelativeStateOfCharge     = 0x2C
	regStateOfHealth             = 0x2E
	regChargingVoltage           = 0x30
	regChargingCurrent           = 0x32
	regDesignCapacity            = 0x3C

	regMAC         = 0x3E
	regMACChecksum = 0x60
)

// OperationStatus and ManufacturingStatus bits the simulator maintains.
const (
	opDSG   = 1
	opCHG   = 2
	opSEC0  = 8
	opPF    = 12
	mfgCHG  = 1
	mfgDSG  = 2
	mfgGAUG = 3
	mfgFET  = 4
)

const dfSize = int(bq28z610.DataFlashMax-bq28z610.DataFlashMin) + 1

// Options seed a simulated gauge.
type Options struct {
	Address       uint16
	Security      bq28z610.SecurityMode
	UnsealKey     uint32
	FullAccessKey uint32
	Cell1_mV      uint16
	Cell2_mV      uint16
	Current_mA    int16
	DesignCap_mAh uint16
	Temp_dC       int16
}

// DefaultOptions describe a sealed 2S pack at rest near 75 %.
func DefaultOptions() Options {
	return Options{
		Address:       bq28z610.AddressDefault,
		Security:      bq28z610.Sealed,
		UnsealKey:     bq28z610.DefaultUnsealKey,
		FullAccessKey: bq28z610.DefaultFullAccessKey,
		Cell1_mV:      3905,
		Cell2_mV:      3898,
		Current_mA:    -180,
		DesignCap_mAh: 3000,
		Temp_dC:       245,
	}
}

// Gauge is a simulated BQ28Z610. It is safe for concurrent use.
type Gauge struct {
	mu   sync.Mutex
	opts Options

	sec       bq28z610.SecurityMode
	opStatus  uint32
	mfgStatus uint16
	remaining float64 // mAh
	cycles    uint16
	df        [dfSize]byte

	// block protocol state
	sub     uint16
	lastKey uint16
	staged  []byte
	frame   bq28z610.Frame
	cursor  int

	failNext int
	corrupt  bool

	txCount int
}

// New builds a simulator from opts. Zero fields take DefaultOptions values,
// except Current_mA, where zero means a pack at rest.
func New(opts Options) *Gauge {
	def := DefaultOptions()
	if opts.Address == 0 {
		opts.Address = def.Address
	}
	if opts.Security == 0 {
		opts.Security = def.Security
	}
	if opts.UnsealKey == 0 {
		opts.UnsealKey = def.UnsealKey
	}
	if opts.FullAccessKey == 0 {
		opts.FullAccessKey = def.FullAccessKey
	}
	if opts.Cell1_mV == 0 {
		opts.Cell1_mV = def.Cell1_mV
	}
	if opts.Cell2_mV == 0 {
		opts.Cell2_mV = def.Cell2_mV
	}
	if opts.DesignCap_mAh == 0 {
		opts.DesignCap_mAh = def.DesignCap_mAh
	}
	if opts.Temp_dC == 0 {
		opts.Temp_dC = def.Temp_dC
	}
	g := &Gauge{
		opts:      opts,
		opStatus:  1<<opCHG | 1<<opDSG,
		mfgStatus: 1<<mfgGAUG | 1<<mfgFET,
		remaining: float64(opts.DesignCap_mAh) * 0.75,
		cycles:    17,
	}
	g.setSecurity(opts.Security)
	g.seedDataFlash()
	return g
}

func (g *Gauge) seedDataFlash() {
	for i := range g.df {
		g.df[i] = 0xFF
	}
	putStr := func(addr uint16, s string) {
		o := addr - bq28z610.DataFlashMin
		g.df[o] = byte(len(s))
		copy(g.df[o+1:], s)
	}
	put16 := func(addr uint16, v uint16) {
		binary.LittleEndian.PutUint16(g.df[addr-bq28z610.DataFlashMin:], v)
	}
	put8 := func(addr uint16, v uint8) { g.df[addr-bq28z610.DataFlashMin] = v }

	putStr(bq28z610.DFManufacturerName, "Texas Instruments")
	putStr(bq28z610.DFDeviceName, "bq28z610")
	putStr(bq28z610.DFDeviceChemistry, "LION")
	put16(bq28z610.DFCell0RaFlag, 0xFF55)
	put16(bq28z610.DFCell1RaFlag, 0xFF55)
	put16(bq28z610.DFXCell0RaFlag, 0xFFFF)
	put16(bq28z610.DFXCell1RaFlag, 0xFFFF)
	put16(bq28z610.DFQmaxCell1, g.opts.DesignCap_mAh)
	put16(bq28z610.DFQmaxCell2, g.opts.DesignCap_mAh)
	put16(bq28z610.DFQmaxPack, g.opts.DesignCap_mAh)
	put8(bq28z610.DFUpdateStatus, 0x06)
	put16(bq28z610.DFCycleCount, g.cycles)
	put8(bq28z610.DFFETOptions, 0x00)
	put16(bq28z610.DFDesignCapacityMAh, g.opts.DesignCap_mAh)
	put16(bq28z610.DFDesignCapacityCWh, g.opts.DesignCap_mAh*74/100)
	put16(bq28z610.DFSOCFlagConfigA, 0x0C8C)
	put8(bq28z610.DFTCSetRSOCThreshold, 100)
	put8(bq28z610.DFTCClearRSOCThreshold, 95)
	put16(bq28z610.DFChargeTermTaperCurrent, 100)
	put8(bq28z610.DFDAConfiguration, 0x11)
	put16(bq28z610.DFOCCThreshold, 6000)
	put16(bq28z610.DFOTCThreshold, 550)
	put16(bq28z610.DFOTCRecovery, 500)
}

// Advance integrates the configured current over dt.
func (g *Gauge) Advance(dt time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remaining += float64(g.opts.Current_mA) * dt.Hours()
	full := float64(g.opts.DesignCap_mAh)
	if g.remaining < 0 {
		g.remaining = 0
	}
	if g.remaining > full {
		g.remaining = full
	}
}

// SetCurrent changes the simulated pack current (negative discharges).
func (g *Gauge) SetCurrent(mA int16) {
	g.mu.Lock()
	g.opts.Current_mA = mA
	g.mu.Unlock()
}

// SetPermanentFail raises or clears OperationStatus[PF].
func (g *Gauge) SetPermanentFail(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if on {
		g.opStatus |= 1 << opPF
	} else {
		g.opStatus &^= 1 << opPF
	}
}

// FailNext makes the next n bus transactions fail with ErrInjected.
func (g *Gauge) FailNext(n int) {
	g.mu.Lock()
	g.failNext = n
	g.mu.Unlock()
}

// SetCorrupt makes every block read return an all-zero frame.
func (g *Gauge) SetCorrupt(on bool) {
	g.mu.Lock()
	g.corrupt = on
	g.mu.Unlock()
}

// Security returns the simulated security mode.
func (g *Gauge) Security() bq28z610.SecurityMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sec
}

// DataFlash copies n bytes of simulated flash starting at addr.
func (g *Gauge) DataFlash(addr uint16, n int) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	o := int(addr - bq28z610.DataFlashMin)
	out := make([]byte, n)
	copy(out, g.df[o:])
	return out
}

// TxCount is the number of bus transactions seen.
func (g *Gauge) TxCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.txCount
}

// Tx implements drivers.I2C.
func (g *Gauge) Tx(addr uint16, w, r []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.txCount++
	if addr != g.opts.Address {
		return ErrNoDevice
	}
	if g.failNext > 0 {
		g.failNext--
		return ErrInjected
	}
	switch {
	case len(w) > 0 && len(r) > 0:
		v := g.word(w[0])
		r[0] = byte(v)
		if len(r) > 1 {
			r[1] = byte(v >> 8)
		}
	case len(w) > 0:
		g.write(w)
	case len(r) > 0:
		g.cursor += copy(r, g.frame[g.cursor:])
	}
	return nil
}

func (g *Gauge) write(w []byte) {
	switch w[0] {
	case regMAC:
		switch {
		case len(w) == 1:
			g.frame = g.respond(g.sub)
			g.cursor = 0
		case len(w) == 3:
			g.subcommand(binary.LittleEndian.Uint16(w[1:3]))
		default:
			g.sub = binary.LittleEndian.Uint16(w[1:3])
			g.stage(w[1:])
		}
	case regMACChecksum:
		if len(w) >= 3 {
			g.commit(w[1], w[2])
		}
	}
}
