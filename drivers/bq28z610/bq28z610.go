// Package bq28z610 provides a TinyGo-compatible driver for the TI BQ28Z610
// 1–2 cell Li-ion gas gauge.
//
// Design notes (SLUUA65E):
//   - I2C, standard commands are 16-bit words, data-low then data-high.
//   - Everything beyond the standard commands goes through
//     AltManufacturerAccess() (0x3E/0x3F) using the block protocol: write the
//     16-bit subcommand or data-flash address, let the gauge settle, select the
//     read pointer, then read a 36-byte frame [addr lo, addr hi, data x32,
//     checksum, length].
//   - Data flash lives at [0x4000, 0x5FFF] and is written with the address and
//     payload to 0x3E followed by checksum/length to 0x60/0x61.
//   - Settle delays encode real firmware latency and are applied exactly.
//
// Concurrency: each block exchange holds the Device lock for its whole
// duration, so a Device may be shared between goroutines. Multi-exchange
// procedures (unseal, FET helpers) are not atomic with respect to each other.
package bq28z610

import (
	"errors"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// Settle times after a subcommand or write.
const (
	SettleRead       = 5 * time.Millisecond
	SettleKeyWord    = 5 * time.Millisecond
	SettleReset      = 500 * time.Millisecond
	SettleFET        = 500 * time.Millisecond
	SettleSeal       = 500 * time.Millisecond
	SettlePFReset    = 1000 * time.Millisecond
	SettleUnseal     = 1000 * time.Millisecond
	SettleFlashWrite = 200 * time.Millisecond
)

// Driver configuration.
type Config struct {
	Address uint16
	// Sleep implements settle delays. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// Observer receives protocol events; nil keeps the driver silent.
	Observer Observer
	// CheckSealed makes data-flash access fail with errcode.Sealed instead of
	// touching a sealed gauge, which would answer with zeros.
	CheckSealed bool
	// UnsealKey is used by helpers that must temporarily unseal the gauge.
	UnsealKey uint32
}

// DefaultConfig uses the factory address and unseal key.
func DefaultConfig() Config {
	return Config{
		Address:     AddressDefault,
		CheckSealed: true,
		UnsealKey:   DefaultUnsealKey,
	}
}

// Validate basic required fields.
func (c Config) Validate() error {
	if c.Address == 0 || c.Address > 0x7F {
		return errors.New("Address must be a 7-bit I2C address (use AddressDefault)")
	}
	return nil
}

// Device represents a BQ28Z610 on an I2C bus.
type Device struct {
	mu sync.Mutex

	i2c         drivers.I2C
	addr        uint16
	sleep       func(time.Duration)
	obs         Observer
	checkSealed bool
	unsealKey   uint32

	// Fixed buffers to avoid per-call heap allocations. Guarded by mu.
	w     [1 + addrSize + PayloadMax]byte // reg + addr + payload
	c     [1 + chkLenSize]byte            // reg + checksum + length
	r     [2]byte
	frame Frame
}

// New constructs a Device. It does not touch the bus.
func New(i2c drivers.I2C, cfg Config) *Device {
	d := &Device{i2c: i2c, checkSealed: cfg.CheckSealed}
	d.apply(cfg)
	if d.addr == 0 {
		d.addr = AddressDefault
	}
	if d.unsealKey == 0 {
		d.unsealKey = DefaultUnsealKey
	}
	return d
}

// Configure applies runtime changes; zero fields keep their current value
// except Observer, which is always replaced. CheckSealed is ignored here so a
// partial Config cannot drop the sealed guard; use SetCheckSealed.
func (d *Device) Configure(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apply(cfg)
}

func (d *Device) apply(cfg Config) {
	if cfg.Address != 0 {
		d.addr = cfg.Address
	}
	if cfg.Sleep != nil {
		d.sleep = cfg.Sleep
	} else if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if cfg.UnsealKey != 0 {
		d.unsealKey = cfg.UnsealKey
	}
	d.obs = cfg.Observer
}

// SetCheckSealed turns the data-flash sealed guard on or off.
func (d *Device) SetCheckSealed(on bool) {
	d.mu.Lock()
	d.checkSealed = on
	d.mu.Unlock()
}

// Introspection.
func (d *Device) Address() uint16 { return d.addr }
