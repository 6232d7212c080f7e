// Package periphbus opens a Linux I2C adapter through periph.io and exposes it
// as a drivers.I2C bus for the gauge driver.
package periphbus

import (
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"bq28z610-go/errcode"
)

var _ drivers.I2C = (*Bus)(nil)

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the periph host drivers once per process.
func Init() error {
	initOnce.Do(func() {
		_, initErr = host.Init()
	})
	return initErr
}

// Bus is an open adapter. periph's Tx already has the drivers.I2C shape; the
// wrapper adds the SMBus speed and error codes.
type Bus struct {
	bc   i2c.BusCloser
	name string
}

// Open opens the named adapter ("" picks the first one, "1" or "/dev/i2c-1"
// pick by number or path). speedHz of 0 leaves the adapter default.
func Open(name string, speedHz int64) (*Bus, error) {
	if err := Init(); err != nil {
		return nil, errcode.Wrap(errcode.IO, "bus_init", err)
	}
	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.IO, "bus_open", err)
	}
	if speedHz > 0 {
		if err := bc.SetSpeed(physic.Frequency(speedHz) * physic.Hertz); err != nil {
			bc.Close()
			return nil, errcode.Wrap(errcode.Unsupported, "bus_speed", err)
		}
	}
	return &Bus{bc: bc, name: bc.String()}, nil
}

// Tx implements drivers.I2C.
func (b *Bus) Tx(addr uint16, w, r []byte) error { return b.bc.Tx(addr, w, r) }

func (b *Bus) String() string { return b.name }

func (b *Bus) Close() error { return b.bc.Close() }

// Names lists the registered adapters.
func Names() ([]string, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	refs := i2creg.All()
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out, nil
}
