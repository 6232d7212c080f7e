//go:build rp2040

// Command pico-gauge runs the BQ28Z610 driver on an RP2040 and reports the
// gauge over UART0. Single-key commands on the console:
//
//	i  identity and security mode
//	u  unseal with the default key
//	l  seal
//	d  dump the data flash
package main

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/x/conv"
)

const report = 2 * time.Second

var (
	console = uartx.UART0
	line    = make([]byte, 0, 160)
)

func out(b []byte) { _, _ = console.Write(b) }

func say(s string) {
	line = append(line[:0], s...)
	line = append(line, '\r', '\n')
	out(line)
}

func fail(what string, err error) {
	line = append(line[:0], what...)
	line = append(line, ": "...)
	line = append(line, err.Error()...)
	line = append(line, '\r', '\n')
	out(line)
}

func main() {
	_ = console.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	time.Sleep(1500 * time.Millisecond)
	say("[gauge] boot")

	dev := bq28z610.New(i2c, bq28z610.DefaultConfig())
	identity(dev)

	var snap bq28z610.Snapshot
	var key [1]byte
	for {
		ctx, cancel := context.WithTimeout(context.Background(), report)
		n, _ := console.RecvSomeContext(ctx, key[:])
		cancel()
		if n == 0 {
			dev.SnapshotInto(&snap)
			telemetry(&snap)
			continue
		}
		switch key[0] {
		case 'i':
			identity(dev)
		case 'u':
			if err := dev.Unseal(bq28z610.DefaultUnsealKey); err != nil {
				fail("unseal", err)
			}
			security(dev)
		case 'l':
			if err := dev.Seal(); err != nil {
				fail("seal", err)
			}
			security(dev)
		case 'd':
			err := dev.DumpDataFlash(func(addr uint16, chunk []byte) error {
				line = conv.U16Hex(line[:0], addr)
				line = append(line, ':', ' ')
				line = conv.BytesHex(line, chunk)
				line = append(line, '\r', '\n')
				out(line)
				return nil
			})
			if err != nil {
				fail("dump", err)
			}
		}
	}
}

func identity(dev *bq28z610.Device) {
	dt, err := dev.DeviceType()
	if err != nil {
		fail("device type", err)
		return
	}
	fw, err := dev.FirmwareVersion()
	if err != nil {
		fail("firmware", err)
		return
	}
	line = append(line[:0], "[gauge] type="...)
	line = conv.U16Hex(line, dt)
	line = append(line, " fw="...)
	line = conv.U16Hex(line, fw.Version)
	line = append(line, " build="...)
	line = conv.U16Hex(line, fw.Build)
	line = append(line, '\r', '\n')
	out(line)
	security(dev)
}

func security(dev *bq28z610.Device) {
	m, err := dev.SecurityMode()
	if err != nil {
		fail("security", err)
		return
	}
	say("[gauge] security=" + m.String())
}

// telemetry prints one line: voltage, current, temperature, RSOC, cycles.
func telemetry(s *bq28z610.Snapshot) {
	line = append(line[:0], "V="...)
	line = conv.AppendInt(line, int64(s.Voltage_mV))
	line = append(line, "mV I="...)
	line = conv.AppendInt(line, int64(s.Current_mA))
	line = append(line, "mA T="...)
	t := int64(s.Temperature_dC)
	if t < 0 {
		line = append(line, '-')
		t = -t
	}
	line = conv.AppendInt(line, t/10)
	line = append(line, '.')
	line = conv.AppendInt(line, t%10)
	line = append(line, "C RSOC="...)
	line = conv.AppendInt(line, int64(s.RSOC_pct))
	line = append(line, "% cycles="...)
	line = conv.AppendInt(line, int64(s.CycleCount))
	line = append(line, " status="...)
	line = conv.U16Hex(line, s.BatteryStatus)
	line = append(line, '\r', '\n')
	out(line)
}
