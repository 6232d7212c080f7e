package gaugesim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
)

func newDevice(g *Gauge) *bq28z610.Device {
	cfg := bq28z610.DefaultConfig()
	cfg.Sleep = func(time.Duration) {}
	return bq28z610.New(g, cfg)
}

func TestIdentity(t *testing.T) {
	d := newDevice(New(DefaultOptions()))

	dt, err := d.DeviceType()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2610), dt)

	fw, err := d.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, bq28z610.FirmwareVersion{DeviceNumber: 0x2610, Version: 0x0017, Build: 0x0016, ITVersion: 0x0385}, fw)
}

func TestStandardCommands(t *testing.T) {
	g := New(DefaultOptions())
	d := newDevice(g)

	v, err := d.Voltage_mV()
	require.NoError(t, err)
	assert.Equal(t, uint16(3905+3898), v)

	temp, err := d.Temperature_dC()
	require.NoError(t, err)
	assert.Equal(t, int32(245), temp)

	rsoc, err := d.RelativeStateOfCharge()
	require.NoError(t, err)
	assert.EqualValues(t, 75, rsoc)

	g.Advance(time.Hour)
	rem, err := d.RemainingCapacity_mAh()
	require.NoError(t, err)
	assert.EqualValues(t, 2250-180, rem)
}

func TestUnsealAndSeal(t *testing.T) {
	g := New(DefaultOptions())
	d := newDevice(g)

	m, err := d.SecurityMode()
	require.NoError(t, err)
	assert.Equal(t, bq28z610.Sealed, m)

	require.NoError(t, d.Unseal(0x11111111))
	assert.Equal(t, bq28z610.Sealed, g.Security(), "wrong key")

	require.NoError(t, d.Unseal(bq28z610.DefaultUnsealKey))
	assert.Equal(t, bq28z610.Unsealed, g.Security())

	require.NoError(t, d.FullAccess(bq28z610.DefaultFullAccessKey))
	m, err = d.SecurityMode()
	require.NoError(t, err)
	assert.Equal(t, bq28z610.FullAccess, m)

	require.NoError(t, d.Seal())
	assert.Equal(t, bq28z610.Sealed, g.Security())
}

func TestDataFlashNeedsUnseal(t *testing.T) {
	g := New(DefaultOptions())
	d := newDevice(g)

	_, err := d.ReadU2(bq28z610.DFDesignCapacityMAh)
	assert.True(t, errcode.Is(err, errcode.Sealed), "err=%v", err)

	// Without the guard a sealed gauge answers with a frame that fails
	// validation.
	d.SetCheckSealed(false)
	_, err = d.ReadU2(bq28z610.DFDesignCapacityMAh)
	assert.True(t, errcode.Is(err, errcode.Checksum), "err=%v", err)

	require.NoError(t, d.Unseal(bq28z610.DefaultUnsealKey))
	v, err := d.ReadU2(bq28z610.DFDesignCapacityMAh)
	require.NoError(t, err)
	assert.Equal(t, uint16(3000), v)

	require.NoError(t, d.WriteU2(bq28z610.DFDesignCapacityMAh, 3200))
	assert.Equal(t, []byte{0x80, 0x0C}, g.DataFlash(bq28z610.DFDesignCapacityMAh, 2))

	s, err := d.ReadString(bq28z610.DFDeviceName)
	require.NoError(t, err)
	assert.Equal(t, "bq28z610", s)
}

func TestFETProcedures(t *testing.T) {
	g := New(DefaultOptions())
	d := newDevice(g)

	// Dropping FET_EN from sealed: unseal, toggle, reseal.
	require.NoError(t, d.SetFETControl(false))
	assert.Equal(t, bq28z610.Sealed, g.Security())
	ms, err := d.ManufacturingStatus()
	require.NoError(t, err)
	assert.Zero(t, ms&(1<<mfgFET))

	require.NoError(t, d.SetDischargeFET(true))
	op, err := d.OperationStatus()
	require.NoError(t, err)
	assert.NotZero(t, op&(1<<opDSG))
	assert.Zero(t, op&(1<<opCHG))

	require.NoError(t, d.SetChargeFET(true))
	op, err = d.OperationStatus()
	require.NoError(t, err)
	assert.NotZero(t, op&(1<<opCHG))
}

func TestPermanentFail(t *testing.T) {
	g := New(DefaultOptions())
	d := newDevice(g)

	pf, err := d.IsPermanentFail()
	require.NoError(t, err)
	assert.False(t, pf)

	g.SetPermanentFail(true)
	pf, err = d.IsPermanentFail()
	require.NoError(t, err)
	assert.True(t, pf)
}

func TestFaultInjection(t *testing.T) {
	g := New(DefaultOptions())
	d := newDevice(g)

	g.FailNext(1)
	_, err := d.DeviceType()
	assert.True(t, errcode.Is(err, errcode.IO))
	assert.ErrorIs(t, err, ErrInjected)

	g.SetCorrupt(true)
	_, err = d.DeviceType()
	assert.True(t, errcode.Is(err, errcode.Checksum))
	assert.True(t, errcode.Retryable(err))

	g.SetCorrupt(false)
	_, err = d.DeviceType()
	assert.NoError(t, err)
}

func TestWrongAddress(t *testing.T) {
	g := New(Options{Address: 0x0B})
	d := newDevice(g)
	_, err := d.Voltage_mV()
	assert.ErrorIs(t, err, ErrNoDevice)
}
