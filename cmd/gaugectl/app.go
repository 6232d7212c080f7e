package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"bq28z610-go/dftable"
	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
	"bq28z610-go/internal/config"
	"bq28z610-go/internal/gaugesim"
	"bq28z610-go/internal/logging"
	"bq28z610-go/internal/periphbus"
)

// app is the state shared by every subcommand of one invocation, including
// the commands run by a script.
type app struct {
	flags struct {
		config   string
		bus      string
		addr     uint16
		sim      bool
		logLevel string
	}

	cfg    *config.Config
	log    *zap.Logger
	sim    *gaugesim.Gauge
	bus    *periphbus.Bus
	drvCfg bq28z610.Config
	dev    *bq28z610.Device
	table  *dftable.Table
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gaugectl",
		Short: "BQ28Z610 gas gauge tool",
		Long: `gaugectl talks to a TI BQ28Z610 gas gauge through AltManufacturerAccess()
block commands: identity and status, security transitions, FET control,
data-flash reads and writes, dumps and comparisons, and a Prometheus exporter.

Settings come from gaugectl.yaml (or --config), GAUGE_* environment variables
and flags, in increasing priority.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "Config file (YAML)")
	pf.StringVar(&a.flags.bus, "bus", "", "I2C adapter name, number or /dev path")
	pf.Uint16Var(&a.flags.addr, "addr", bq28z610.AddressDefault, "7-bit gauge address")
	pf.BoolVar(&a.flags.sim, "sim", false, "Use the built-in gauge simulator")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newInfoCmd(a),
		newStatusCmd(a),
		newSecurityCmd(a),
		newUnsealCmd(a),
		newFullAccessCmd(a),
		newSealCmd(a),
		newResetCmd(a),
		newFETCmd(a),
		newMACCmd(a),
		newDFCmd(a),
		newLearningInitCmd(a),
		newSOCThresholdCmd(a),
		newRaResetCmd(a),
		newExportCmd(a),
		newScriptCmd(a),
	)
	return root
}

// open loads settings and connects to the gauge once per invocation.
func (a *app) open(cmd *cobra.Command) error {
	if a.dev != nil {
		return nil
	}
	over := map[string]any{}
	fl := cmd.Flags()
	if fl.Changed("bus") {
		over["bus.name"] = a.flags.bus
	}
	if fl.Changed("addr") {
		over["gauge.address"] = a.flags.addr
	}
	if fl.Changed("sim") {
		over["bus.sim"] = a.flags.sim
	}
	if fl.Changed("log-level") {
		over["logging.level"] = a.flags.logLevel
	}
	cfg, err := config.Load(a.flags.config, over)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Logging)

	a.table = dftable.Default()
	if cfg.DFTable.Path != "" {
		if a.table, err = dftable.LoadFile(cfg.DFTable.Path); err != nil {
			return err
		}
	}

	var i2c interface {
		Tx(addr uint16, w, r []byte) error
	}
	switch {
	case a.sim != nil:
		i2c = a.sim
	case cfg.Bus.Sim:
		a.sim = gaugesim.New(gaugesim.Options{Address: cfg.Gauge.Address})
		i2c = a.sim
	default:
		b, err := periphbus.Open(cfg.Bus.Name, cfg.Bus.SpeedHz)
		if err != nil {
			return err
		}
		a.bus = b
		i2c = b
		a.log.Debug("bus open", zap.String("bus", b.String()))
	}

	a.drvCfg = cfg.DriverConfig()
	a.drvCfg.Observer = logging.ZapObserver{L: a.log.Named("bq28z610")}
	if a.sim != nil {
		a.drvCfg.Sleep = func(time.Duration) {}
	}
	if err := a.drvCfg.Validate(); err != nil {
		return err
	}
	a.dev = bq28z610.New(i2c, a.drvCfg)
	return nil
}

func (a *app) close() {
	if a.bus != nil {
		_ = a.bus.Close()
		a.bus = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// retry repeats fn while it fails with a retryable code, up to the configured
// number of extra attempts.
func (a *app) retry(op string, fn func() error) error {
	for i := 0; ; i++ {
		err := fn()
		if err == nil || !errcode.Retryable(err) || i >= a.cfg.Gauge.Retries {
			return err
		}
		a.log.Debug("retrying", zap.String("op", op), zap.Int("attempt", i+1), zap.Error(err))
	}
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
