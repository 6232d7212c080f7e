package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
)

type statusReport struct {
	Telemetry bq28z610.Snapshot   `yaml:"telemetry"`
	Cells     *bq28z610.DAStatus1 `yaml:"cells,omitempty"`
	Security  string              `yaml:"security,omitempty"`
	Flags     map[string][]string `yaml:"flags"`
	IT        *itReport           `yaml:"impedance_track,omitempty"`
	Errors    map[string]string   `yaml:"errors,omitempty"`
}

type itReport struct {
	Status1 bq28z610.ITStatus1 `yaml:"status1"`
	Status2 bq28z610.ITStatus2 `yaml:"status2"`
	Status3 bq28z610.ITStatus3 `yaml:"status3"`
}

func setNames(v uint32, table []bq28z610.Flag, all bool) []string {
	var out []string
	for _, s := range bq28z610.Decode(v, table) {
		switch {
		case all && s.Set:
			out = append(out, s.Name+"=1")
		case all:
			out = append(out, s.Name+"=0")
		case s.Set:
			out = append(out, s.Name)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func newStatusCmd(a *app) *cobra.Command {
	var flags struct {
		all bool
		it  bool
	}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print telemetry and decoded status flags",
		Long: `Print the standard telemetry, the DAStatus1 cell measurements and every
status word decoded into flag names. Reads that fail are listed under
"errors" and do not abort the report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.dev
			r := statusReport{
				Telemetry: d.Snapshot(),
				Flags:     map[string][]string{},
				Errors:    map[string]string{},
			}
			r.Flags["battery_status"] = setNames(uint32(r.Telemetry.BatteryStatus), bq28z610.BatteryStatusFlags, flags.all)

			fail := func(what string, err error) {
				r.Errors[what] = err.Error()
				a.log.Warn("status read failed", zap.String("read", what), zap.String("code", string(errcode.Of(err))))
			}
			words := []struct {
				name  string
				table []bq28z610.Flag
				read  func() (uint32, error)
			}{
				{"operation_status", bq28z610.OperationStatusFlags, d.OperationStatus},
				{"safety_alert", bq28z610.SafetyFlags, d.SafetyAlert},
				{"safety_status", bq28z610.SafetyFlags, d.SafetyStatus},
				{"pf_alert", bq28z610.PFFlags, d.PFAlert},
				{"pf_status", bq28z610.PFFlags, d.PFStatus},
				{"gauging_status", bq28z610.GaugingStatusFlags, d.GaugingStatus},
				{"charging_status", bq28z610.ChargingStatusFlags, widen(d.ChargingStatus)},
				{"manufacturing_status", bq28z610.ManufacturingStatusFlags, widen(d.ManufacturingStatus)},
			}
			for _, w := range words {
				var v uint32
				if err := a.retry(w.name, func() (err error) { v, err = w.read(); return }); err != nil {
					fail(w.name, err)
					continue
				}
				r.Flags[w.name] = setNames(v, w.table, flags.all)
				if w.name == "operation_status" {
					r.Security = bq28z610.SecurityModeOf(v).String()
				}
			}

			var da bq28z610.DAStatus1
			if err := a.retry("da_status1", func() (err error) { da, err = d.DAStatus1(); return }); err != nil {
				fail("da_status1", err)
			} else {
				r.Cells = &da
			}

			if flags.it {
				var it itReport
				var err error
				if it.Status1, err = d.ITStatus1(); err != nil {
					fail("it_status1", err)
				} else if it.Status2, err = d.ITStatus2(); err != nil {
					fail("it_status2", err)
				} else if it.Status3, err = d.ITStatus3(); err != nil {
					fail("it_status3", err)
				} else {
					r.IT = &it
				}
			}
			return printYAML(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().BoolVar(&flags.all, "all", false, "List every flag with its value, not just the set ones")
	cmd.Flags().BoolVar(&flags.it, "it", false, "Include the Impedance Track status blocks")
	return cmd
}

func widen(read func() (uint16, error)) func() (uint32, error) {
	return func() (uint32, error) {
		v, err := read()
		return uint32(v), err
	}
}
