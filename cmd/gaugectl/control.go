package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bq28z610-go/dftable"
	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
)

func parseU16(what, s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, errcode.Wrap(errcode.InvalidParams, what, err)
	}
	return uint16(v), nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "1", "true", "enable":
		return true, nil
	case "off", "0", "false", "disable":
		return false, nil
	}
	return false, errcode.New(errcode.InvalidParams, "parse", fmt.Sprintf("%q is not on or off", s))
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "reset [device|lifetime|pf]",
		Short:     "Reset the device, the lifetime data or the permanent-failure data",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"device", "lifetime", "pf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "device"
			if len(args) == 1 {
				what = args[0]
			}
			var err error
			switch what {
			case "device":
				err = a.dev.DeviceReset()
			case "lifetime":
				err = a.dev.LifetimeDataReset()
			case "pf":
				err = a.dev.PermanentFailDataReset()
			default:
				return errcode.New(errcode.InvalidParams, "reset", fmt.Sprintf("unknown target %q", what))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reset sent\n", what)
			return nil
		},
	}
}

func newFETCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fet chg|dsg|control on|off",
		Short: "Drive the charge or discharge FET test mode, or firmware FET control",
		Long: `fet chg and fet dsg switch the FET test modes and need FET control off.
fet control turns firmware FET control on or off. A sealed gauge is unsealed
for the operation and sealed again afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			switch args[0] {
			case "chg":
				err = a.dev.SetChargeFET(on)
			case "dsg":
				err = a.dev.SetDischargeFET(on)
			case "control":
				err = a.dev.SetFETControl(on)
			default:
				return errcode.New(errcode.InvalidParams, "fet", fmt.Sprintf("unknown FET %q", args[0]))
			}
			if err != nil {
				return err
			}
			ms, err := a.dev.ManufacturingStatus()
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), map[string][]string{
				"manufacturing_status": setNames(uint32(ms), bq28z610.ManufacturingStatusFlags, false),
			})
		},
	}
}

func newMACCmd(a *app) *cobra.Command {
	var flags struct {
		command bool
		settle  time.Duration
	}
	cmd := &cobra.Command{
		Use:   "mac <subcommand>",
		Short: "Issue a raw ManufacturerAccess subcommand",
		Long: `Read the block response of a ManufacturerAccess subcommand and print its
payload, or with --command only issue it and wait --settle.`,
		Example: "  gaugectl mac 0x0054\n  gaugectl mac --command --settle 1s 0x0021",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := parseU16("mac", args[0])
			if err != nil {
				return err
			}
			if flags.command {
				return a.dev.Command(sub, flags.settle)
			}
			var buf [bq28z610.PayloadMax]byte
			var n int
			if err := a.retry("mac", func() (err error) { n, err = a.dev.ReadBlock(sub, buf[:]); return }); err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(dftable.AppendDumpLine(nil, sub, buf[:n]))
			return err
		},
	}
	cmd.Flags().BoolVar(&flags.command, "command", false, "Send without reading a response")
	cmd.Flags().DurationVar(&flags.settle, "settle", bq28z610.SettleFET, "Wait after --command")
	return cmd
}

func newLearningInitCmd(a *app) *cobra.Command {
	var p bq28z610.LearningParams
	cmd := &cobra.Command{
		Use:   "learning-init",
		Short: "Prepare the gauge for a learning cycle",
		Long: `Write design capacity and energy, cell QMax values, Update Status and the
cycle count, then reset the Ra table flags. The gauge must be unsealed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.QMaxCell1_mAh == 0 {
				p.QMaxCell1_mAh = p.DesignCapacity_mAh
			}
			if p.QMaxCell2_mAh == 0 {
				p.QMaxCell2_mAh = p.DesignCapacity_mAh
			}
			if p.DesignCapacity_mAh <= 0 || p.DesignEnergy_cWh <= 0 {
				return errcode.New(errcode.InvalidParams, "learning-init", "--capacity and --energy must be positive")
			}
			if err := a.dev.LearningCycleInit(p); err != nil {
				return err
			}
			s, err := a.dev.LearningSample()
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), s)
		},
	}
	f := cmd.Flags()
	f.Int16Var(&p.DesignCapacity_mAh, "capacity", 0, "Design capacity in mAh")
	f.Int16Var(&p.DesignEnergy_cWh, "energy", 0, "Design energy in cWh")
	f.Int16Var(&p.QMaxCell1_mAh, "qmax1", 0, "Cell 1 QMax in mAh (default --capacity)")
	f.Int16Var(&p.QMaxCell2_mAh, "qmax2", 0, "Cell 2 QMax in mAh (default --capacity)")
	f.Uint16Var(&p.CycleCount, "cycles", 0, "Cycle count to store")
	return cmd
}

func newSOCThresholdCmd(a *app) *cobra.Command {
	var flags struct {
		disable bool
		stop    uint8
		resume  uint8
	}
	cmd := &cobra.Command{
		Use:   "soc-threshold",
		Short: "Stop charging at a state-of-charge threshold",
		Long: `Enable or disable the RSOC-based charge termination. When enabled, charging
stops at --stop percent and resumes below --resume percent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.disable && (flags.stop > 100 || flags.resume >= flags.stop) {
				return errcode.New(errcode.InvalidParams, "soc-threshold", "need resume < stop <= 100")
			}
			return a.dev.SetChargingSocThreshold(!flags.disable, flags.stop, flags.resume)
		},
	}
	cmd.Flags().BoolVar(&flags.disable, "disable", false, "Turn the threshold off")
	cmd.Flags().Uint8Var(&flags.stop, "stop", 80, "Stop charging at this RSOC percentage")
	cmd.Flags().Uint8Var(&flags.resume, "resume", 75, "Resume charging below this RSOC percentage")
	return cmd
}

func newRaResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ra-reset",
		Short: "Mark the Ra tables as not yet learned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dev.ResetRaTableFlags()
		},
	}
}
