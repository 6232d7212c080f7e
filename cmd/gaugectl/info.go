package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bq28z610-go/drivers/bq28z610"
)

type infoReport struct {
	DeviceType      string `yaml:"device_type"`
	Firmware        string `yaml:"firmware"`
	FirmwareType    string `yaml:"firmware_type"`
	ITVersion       string `yaml:"it_version"`
	HardwareVersion string `yaml:"hardware_version"`
	ChemicalID      string `yaml:"chemical_id"`
	Security        string `yaml:"security"`
	Manufacturer    string `yaml:"manufacturer,omitempty"`
	DeviceName      string `yaml:"device_name,omitempty"`
	Chemistry       string `yaml:"chemistry,omitempty"`
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print device identity",
		Long: `Print device type, firmware, hardware and chemistry identifiers and the
security mode. Name strings from data flash are included when the gauge is
not sealed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.dev
			var r infoReport

			var dt uint16
			if err := a.retry("device_type", func() (err error) { dt, err = d.DeviceType(); return }); err != nil {
				return err
			}
			r.DeviceType = fmt.Sprintf("0x%04X", dt)

			var fw bq28z610.FirmwareVersion
			if err := a.retry("firmware_version", func() (err error) { fw, err = d.FirmwareVersion(); return }); err != nil {
				return err
			}
			r.Firmware = fmt.Sprintf("%04X %04X.%04X", fw.DeviceNumber, fw.Version, fw.Build)
			r.FirmwareType = fmt.Sprintf("0x%02X", fw.FirmwareType)
			r.ITVersion = fmt.Sprintf("0x%04X", fw.ITVersion)

			var hw, chem uint16
			if err := a.retry("hardware_version", func() (err error) { hw, err = d.HardwareVersion(); return }); err != nil {
				return err
			}
			if err := a.retry("chemical_id", func() (err error) { chem, err = d.ChemicalID(); return }); err != nil {
				return err
			}
			r.HardwareVersion = fmt.Sprintf("0x%04X", hw)
			r.ChemicalID = fmt.Sprintf("0x%04X", chem)

			var sec bq28z610.SecurityMode
			if err := a.retry("security_mode", func() (err error) { sec, err = d.SecurityMode(); return }); err != nil {
				return err
			}
			r.Security = sec.String()

			if sec != bq28z610.Sealed {
				r.Manufacturer, _ = d.ReadString(bq28z610.DFManufacturerName)
				r.DeviceName, _ = d.ReadString(bq28z610.DFDeviceName)
				r.Chemistry, _ = d.ReadString(bq28z610.DFDeviceChemistry)
			}
			return printYAML(cmd.OutOrStdout(), r)
		},
	}
}

func newSecurityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "security",
		Short: "Print the security mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sec bq28z610.SecurityMode
			if err := a.retry("security_mode", func() (err error) { sec, err = a.dev.SecurityMode(); return }); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sec)
			return nil
		},
	}
}
