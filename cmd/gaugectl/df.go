package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bq28z610-go/dftable"
	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
)

func newDFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "df",
		Short: "Read, write, dump and compare data flash",
		Long: `Data-flash access at 0x4000..0x5FFF. Fields are named by key or address as
listed by "df fields". Writes and reads need an unsealed gauge.

Dump files hold one line per contiguous run, "0xAAAA: [ 11 22 ... ]".
Where a dump file is expected, "-" reads the live gauge instead.`,
	}
	cmd.AddCommand(
		newDFFieldsCmd(a),
		newDFGetCmd(a),
		newDFSetCmd(a),
		newDFReadCmd(a),
		newDFWriteCmd(a),
		newDFDumpCmd(a),
		newDFShowCmd(a),
		newDFDiffCmd(a),
		newDFApplyCmd(a),
	)
	return cmd
}

func (a *app) field(ref string) (dftable.Field, error) {
	f, ok := a.table.Lookup(ref)
	if !ok {
		return f, errcode.New(errcode.InvalidParams, "df", fmt.Sprintf("unknown field %q", ref))
	}
	return f, nil
}

// image loads a dump file, or the live data flash for "-".
func (a *app) image(path string) (dftable.Image, error) {
	if path == "-" {
		var img dftable.Image
		err := a.retry("df_dump", func() (err error) { img, err = dftable.ReadImage(a.dev); return })
		return img, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dftable.ParseDump(f)
}

func newDFFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the known data-flash fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, f := range a.table.Fields() {
				fmt.Fprintf(w, "0x%04X  %-4s %-28s %s\n", f.Addr, f.Type, f.Key, f.Name)
			}
			return nil
		},
	}
}

func newDFGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <field>...",
		Short: "Read and decode fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ref := range args {
				f, err := a.field(ref)
				if err != nil {
					return err
				}
				var v dftable.Value
				if err := a.retry("df_get", func() (err error) { v, err = dftable.ReadField(a.dev, f); return }); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.Line())
			}
			return nil
		},
	}
}

func newDFSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "set <field> <value>",
		Short:   "Encode and write one field, then read it back",
		Example: "  gaugectl df set design_capacity_mah 3200\n  gaugectl df set device_name \"pack-7\"",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.field(args[0])
			if err != nil {
				return err
			}
			if err := dftable.WriteField(a.dev, f, args[1]); err != nil {
				return err
			}
			v, err := dftable.ReadField(a.dev, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Line())
			return nil
		},
	}
}

func newDFReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <addr> <count>",
		Short: "Read up to 32 raw bytes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseU16("df_read", args[0])
			if err != nil {
				return err
			}
			n, err := parseU16("df_read", args[1])
			if err != nil {
				return err
			}
			if n == 0 || int(n) > bq28z610.PayloadMax {
				return errcode.New(errcode.Range, "df_read", fmt.Sprintf("count %d outside 1..%d", n, bq28z610.PayloadMax))
			}
			buf := make([]byte, n)
			if err := a.retry("df_read", func() error { return a.dev.ReadDataFlash(addr, buf) }); err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(dftable.AppendDumpLine(nil, addr, buf))
			return err
		},
	}
}

func newDFWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "write <addr> <hex>...",
		Short:   "Write raw bytes given in hex",
		Example: "  gaugectl df write 0x4206 B8 0B\n  gaugectl df write 0x4206 b80b",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseU16("df_write", args[0])
			if err != nil {
				return err
			}
			data, err := hex.DecodeString(strings.ReplaceAll(strings.Join(args[1:], ""), "0x", ""))
			if err != nil {
				return errcode.Wrap(errcode.InvalidParams, "df_write", err)
			}
			if err := a.dev.WriteDataFlash(addr, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes at 0x%04X\n", len(data), addr)
			return nil
		},
	}
}

func newDFDumpCmd(a *app) *cobra.Command {
	var flags struct {
		out      string
		describe bool
	}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the whole data flash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.image("-")
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if flags.out != "" {
				f, err := os.Create(flags.out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if flags.describe {
				return writeValues(w, dftable.Describe(a.table, img))
			}
			if err := dftable.WriteDump(w, img); err != nil {
				return err
			}
			a.log.Info("data flash dumped", zap.Int("bytes", len(img)), zap.String("out", flags.out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.describe, "describe", false, "Print decoded fields instead of raw bytes")
	return cmd
}

func writeValues(w io.Writer, vs []dftable.Value) error {
	for _, v := range vs {
		if _, err := fmt.Fprintln(w, v.Line()); err != nil {
			return err
		}
	}
	return nil
}

func newDFShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <dump>",
		Short: "Decode the known fields of a dump file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.image(args[0])
			if err != nil {
				return err
			}
			return writeValues(cmd.OutOrStdout(), dftable.Describe(a.table, img))
		},
	}
}

func newDFDiffCmd(a *app) *cobra.Command {
	var flags struct{ ra bool }
	cmd := &cobra.Command{
		Use:   "diff <dump-a> <dump-b>",
		Short: "Compare the known fields of two dumps",
		Long: `Compare two dump files field by field. "-" stands for the live gauge. The
Ra table changes during normal gauging and is skipped unless --ra is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ia, err := a.image(args[0])
			if err != nil {
				return err
			}
			ib, err := a.image(args[1])
			if err != nil {
				return err
			}
			var exclude []dftable.Range
			if !flags.ra {
				exclude = append(exclude, dftable.RaTable)
			}
			w := cmd.OutOrStdout()
			diffs := dftable.Compare(a.table, ia, ib, exclude...)
			for _, d := range diffs {
				fmt.Fprintf(w, "0x%04X: (%s) [%s] %s -> %s\n", d.Field.Addr, d.Field.Type, d.Field.Name,
					side(d.A, d.AMissing), side(d.B, d.BMissing))
			}
			fmt.Fprintf(w, "%d field(s) differ\n", len(diffs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.ra, "ra", false, "Include the Ra table")
	return cmd
}

func side(v dftable.Value, missing bool) string {
	if missing {
		return "-"
	}
	return v.String()
}

func newDFApplyCmd(a *app) *cobra.Command {
	var flags struct{ dryRun bool }
	cmd := &cobra.Command{
		Use:   "apply <dump>",
		Short: "Write the known fields of a dump that differ from the gauge",
		Long: `Compare a dump file with the live gauge and write each known field whose
value differs. The Ra table is never written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := a.image(args[0])
			if err != nil {
				return err
			}
			have, err := a.image("-")
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			n := 0
			for _, d := range dftable.Compare(a.table, want, have, dftable.RaTable) {
				if d.AMissing {
					continue
				}
				fmt.Fprintf(w, "0x%04X: [%s] %s -> %s\n", d.Field.Addr, d.Field.Name, side(d.B, d.BMissing), d.A.String())
				if flags.dryRun {
					continue
				}
				if err := a.dev.WriteDataFlash(d.Field.Addr, d.A.Raw); err != nil {
					return err
				}
				n++
			}
			fmt.Fprintf(w, "%d field(s) written\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Only list the differences")
	return cmd
}
