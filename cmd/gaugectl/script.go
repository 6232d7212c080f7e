package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScriptCmd(a *app) *cobra.Command {
	var flags struct{ keepGoing bool }
	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Run gaugectl commands from a file",
		Long: `Run one gaugectl command per line against the same gauge connection.
Lines are split with shell quoting rules; blank lines and # comments are
skipped. "-" reads the script from stdin. The first failing line stops the
script unless --keep-going is set.`,
		Example: "  # provision.gs\n  unseal\n  df set device_name \"pack 7\"\n  seal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return a.runScript(cmd, r, flags.keepGoing)
		},
	}
	cmd.Flags().BoolVar(&flags.keepGoing, "keep-going", false, "Continue after a failing line")
	return cmd
}

func (a *app) runScript(cmd *cobra.Command, r io.Reader, keepGoing bool) error {
	sc := bufio.NewScanner(r)
	var failed int
	for line := 1; sc.Scan(); line++ {
		words, err := shlex.Split(sc.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(words) == 0 {
			continue
		}
		if words[0] == "script" {
			return fmt.Errorf("line %d: scripts cannot nest", line)
		}
		sub := newRootCmd(a)
		sub.SetArgs(words)
		sub.SetIn(cmd.InOrStdin())
		sub.SetOut(cmd.OutOrStdout())
		sub.SetErr(cmd.ErrOrStderr())
		if err := sub.ExecuteContext(cmd.Context()); err != nil {
			a.log.Warn("script line failed", zap.Int("line", line), zap.Strings("args", words), zap.Error(err))
			if !keepGoing {
				return fmt.Errorf("line %d: %w", line, err)
			}
			failed++
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d script line(s) failed", failed)
	}
	return nil
}
