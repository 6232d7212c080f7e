package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bq28z610-go/internal/config"
)

// keyFlag resolves a --key override against the configured key.
func keyFlag(flagValue, configured string) (uint32, error) {
	s := configured
	if flagValue != "" {
		s = flagValue
	}
	k, err := config.ParseKey(s)
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", s, err)
	}
	return k, nil
}

func reportSecurity(cmd *cobra.Command, a *app) error {
	sec, err := a.dev.SecurityMode()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sec)
	return nil
}

func newUnsealCmd(a *app) *cobra.Command {
	var flags struct{ key string }
	cmd := &cobra.Command{
		Use:   "unseal",
		Short: "Send the unseal key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keyFlag(flags.key, a.cfg.Gauge.UnsealKey)
			if err != nil {
				return err
			}
			if err := a.dev.Unseal(k); err != nil {
				return err
			}
			return reportSecurity(cmd, a)
		},
	}
	cmd.Flags().StringVar(&flags.key, "key", "", "32-bit unseal key (default from gauge.unsealKey)")
	return cmd
}

func newFullAccessCmd(a *app) *cobra.Command {
	var flags struct{ key string }
	cmd := &cobra.Command{
		Use:   "full-access",
		Short: "Send the full-access key (gauge must be unsealed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keyFlag(flags.key, a.cfg.Gauge.FullAccessKey)
			if err != nil {
				return err
			}
			if err := a.dev.FullAccess(k); err != nil {
				return err
			}
			return reportSecurity(cmd, a)
		},
	}
	cmd.Flags().StringVar(&flags.key, "key", "", "32-bit full-access key (default from gauge.fullAccessKey)")
	return cmd
}

func newSealCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seal",
		Short: "Seal the gauge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.dev.Seal(); err != nil {
				return err
			}
			return reportSecurity(cmd, a)
		},
	}
}
