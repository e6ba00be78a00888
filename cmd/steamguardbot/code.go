package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgard/steamguardbot/internal/authcode"
)

func newCodeCmd() *cobra.Command {
	var (
		opts authcode.Options
		at   int64
	)

	cmd := &cobra.Command{
		Use:   "code <secret>",
		Short: "Print the current code for a shared secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generator, err := authcode.New(opts)
			if err != nil {
				return err
			}

			when := time.Now()
			if at > 0 {
				when = time.Unix(at, 0)
			}

			code, err := generator.Generate(args[0], when)
			if err != nil {
				return fmt.Errorf("failed to generate code: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", authcode.AlgorithmSteam, "code algorithm: steam or totp")
	cmd.Flags().IntVar(&opts.Digits, "digits", 6, "number of digits for totp codes")
	cmd.Flags().DurationVar(&opts.Period, "period", authcode.DefaultPeriod, "code time step")
	cmd.Flags().Int64Var(&at, "at", 0, "unix time to generate the code for (default now)")

	return cmd
}
