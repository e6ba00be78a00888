package main

import "github.com/spf13/cobra"

const defaultConfigPath = "./config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "steamguardbot",
		Short:         "Telegram bot that keeps Steam Guard codes up to date",
		Long:          "steamguardbot registers Steam accounts sent with /code and edits each account's message with the current Steam Guard code every few seconds.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to configuration file")

	rootCmd.AddCommand(
		newCodeCmd(),
		newMigrateCmd(&configPath),
	)

	return rootCmd
}
