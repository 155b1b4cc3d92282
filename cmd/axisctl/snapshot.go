package main

import (
	"github.com/spf13/cobra"

	"SignalAxis/internal/di"
	"SignalAxis/pkg/config"
)

func newSnapshotCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Rebuild the learning snapshot table from the warehouse",
		Long: `Recomputes the learning-period statistics of every axis and writes them to the
snapshot table. Only one build runs at a time when a shared cache is configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithEnv(configPath)
			if err != nil {
				return err
			}
			builder, cleanup, err := di.InitializeSnapshotBuilder(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
	return cmd
}
