package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/membergraph/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and the default member types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			st, err := openStore(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()
			ran, err := migrate(cmd.Context(), st)
			if err != nil {
				return err
			}
			if !ran {
				return fmt.Errorf("driver %q has no schema to migrate", cfg.Database.Driver)
			}
			log.Info("database migrated", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
	config.DatabaseFlags(cmd.Flags())
	return cmd
}
