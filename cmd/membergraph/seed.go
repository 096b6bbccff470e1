package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/membergraph/internal/config"
	"github.com/hanpama/membergraph/internal/store"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load YAML fixtures into the database",
		Long: `seed migrates the database and then writes the users, profiles, posts and
subscriptions described by a YAML fixtures file. Users are referenced by their
ref field; generated ids are printed as ref=id lines.`,
		Args: cobra.NoArgs,
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

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			fixtures, err := store.DecodeFixtures(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := openStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()
			if _, err := migrate(ctx, st); err != nil {
				return err
			}
			ids, err := store.Seed(ctx, st, fixtures)
			if err != nil {
				return err
			}
			for _, u := range fixtures.Users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", u.Ref, ids[u.Ref])
			}
			log.Info("fixtures loaded",
				zap.Int("users", len(fixtures.Users)),
				zap.Int("subscriptions", len(fixtures.Subscriptions)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixtures file")
	_ = cmd.MarkFlagRequired("file")
	config.DatabaseFlags(cmd.Flags())
	return cmd
}
