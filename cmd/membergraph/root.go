package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/membergraph/internal/config"
	"github.com/hanpama/membergraph/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "membergraph",
		Short: "GraphQL API over users, profiles, posts and subscriptions",
		Long: `membergraph serves a GraphQL API over users, their profiles, posts and
member types, and the subscription edges between users. Every operation gets
its own batching loaders, so sibling lookups share one backend call.

Settings come from flags, MEMBERGRAPH_* environment variables and an optional
config file, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "",
		"Configuration file. Overridden by environment variables and flags.")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig binds the command's flags, persistent ones included, onto a
// fresh viper instance and builds the typed configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	file, _ := cmd.Flags().GetString("config")
	return config.Load(v, file)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}
