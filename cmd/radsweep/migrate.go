package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"radsweep-hq/radsweep/pkg/accounting/storage"
	"radsweep-hq/radsweep/pkg/cli"
	"radsweep-hq/radsweep/pkg/config"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Long: `Apply pending schema migrations to the configured SQL database and
print the resulting schema version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.MemoryDriver {
				return cli.NewConfigError("database.driver", "migrate needs a SQL driver")
			}

			ctx, stop := cli.SetupSignalHandler(cmd.Context())
			defer stop()

			sqlCfg := cfg.Database.SQLConfig()
			sqlCfg.Migrate = false
			store, err := storage.NewSQLStore(ctx, sqlCfg)
			if err != nil {
				return cli.NewCommandError("migrate", err)
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return cli.NewCommandError("migrate", err)
			}
			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return cli.NewCommandError("migrate", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", store, version)
			return nil
		},
	}
}
