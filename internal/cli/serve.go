package cli

import (
	"github.com/spf13/cobra"

	"github.com/xob0t/GoCard/clients/server"
)

func newServeCmd() *cobra.Command {
	var config, addr, pack string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP render service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			fc, warnings, err := loadFileConfig(config)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				logger.Warn(w)
			}
			if cmd.Flags().Changed("addr") {
				fc.Server.Addr = addr
			}
			if cmd.Flags().Changed("pack") {
				fc.Assets.Pack = pack
			}

			e, err := loadEnv(logger, sourcesFrom(fc))
			if err != nil {
				return err
			}
			defer e.cleanup()

			srv := server.New(server.Options{
				Config:  fc.composeConfig(),
				Catalog: e.catalog,
				Pools:   e.pools,
				Fonts:   e.fonts,
				Logger:  logger,
			})
			return srv.Run(ctx, fc.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "", "config file (default ./gocard.toml when present)")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&pack, "pack", "", ".cardpack bundle to preload")
	return cmd
}
