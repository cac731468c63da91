package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVariantsCmd() *cobra.Command {
	var config, presets, pack string

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List the built-in and loaded card variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			fc, warnings, err := loadFileConfig(config)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				logger.Warn(w)
			}
			if cmd.Flags().Changed("presets") {
				fc.Assets.Presets = presets
			}
			if cmd.Flags().Changed("pack") {
				fc.Assets.Pack = pack
			}

			src := sourcesFrom(fc)
			src.presetsFlag = presets != ""
			// Listing needs no pools or product text.
			src.backgrounds, src.titles, src.productText = "", "", ""
			e, err := loadEnv(logger, src)
			if err != nil {
				return err
			}
			defer e.cleanup()

			fmt.Fprint(cmd.OutOrStdout(), e.catalog.Format())
			return nil
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "", "config file (default ./gocard.toml when present)")
	cmd.Flags().StringVar(&presets, "presets", "", "presets.toml with extra variants")
	cmd.Flags().StringVar(&pack, "pack", "", ".cardpack bundle")
	return cmd
}
