package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xob0t/GoCard/pkg/template"
)

func newInitCmd() *cobra.Command {
	var dir string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample gocard.toml, presets.toml and product_config.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeSamples(dir, force)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", p)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run: gocard render --variants all product.png")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to write the samples to")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

// writeSamples creates the sample files and the empty pool folders in dir.
// Existing files are kept unless force is set.
func writeSamples(dir string, force bool) ([]string, error) {
	files := []struct {
		name, body string
	}{
		{defaultConfigFile, sampleConfig},
		{"presets.toml", template.ExamplePresets()},
		{"product_config.json", template.ExampleProductConfig()},
	}

	var written []string
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if _, err := os.Stat(p); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use --force to overwrite)", p)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return written, fmt.Errorf("create %s: %w", dir, err)
		}
		if err := os.WriteFile(p, []byte(f.body), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	for _, sub := range []string{template.BundleBackgrounds, template.BundleTitles} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return written, fmt.Errorf("create %s: %w", sub, err)
		}
	}
	return written, nil
}
