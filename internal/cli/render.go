package cli

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/xob0t/GoCard/pkg/compose"
	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/generator"
	"github.com/xob0t/GoCard/pkg/template"
)

// renderOpts holds the render command flags. Empty values fall back to
// gocard.toml and then to the built-in defaults.
type renderOpts struct {
	config      string
	presets     string
	pack        string
	variants    string
	title       string
	subtitle    string
	price       string
	qr          string
	productType string
	textConfig  string
	backgrounds string
	titles      string
	seed        uint64
	workers     int
	format      string
	output      string
	reel        string
	reelSeconds int
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <cutout>...",
		Short: "Render card variants for product cutouts",
		Long: `Render composes every selected variant for each background-removed
product cutout and writes <output>/<name>/<name>_variant_<n>.<format>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := resolveRenderConfig(cmd, &opts)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), args, fc, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "config file (default ./gocard.toml when present)")
	f.StringVar(&opts.presets, "presets", "", "presets.toml with extra variants")
	f.StringVar(&opts.pack, "pack", "", ".cardpack bundle with variants, pools and fonts")
	f.StringVar(&opts.variants, "variants", "", "variants to render: all, ids, ranges (2-5) or names, comma-separated")
	f.StringVar(&opts.title, "title", "", "title text (default from the product text config)")
	f.StringVar(&opts.subtitle, "subtitle", "", "subtitle text")
	f.StringVar(&opts.price, "price", "", "price text")
	f.StringVar(&opts.qr, "qr", "", "encode this text as a QR badge")
	f.StringVar(&opts.productType, "type", "", "product type for text lookup (default from the file name)")
	f.StringVar(&opts.textConfig, "text-config", "", "product text config JSON")
	f.StringVar(&opts.backgrounds, "backgrounds", "", "background pool folder")
	f.StringVar(&opts.titles, "titles", "", "title chip pool folder")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed")
	f.IntVar(&opts.workers, "workers", 0, "parallel variant renders (default every CPU)")
	f.StringVarP(&opts.format, "format", "f", "", "output format: png, jpg, bmp")
	f.StringVarP(&opts.output, "output", "o", "", "output directory")
	f.StringVar(&opts.reel, "reel", "", "also write an MJPEG AVI preview reel to this file")
	f.IntVar(&opts.reelSeconds, "reel-seconds", 2, "seconds each variant stays on screen in the reel")

	return cmd
}

// resolveRenderConfig loads gocard.toml and lays the set flags over it.
func resolveRenderConfig(cmd *cobra.Command, opts *renderOpts) (fileConfig, error) {
	logger := loggerFromContext(cmd.Context())
	fc, warnings, err := loadFileConfig(opts.config)
	if err != nil {
		return fc, err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	overrides := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"presets", &fc.Assets.Presets, opts.presets},
		{"pack", &fc.Assets.Pack, opts.pack},
		{"text-config", &fc.Assets.ProductText, opts.textConfig},
		{"backgrounds", &fc.Assets.Backgrounds, opts.backgrounds},
		{"titles", &fc.Assets.Titles, opts.titles},
		{"format", &fc.Output.Format, opts.format},
		{"output", &fc.Output.Dir, opts.output},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = o.val
		}
	}
	if cmd.Flags().Changed("variants") {
		fc.Render.Variants = splitList(opts.variants)
	}
	if cmd.Flags().Changed("seed") {
		fc.Render.Seed = opts.seed
	}
	if cmd.Flags().Changed("workers") {
		fc.Render.Workers = opts.workers
	}
	return fc, nil
}

func runRender(ctx context.Context, cutouts []string, fc fileConfig, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	format, err := generator.ParseFormat(fc.Output.Format)
	if err != nil {
		return err
	}

	src := sourcesFrom(fc)
	src.presetsFlag = opts.presets != ""
	e, err := loadEnv(logger, src)
	if err != nil {
		return err
	}
	defer e.cleanup()

	variants, err := e.catalog.Select(fc.Render.Variants)
	if err != nil {
		return err
	}
	if implicitAll(fc.Render.Variants) {
		variants = withPools(logger, e, variants)
	}
	if len(variants) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no variants selected")
	}

	composer := e.composer(fc.composeConfig(), logger)
	override := template.Text{Title: opts.title, Subtitle: opts.subtitle, Price: opts.price}

	var (
		frames  []image.Image
		written int
		failed  int
	)
	for _, path := range cutouts {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cutout, err := imaging.Open(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "open cutout %s", path)
		}

		ptype := opts.productType
		if ptype == "" {
			ptype = template.ProductTypeFromName(base)
		}
		text := template.MergeText(e.products.Pick(ptype, compose.VariantRNG(fc.Render.Seed, 0)), override)
		in := compose.Input{Cutout: cutout, Text: text, QR: opts.qr}

		logger.Info("Rendering", "cutout", path, "type", ptype, "variants", len(variants))
		results, err := composer.RenderAll(ctx, in, variants, fc.Render.Seed)
		switch {
		case errors.Is(err, errors.ErrCodeEmptySprite):
			logger.Error("cutout rejected", "cutout", path, "err", err)
			failed += len(variants)
			continue
		case err != nil:
			return err
		}

		for _, r := range results {
			if r.Err != nil {
				failed++
				continue
			}
			out := generator.OutputPath(fc.Output.Dir, base, r.Variant.ID, format)
			if err := generator.Save(out, r.Card.Image); err != nil {
				return err
			}
			logger.Debug("saved", "file", out, "took", r.Duration.Round(time.Millisecond))
			frames = append(frames, r.Card.Image)
			written++
		}
	}

	if opts.reel != "" && len(frames) > 0 {
		if err := generator.SaveReel(opts.reel, frames, generator.ReelOptions{SecondsPerFrame: opts.reelSeconds}); err != nil {
			return err
		}
		logger.Info("Wrote reel", "file", opts.reel, "frames", len(frames))
	}

	prog.done(fmt.Sprintf("Rendered %d cards to %s", written, fc.Output.Dir))
	if written == 0 && failed > 0 {
		return fmt.Errorf("all %d renders failed", failed)
	}
	return nil
}

func implicitAll(keys []string) bool {
	return len(keys) == 0 || (len(keys) == 1 && strings.EqualFold(keys[0], "all"))
}

// withPools drops variants whose asset pools are empty. It only applies to
// the implicit "all" selection; naming such a variant is still fatal.
func withPools(logger *log.Logger, e *env, variants []template.Variant) []template.Variant {
	out := variants[:0:0]
	for _, v := range variants {
		if err := e.pools.Require(v.Pools()...); err != nil {
			logger.Warn("skipping variant", "variant", v.ID, "name", v.Name, "reason", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
