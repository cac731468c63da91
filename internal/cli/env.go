package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/compose"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

// env is everything a render needs besides the cutout: the variant catalog,
// asset pools, fonts and product text.
type env struct {
	catalog  *template.Catalog
	pools    *assets.Set
	fonts    *textlayout.Fonts
	products template.ProductConfig
	cleanup  func()
}

// sources names the inputs of an env. Paths from flags must exist; the
// ones from gocard.toml are skipped with a warning when missing.
type sources struct {
	presets     string
	presetsFlag bool
	pack        string
	productText string
	backgrounds string
	titles      string
	fonts       map[textlayout.Family][]string
}

func sourcesFrom(fc fileConfig) sources {
	return sources{
		presets:     fc.Assets.Presets,
		pack:        fc.Assets.Pack,
		productText: fc.Assets.ProductText,
		backgrounds: fc.Assets.Backgrounds,
		titles:      fc.Assets.Titles,
		fonts:       fc.fontPaths(),
	}
}

func loadEnv(logger *log.Logger, src sources) (*env, error) {
	e := &env{catalog: template.BuiltinCatalog(), cleanup: func() {}}
	if src.fonts == nil {
		src.fonts = map[textlayout.Family][]string{}
	}

	if src.pack != "" {
		b, cleanup, err := template.LoadBundle(src.pack)
		if err != nil {
			return nil, err
		}
		e.cleanup = cleanup
		for _, w := range b.Warnings {
			logger.Warn(w, "pack", src.pack)
		}
		e.catalog = template.MergeVariants(e.catalog, b.Presets.Variants...)
		if b.BackgroundDir != "" {
			src.backgrounds = b.BackgroundDir
		}
		if b.TitleDir != "" {
			src.titles = b.TitleDir
		}
		if b.ProductText != "" {
			src.productText = b.ProductText
		}
		for fam, p := range b.FontPaths {
			f := textlayout.Family(fam)
			src.fonts[f] = append([]string{p}, src.fonts[f]...)
		}
		logger.Info("Loaded pack", "name", b.Presets.Pack.Name, "variants", len(b.Presets.Variants))
	}

	if src.presets != "" {
		if _, err := os.Stat(src.presets); err == nil || src.presetsFlag {
			pf, warnings, err := template.LoadPresets(src.presets)
			if err != nil {
				e.cleanup()
				return nil, err
			}
			for _, w := range warnings {
				logger.Warn(w, "presets", src.presets)
			}
			e.catalog = template.MergeVariants(e.catalog, pf.Variants...)
			logger.Debug("loaded presets", "path", src.presets, "variants", len(pf.Variants))
		}
	}

	e.pools = assets.NewSet(
		loadPool(template.PoolBackground, src.backgrounds, logger),
		loadPool(template.PoolTitle, src.titles, logger),
	)
	e.fonts = textlayout.LoadFonts(logger, src.fonts)

	e.products = template.DefaultProductConfig()
	if src.productText != "" {
		cfg, warnings, err := template.LoadProductConfig(src.productText)
		if err != nil {
			e.cleanup()
			return nil, fmt.Errorf("product text: %w", err)
		}
		for _, w := range warnings {
			logger.Debug(w)
		}
		e.products = cfg
	}
	return e, nil
}

func loadPool(name, dir string, logger *log.Logger) *assets.Pool {
	if dir == "" {
		return assets.NewPool(name)
	}
	return assets.LoadDir(name, dir, logger)
}

func (e *env) composer(cfg compose.Config, logger *log.Logger) *compose.Composer {
	return compose.New(cfg,
		compose.WithLogger(logger),
		compose.WithFonts(e.fonts),
		compose.WithPools(e.pools),
	)
}
