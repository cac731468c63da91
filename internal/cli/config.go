package cli

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/xob0t/GoCard/pkg/compose"
	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

// defaultConfigFile is read from the working directory when --config is
// not given.
const defaultConfigFile = "gocard.toml"

// fileConfig is the gocard.toml layout. Zero values mean "use the default".
type fileConfig struct {
	Canvas struct {
		Width        int     `toml:"width"`
		Height       int     `toml:"height"`
		MinAreaRatio float64 `toml:"min_area_ratio"`
		MaxAreaRatio float64 `toml:"max_area_ratio"`
	} `toml:"canvas"`

	Fonts struct {
		Bold    []string `toml:"bold"`
		Regular []string `toml:"regular"`
	} `toml:"fonts"`

	Assets struct {
		Backgrounds string `toml:"backgrounds"`
		Titles      string `toml:"titles"`
		ProductText string `toml:"product_text"`
		Presets     string `toml:"presets"`
		Pack        string `toml:"pack"`
	} `toml:"assets"`

	Output struct {
		Dir    string `toml:"dir"`
		Format string `toml:"format"`
	} `toml:"output"`

	Render struct {
		Seed     uint64   `toml:"seed"`
		Workers  int      `toml:"workers"`
		Variants []string `toml:"variants"`
	} `toml:"render"`

	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
}

// defaultFileConfig mirrors sampleConfig.
func defaultFileConfig() fileConfig {
	var fc fileConfig
	fc.Assets.Backgrounds = "bg"
	fc.Assets.Titles = "bg_title"
	fc.Assets.ProductText = "product_config.json"
	fc.Output.Dir = "output"
	fc.Output.Format = "png"
	fc.Render.Seed = 1
	fc.Render.Variants = []string{"all"}
	fc.Server.Addr = ":8080"
	return fc
}

// loadFileConfig decodes path over the defaults. An empty path reads
// gocard.toml when it exists and returns the defaults otherwise.
func loadFileConfig(path string) (fileConfig, []string, error) {
	fc := defaultFileConfig()
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return fc, nil, nil
		}
		path = defaultConfigFile
	}

	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	var warnings []string
	for _, key := range template.UnknownKeys(md) {
		warnings = append(warnings, "unknown config key "+key+" ignored")
	}
	return fc, warnings, nil
}

// composeConfig converts the canvas section for the composer.
func (fc fileConfig) composeConfig() compose.Config {
	return compose.Config{
		Width:        fc.Canvas.Width,
		Height:       fc.Canvas.Height,
		MinAreaRatio: fc.Canvas.MinAreaRatio,
		MaxAreaRatio: fc.Canvas.MaxAreaRatio,
		Workers:      fc.Render.Workers,
	}
}

func (fc fileConfig) fontPaths() map[textlayout.Family][]string {
	return map[textlayout.Family][]string{
		textlayout.Bold:    fc.Fonts.Bold,
		textlayout.Regular: fc.Fonts.Regular,
	}
}

// splitList parses comma-separated flag values, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

const sampleConfig = `# gocard configuration. Command-line flags override these values.

[canvas]
width = 900
height = 1200
min_area_ratio = 0.4
max_area_ratio = 0.5

[fonts]
# Tried in order before the system Arial and the embedded Go fonts.
bold = []
regular = []

[assets]
backgrounds = "bg"
titles = "bg_title"
product_text = "product_config.json"
presets = "presets.toml"
# pack = "theme.cardpack"

[output]
dir = "output"
format = "png"

[render]
seed = 1
workers = 0 # 0 uses every CPU
variants = ["all"]

[server]
addr = ":8080"
`
