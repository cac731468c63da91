// products.go - Product-type text configuration (titles and subtitles).
package template

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/GoCard/pkg/errors"
)

// Product types recognised from file names.
const (
	ProductDogBowl = "DOG_BOWL"
	ProductMug     = "MUG"
	ProductUnknown = "UNKNOWN"
)

// ProductTexts lists candidate titles and subtitles for one product type.
type ProductTexts struct {
	Titles    []string `json:"titles"`
	Subtitles []string `json:"subtitles"`
}

// ProductConfig maps a product type to its text candidates.
type ProductConfig map[string]ProductTexts

// DefaultProductConfig is used when no configuration file exists.
func DefaultProductConfig() ProductConfig {
	return ProductConfig{
		ProductDogBowl: {Titles: []string{"DOG BOWL (RED)", "Perfect Dog Bowl"}, Subtitles: []string{"Non-slip design"}},
		ProductMug:     {Titles: []string{"COFFEE MUG"}, Subtitles: []string{"Enjoy your hot drinks"}},
		ProductUnknown: {Titles: []string{"My Product"}, Subtitles: []string{"No info"}},
	}
}

// LoadProductConfig reads a product_config.json. A missing file yields the
// default table and a warning; a malformed one is an INVALID_INPUT error.
func LoadProductConfig(path string) (ProductConfig, []string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultProductConfig(), []string{fmt.Sprintf("%s not found, using default product text", path)}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read product config: %w", err)
	}

	var cfg ProductConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}

	var warnings []string
	if _, ok := cfg[ProductUnknown]; !ok {
		cfg[ProductUnknown] = DefaultProductConfig()[ProductUnknown]
		warnings = append(warnings, fmt.Sprintf("%s has no %s entry, using the default one", path, ProductUnknown))
	}
	return cfg, warnings, nil
}

// ProductTypeFromName guesses the product type from a file name.
func ProductTypeFromName(name string) string {
	base := strings.ToLower(filepath.Base(name))
	switch {
	case strings.Contains(base, "bowl"):
		return ProductDogBowl
	case strings.Contains(base, "mug"), strings.Contains(base, "cup"):
		return ProductMug
	}
	return ProductUnknown
}

// Pick chooses a random title and subtitle for productType, falling back to
// the UNKNOWN entry.
func (c ProductConfig) Pick(productType string, rng *rand.Rand) Text {
	texts, ok := c[productType]
	if !ok {
		texts = c[ProductUnknown]
	}
	return Text{Title: choose(texts.Titles, rng), Subtitle: choose(texts.Subtitles, rng)}
}

func choose(options []string, rng *rand.Rand) string {
	switch len(options) {
	case 0:
		return ""
	case 1:
		return options[0]
	}
	if rng == nil {
		return options[0]
	}
	return options[rng.IntN(len(options))]
}
