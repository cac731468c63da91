// loader.go - Load presets.toml files and .cardpack (ZIP) bundles.
package template

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/xob0t/GoCard/pkg/errors"
)

// Bundle layout inside a .cardpack archive.
const (
	BundlePresetFile  = "preset.toml"
	BundleBackgrounds = "bg"
	BundleTitles      = "bg_title"
	BundleFonts       = "fonts"
	BundleProductText = "product_config.json"
)

// Bundle is an extracted .cardpack. Paths are empty for parts the archive
// does not contain.
type Bundle struct {
	Dir           string
	Presets       *PresetFile
	BackgroundDir string
	TitleDir      string
	ProductText   string
	FontPaths     map[string]string // family -> TTF path
	Warnings      []string
}

// UnknownKeys lists the undecoded keys of md, leaves only. Toml reports an
// unknown table alongside each of its keys; the table itself is dropped.
func UnknownKeys(md toml.MetaData) []string {
	undecoded := md.Undecoded()
	var keys []string
	for i, key := range undecoded {
		parent := false
		for j, other := range undecoded {
			if i != j && len(other) > len(key) && hasKeyPrefix(other, key) {
				parent = true
				break
			}
		}
		if !parent {
			keys = append(keys, key.String())
		}
	}
	return keys
}

func hasKeyPrefix(key, prefix toml.Key) bool {
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ParsePresets decodes presets TOML. Unknown keys are reported as warnings,
// invalid variants as an INVALID_PRESET error.
func ParsePresets(data string) (*PresetFile, []string, error) {
	var pf PresetFile
	md, err := toml.Decode(data, &pf)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "parse presets")
	}

	var warnings []string
	for _, key := range UnknownKeys(md) {
		warnings = append(warnings, fmt.Sprintf("unknown preset key %q ignored", key))
	}
	for i := range pf.Variants {
		applyVariantDefaults(&pf.Variants[i])
		w, err := Validate(pf.Variants[i])
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, w...)
	}
	return &pf, warnings, nil
}

// LoadPresets reads and parses a presets.toml file.
func LoadPresets(path string) (*PresetFile, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read presets: %w", err)
	}
	pf, warnings, err := ParsePresets(string(data))
	if err != nil {
		return nil, warnings, fmt.Errorf("%s: %w", path, err)
	}
	return pf, warnings, nil
}

// LoadBundle opens a .cardpack ZIP, extracts it to a temp directory and
// parses its preset.toml. The returned cleanup function removes the temp
// directory.
func LoadBundle(path string) (*Bundle, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "cardpack-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(&r.Reader, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	b, err := openBundleDir(tmpDir)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("%s: %w", path, err)
	}
	return b, cleanup, nil
}

func openBundleDir(dir string) (*Bundle, error) {
	b := &Bundle{Dir: dir, FontPaths: map[string]string{}}

	pf, warnings, err := LoadPresets(filepath.Join(dir, BundlePresetFile))
	if err != nil {
		return nil, err
	}
	b.Presets = pf
	b.Warnings = warnings

	if isDir(filepath.Join(dir, BundleBackgrounds)) {
		b.BackgroundDir = filepath.Join(dir, BundleBackgrounds)
	}
	if isDir(filepath.Join(dir, BundleTitles)) {
		b.TitleDir = filepath.Join(dir, BundleTitles)
	}
	if _, err := os.Stat(filepath.Join(dir, BundleProductText)); err == nil {
		b.ProductText = filepath.Join(dir, BundleProductText)
	}
	for _, fam := range []string{"bold", "regular"} {
		for _, ext := range []string{".ttf", ".otf"} {
			p := filepath.Join(dir, BundleFonts, fam+ext)
			if _, err := os.Stat(p); err == nil {
				b.FontPaths[fam] = p
				break
			}
		}
	}
	return b, nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// applyVariantDefaults fills in fields a preset may leave out.
func applyVariantDefaults(v *Variant) {
	if v.Background.Kind == "" {
		v.Background.Kind = "solid"
	}
	if v.Background.Kind == "pool" && v.Background.Pool == "" {
		v.Background.Pool = PoolBackground
	}
	if v.Product.Anchor == "" {
		v.Product.Anchor = "bottom-center"
	}
	for i := range v.Blocks {
		b := &v.Blocks[i]
		if b.Family == "" {
			b.Family = "bold"
			if b.Role == "subtitle" {
				b.Family = "regular"
			}
		}
		if b.Size <= 0 {
			switch b.Role {
			case "subtitle":
				b.Size = 50
			case "price":
				b.Size = 60
			default:
				b.Size = 80
			}
		}
		if b.Color == "" {
			b.Color = "black"
		}
		if b.Align == "" {
			b.Align = "left"
		}
		if b.Placement == "" {
			b.Placement = "flow"
		}
	}
}

// extractZip extracts all files from a zip reader into destDir.
// maxBundleBytes caps the total uncompressed size of an extracted bundle.
var maxBundleBytes int64 = 512 << 20

func extractZip(r *zip.Reader, destDir string) error {
	budget := maxBundleBytes
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return errors.New(errors.ErrCodeInvalidInput, "illegal path in archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		n, err := extractFile(f, target, budget)
		if err != nil {
			return err
		}
		budget -= n
	}
	return nil
}

// extractFile copies at most limit bytes of f; the header's declared size
// is not trusted.
func extractFile(f *zip.File, target string, limit int64) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, errors.New(errors.ErrCodeInvalidInput, "archive exceeds %d bytes uncompressed at %s", maxBundleBytes, f.Name)
	}
	return n, nil
}
