package cli

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/product"
)

// runCLI executes the root command in dir and returns its stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCutout(t *testing.T, path string) {
	t.Helper()
	img := product.Solid(300, 400, color.NRGBA{R: 30, G: 90, B: 200, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2026-01-01")
	defer SetVersion("dev", "", "")
	if version != "1.0.0" || commit != "abc123" || date != "2026-01-01" {
		t.Errorf("got %q %q %q", version, commit, date)
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gocard.toml")
	body := `
[canvas]
width = 600
min_area_ratio = 0.3

[render]
seed = 77
variants = ["1", "3-4"]

[extra]
nope = true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	fc, warnings, err := loadFileConfig(path)
	if err != nil {
		t.Fatalf("loadFileConfig: %v", err)
	}
	if fc.Canvas.Width != 600 || fc.Canvas.Height != 0 || fc.Render.Seed != 77 {
		t.Errorf("decoded %+v", fc)
	}
	if fc.Output.Format != "png" || fc.Assets.Backgrounds != "bg" {
		t.Errorf("defaults lost: %+v", fc)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "extra.nope") {
		t.Errorf("warnings %v", warnings)
	}

	cfg := fc.composeConfig()
	if cfg.Width != 600 || cfg.MinAreaRatio != 0.3 {
		t.Errorf("compose config %+v", cfg)
	}

	if _, _, err := loadFileConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected an error for an explicit missing file")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"all", []string{"all"}},
		{" 1, 3-5 ,,bokeh", []string{"1", "3-5", "bokeh"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := splitList(tt.in)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitWritesSamples(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, name := range []string{"gocard.toml", "presets.toml", "product_config.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written", name)
		}
		if !strings.Contains(out, name) {
			t.Errorf("output does not mention %s: %q", name, out)
		}
	}
	if _, err := runCLI(t, dir, "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	// The sample config and presets are valid input for the other commands.
	if _, _, err := loadFileConfig(filepath.Join(dir, "gocard.toml")); err != nil {
		t.Errorf("sample config: %v", err)
	}
	out, err = runCLI(t, dir, "variants")
	if err != nil {
		t.Fatalf("variants: %v", err)
	}
	if !strings.Contains(out, "mint-split") {
		t.Errorf("sample presets not listed:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	writeCutout(t, filepath.Join(dir, "red_mug.png"))

	_, err := runCLI(t, dir, "render",
		"--variants", "1,3",
		"--price", "$9",
		"--seed", "5",
		"--format", "jpg",
		"--output", "out",
		"--reel", "out/reel.avi",
		"red_mug.png",
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, n := range []int{1, 3} {
		p := filepath.Join(dir, "out", "red_mug", fmt.Sprintf("red_mug_variant_%d.jpg", n))
		img, err := imaging.Open(p)
		if err != nil {
			t.Errorf("variant %d: %v", n, err)
			continue
		}
		if img.Bounds().Dx() != 900 || img.Bounds().Dy() != 1200 {
			t.Errorf("variant %d size %v", n, img.Bounds())
		}
	}
	if fi, err := os.Stat(filepath.Join(dir, "out", "reel.avi")); err != nil || fi.Size() == 0 {
		t.Errorf("reel not written: %v", err)
	}
}

func TestRenderImplicitAllSkipsEmptyPools(t *testing.T) {
	dir := t.TempDir()
	writeCutout(t, filepath.Join(dir, "bowl.png"))

	if _, err := runCLI(t, dir, "render", "--output", "out", "bowl.png"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "bowl", "bowl_variant_11.png")); err != nil {
		t.Errorf("variant 11 missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "bowl", "bowl_variant_12.png")); err == nil {
		t.Error("pool variant rendered without pools")
	}

	// Naming the pool variant explicitly is fatal.
	_, err := runCLI(t, dir, "render", "--variants", "12", "--output", "out", "bowl.png")
	if err == nil || !strings.Contains(err.Error(), "MISSING_ASSET_POOL") {
		t.Errorf("err = %v, want MISSING_ASSET_POOL", err)
	}
}
