package assets

import (
	"bytes"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/errors"
)

func solid(w, h int, c color.NRGBA) image.Image {
	return imaging.New(w, h, c)
}

func TestPoolPick(t *testing.T) {
	p := NewPool("bg")
	if _, err := p.Pick(rand.New(rand.NewPCG(1, 2))); !errors.Is(err, errors.ErrCodeMissingAssetPool) {
		t.Fatalf("empty pool err = %v", err)
	}

	red := p.Add("red", solid(4, 4, color.NRGBA{255, 0, 0, 255}))
	p.Add("blue", solid(4, 4, color.NRGBA{0, 0, 255, 255}))
	if red.ID == "" || red.Width != 4 || red.Pool != "bg" {
		t.Errorf("asset = %+v", red)
	}

	pick := func(seed uint64) []color.Color {
		rng := rand.New(rand.NewPCG(seed, 7))
		var out []color.Color
		for range 8 {
			img, err := p.Pick(rng)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, img.At(0, 0))
		}
		return out
	}
	a, b := pick(3), pick(3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different picks at %d", i)
		}
	}

	if !p.Remove(red.ID) || p.Remove(red.ID) {
		t.Error("Remove should succeed exactly once")
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := imaging.Save(solid(8, 6, color.NRGBA{10, 20, 30, 255}), filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(solid(8, 6, color.NRGBA{10, 20, 30, 255}), filepath.Join(dir, "a.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	p := LoadDir("bg", dir, log.New(&buf))
	if p.Len() != 2 {
		t.Fatalf("Len = %d, want 2", p.Len())
	}
	if names := []string{p.List()[0].Name, p.List()[1].Name}; names[0] != "a.jpg" || names[1] != "b.png" {
		t.Errorf("names = %v", names)
	}
	if !strings.Contains(buf.String(), "broken.png") {
		t.Errorf("expected a warning about broken.png, got %q", buf.String())
	}

	missing := LoadDir("title", filepath.Join(dir, "nope"), log.New(&buf))
	if missing.Len() != 0 {
		t.Errorf("missing dir gave %d assets", missing.Len())
	}
}

func TestSetRequire(t *testing.T) {
	s := NewSet(NewPool("bg"))
	tests := []struct {
		name  string
		setup func()
		pools []string
		ok    bool
	}{
		{"nothing required", func() {}, nil, true},
		{"empty pool", func() {}, []string{"bg"}, false},
		{"unknown pool", func() {}, []string{"title"}, false},
		{"filled pool", func() { s.Pool("bg").Add("x", solid(1, 1, color.NRGBA{A: 255})) }, []string{"bg"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			err := s.Require(tt.pools...)
			if (err == nil) != tt.ok {
				t.Errorf("Require(%v) = %v", tt.pools, err)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeMissingAssetPool) {
				t.Errorf("wrong code: %v", err)
			}
		})
	}
}

func TestSetFindRemove(t *testing.T) {
	s := NewSet()
	a := s.Pool("title").Add("t", solid(2, 2, color.NRGBA{A: 255}))
	if got, ok := s.Find(a.ID); !ok || got.Name != "t" {
		t.Errorf("Find = %+v, %v", got, ok)
	}
	if !s.Remove(a.ID) {
		t.Error("Remove failed")
	}
	if _, ok := s.Find(a.ID); ok {
		t.Error("asset still present")
	}
	if names := s.Names(); len(names) != 1 || names[0] != "title" {
		t.Errorf("Names = %v", names)
	}
}
