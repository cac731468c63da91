package generator

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/errors"
)

func card(w, h int, c color.NRGBA) image.Image {
	return imaging.New(w, h, c)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", PNG, false},
		{".PNG", PNG, false},
		{"jpeg", JPEG, false},
		{".jpg", JPEG, false},
		{"bmp", BMP, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) code = %q", tt.in, errors.GetCode(err))
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := card(30, 40, color.NRGBA{200, 10, 10, 255})
	for _, f := range []Format{PNG, JPEG, BMP} {
		path := OutputPath(dir, "mug", 3, f)
		if err := Save(path, src); err != nil {
			t.Fatalf("Save %s: %v", f, err)
		}
		img, err := imaging.Open(path)
		if err != nil {
			t.Fatalf("reopen %s: %v", f, err)
		}
		if img.Bounds().Size() != image.Pt(30, 40) {
			t.Errorf("%s size = %v", f, img.Bounds().Size())
		}
	}
	if got := OutputPath("out", "mug", 3, PNG); got != filepath.Join("out", "mug", "mug_variant_3.png") {
		t.Errorf("OutputPath = %q", got)
	}
	if err := Save(filepath.Join(dir, "x.tiff"), src); err == nil {
		t.Error("expected an error for .tiff")
	}
}

func TestWriteReel(t *testing.T) {
	frames := []image.Image{
		card(64, 48, color.NRGBA{255, 0, 0, 255}),
		card(64, 48, color.NRGBA{0, 255, 0, 255}),
		card(32, 32, color.NRGBA{0, 0, 255, 255}),
	}
	var buf bytes.Buffer
	if err := WriteReel(&buf, frames, ReelOptions{FPS: 5, SecondsPerFrame: 1}); err != nil {
		t.Fatalf("WriteReel: %v", err)
	}
	data := buf.Bytes()

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Fatalf("bad header %q", data[:12])
	}
	if size := binary.LittleEndian.Uint32(data[4:8]); int(size) != len(data)-8 {
		t.Errorf("RIFF size = %d, file is %d", size, len(data))
	}
	// avih total frames lives after RIFF(12) + LIST hdr(12) + avih hdr(8) + 4 fields.
	if total := binary.LittleEndian.Uint32(data[12+12+8+16:]); total != 15 {
		t.Errorf("total frames = %d, want 15", total)
	}

	movi := bytes.Index(data, []byte("movi"))
	idx := bytes.LastIndex(data, []byte("idx1"))
	if movi < 0 || idx < movi {
		t.Fatalf("missing movi/idx1 (%d, %d)", movi, idx)
	}
	if n := binary.LittleEndian.Uint32(data[idx+4:]); n != 15*16 {
		t.Errorf("idx1 size = %d", n)
	}

	// The last index entry must point at a decodable JPEG of the first frame's size.
	last := idx + 8 + 14*16
	off := int(binary.LittleEndian.Uint32(data[last+8:]))
	length := int(binary.LittleEndian.Uint32(data[last+12:]))
	chunk := movi + off
	if string(data[chunk:chunk+4]) != "00dc" {
		t.Fatalf("index points at %q", data[chunk:chunk+4])
	}
	img, err := jpeg.Decode(bytes.NewReader(data[chunk+8 : chunk+8+length]))
	if err != nil {
		t.Fatalf("decode last frame: %v", err)
	}
	if img.Bounds().Size() != image.Pt(64, 48) {
		t.Errorf("last frame size = %v", img.Bounds().Size())
	}
	if r, _, b, _ := img.At(30, 20).RGBA(); b>>8 < 200 || r>>8 > 60 {
		t.Errorf("last frame should be blue, got r=%d b=%d", r>>8, b>>8)
	}
}

func TestWriteReelEmpty(t *testing.T) {
	if err := WriteReel(&bytes.Buffer{}, nil, ReelOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestSaveReel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reels", "mug.avi")
	if err := SaveReel(path, []image.Image{card(16, 16, color.NRGBA{A: 255})}, ReelOptions{}); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil || fi.Size() == 0 {
		t.Fatalf("reel not written: %v", err)
	}
}
