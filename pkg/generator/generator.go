// Package generator writes finished cards: single stills by format and
// multi-card MJPEG AVI preview reels.
package generator

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/errors"
)

// Format is an output still format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	BMP  Format = "bmp"
)

// ParseFormat accepts png, jpg/jpeg and bmp, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q: use png, jpg or bmp", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	}
	return "image/png"
}

func (f Format) imaging() imaging.Format {
	switch f {
	case JPEG:
		return imaging.JPEG
	case BMP:
		return imaging.BMP
	}
	return imaging.PNG
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	if err := imaging.Encode(w, img, f.imaging(), imaging.JPEGQuality(92)); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Save writes img to path, inferring the format from the extension and
// creating parent directories.
func Save(path string, img image.Image) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// OutputPath returns <dir>/<base>/<base>_variant_<n>.<ext>.
func OutputPath(dir, base string, n int, f Format) string {
	return filepath.Join(dir, base, fmt.Sprintf("%s_variant_%d.%s", base, n, f))
}
