// avi.go - MJPEG AVI preview reels: each card is held on screen for a few
// seconds. The container is written by hand; there is no AVI muxer in the
// image libraries we use.
package generator

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/errors"
)

// ReelOptions control preview reel timing and quality.
type ReelOptions struct {
	FPS             int // default 15
	SecondsPerFrame int // default 2
	Quality         int // JPEG quality, default 90
}

func (o ReelOptions) normalize() ReelOptions {
	if o.FPS <= 0 {
		o.FPS = 15
	}
	if o.SecondsPerFrame <= 0 {
		o.SecondsPerFrame = 2
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 90
	}
	return o
}

// SaveReel writes a reel to path.
func SaveReel(path string, frames []image.Image, opts ReelOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteReel(f, frames, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteReel writes an MJPEG AVI showing every frame for SecondsPerFrame.
// Frames that differ in size from the first are fitted to it.
func WriteReel(w io.Writer, frames []image.Image, opts ReelOptions) error {
	if len(frames) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "reel has no frames")
	}
	opts = opts.normalize()

	size := frames[0].Bounds().Size()
	stills := make([][]byte, len(frames))
	var maxJPEG uint32
	for i, img := range frames {
		if img.Bounds().Size() != size {
			img = imaging.Fill(img, size.X, size.Y, imaging.Center, imaging.Lanczos)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
		stills[i] = buf.Bytes()
		maxJPEG = max(maxJPEG, uint32(buf.Len()))
	}

	repeat := uint32(opts.FPS * opts.SecondsPerFrame)
	fps := uint32(opts.FPS)
	totalFrames := repeat * uint32(len(stills))
	width, height := uint32(size.X), uint32(size.Y)

	moviSize := uint32(4)
	for _, s := range stills {
		moviSize += repeat * (8 + padded(uint32(len(s))))
	}
	idx1Size := 8 + totalFrames*16
	hdrlSize := uint32(4 + 64 + 124) // "hdrl" + avih chunk + strl list
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	aw := &aviWriter{w: bufio.NewWriter(w)}

	aw.fourCC("RIFF")
	aw.u32(fileSize)
	aw.fourCC("AVI ")

	aw.fourCC("LIST")
	aw.u32(hdrlSize)
	aw.fourCC("hdrl")

	aw.fourCC("avih")
	aw.u32(56)
	aw.u32(1000000 / fps) // microseconds per frame
	aw.u32(maxJPEG * fps) // max bytes per second
	aw.u32(0)             // padding granularity
	aw.u32(0x10)          // AVIF_HASINDEX
	aw.u32(totalFrames)
	aw.u32(0) // initial frames
	aw.u32(1) // streams
	aw.u32(maxJPEG)
	aw.u32(width)
	aw.u32(height)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	aw.fourCC("LIST")
	aw.u32(116)
	aw.fourCC("strl")

	aw.fourCC("strh")
	aw.u32(56)
	aw.fourCC("vids")
	aw.fourCC("MJPG")
	aw.u32(0) // flags
	aw.u16(0) // priority
	aw.u16(0) // language
	aw.u32(0) // initial frames
	aw.u32(1) // scale
	aw.u32(fps)
	aw.u32(0) // start
	aw.u32(totalFrames)
	aw.u32(maxJPEG)
	aw.u32(0) // quality
	aw.u32(0) // sample size
	aw.u16(0)
	aw.u16(0)
	aw.u16(uint16(width))
	aw.u16(uint16(height))

	aw.fourCC("strf")
	aw.u32(40)
	aw.u32(40) // biSize
	aw.u32(width)
	aw.u32(height)
	aw.u16(1)  // planes
	aw.u16(24) // bit count
	aw.fourCC("MJPG")
	aw.u32(width * height * 3)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	aw.fourCC("LIST")
	aw.u32(moviSize)
	aw.fourCC("movi")
	for _, s := range stills {
		for range repeat {
			aw.fourCC("00dc")
			aw.u32(uint32(len(s)))
			aw.bytes(s)
			if len(s)%2 != 0 {
				aw.bytes([]byte{0})
			}
		}
	}

	aw.fourCC("idx1")
	aw.u32(totalFrames * 16)
	offset := uint32(4) // relative to the "movi" fourcc
	for _, s := range stills {
		for range repeat {
			aw.fourCC("00dc")
			aw.u32(0x10) // AVIIF_KEYFRAME
			aw.u32(offset)
			aw.u32(uint32(len(s)))
			offset += 8 + padded(uint32(len(s)))
		}
	}

	return aw.flush()
}

func padded(n uint32) uint32 {
	return n + n%2
}

// aviWriter keeps the first write error so the header code stays linear.
type aviWriter struct {
	w   *bufio.Writer
	err error
}

func (a *aviWriter) bytes(b []byte) {
	if a.err == nil {
		_, a.err = a.w.Write(b)
	}
}

func (a *aviWriter) fourCC(s string) { a.bytes([]byte(s)) }

func (a *aviWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.bytes(b[:])
}

func (a *aviWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	a.bytes(b[:])
}

func (a *aviWriter) flush() error {
	if a.err != nil {
		return fmt.Errorf("write reel: %w", a.err)
	}
	if err := a.w.Flush(); err != nil {
		return fmt.Errorf("write reel: %w", err)
	}
	return nil
}
