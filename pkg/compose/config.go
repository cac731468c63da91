package compose

import "runtime"

// Config is the explicit per-composer configuration.
type Config struct {
	Width        int     // canvas width, default 900
	Height       int     // canvas height, default 1200
	MinAreaRatio float64 // product area lower bound as a fraction of the canvas, default 0.4
	MaxAreaRatio float64 // upper bound, default 0.5
	Workers      int     // RenderAll parallelism, default runtime.NumCPU()
	QRSize       int     // QR badge edge in pixels, default 160
	QRMargin     int     // QR badge distance from the canvas corner, default 24
}

// DefaultConfig returns the conventional 900x1200 card setup.
func DefaultConfig() Config {
	return Config{
		Width:        900,
		Height:       1200,
		MinAreaRatio: 0.4,
		MaxAreaRatio: 0.5,
		Workers:      runtime.NumCPU(),
		QRSize:       160,
		QRMargin:     24,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.MinAreaRatio <= 0 {
		c.MinAreaRatio = d.MinAreaRatio
	}
	if c.MaxAreaRatio <= 0 {
		c.MaxAreaRatio = d.MaxAreaRatio
	}
	if c.MaxAreaRatio < c.MinAreaRatio {
		c.MaxAreaRatio = c.MinAreaRatio
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.QRSize <= 0 {
		c.QRSize = d.QRSize
	}
	if c.QRMargin < 0 {
		c.QRMargin = d.QRMargin
	}
	return c
}
