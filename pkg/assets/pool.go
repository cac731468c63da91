// Package assets holds process-lifetime raster pools (card backgrounds and
// title-chip backgrounds) that variants sample from.
package assets

import (
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/xob0t/GoCard/pkg/errors"
)

// Asset is one decoded raster in a pool.
type Asset struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Pool   string      `json:"pool"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Image  image.Image `json:"-"`
}

// Pool is a named, concurrency-safe list of rasters.
type Pool struct {
	name   string
	mu     sync.RWMutex
	assets []Asset
}

// NewPool creates an empty pool.
func NewPool(name string) *Pool {
	return &Pool{name: name}
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Add stores img under a fresh ID.
func (p *Pool) Add(name string, img image.Image) Asset {
	b := img.Bounds()
	a := Asset{ID: uuid.New().String(), Name: name, Pool: p.name, Width: b.Dx(), Height: b.Dy(), Image: img}
	p.mu.Lock()
	p.assets = append(p.assets, a)
	p.mu.Unlock()
	return a
}

// Remove deletes the asset with id and reports whether it existed.
func (p *Pool) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, a := range p.assets {
		if a.ID == id {
			p.assets = append(p.assets[:i], p.assets[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of assets.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.assets)
}

// List returns a snapshot of the pool.
func (p *Pool) List() []Asset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Asset(nil), p.assets...)
}

// Pick returns a uniformly chosen raster. An empty pool is a
// MISSING_ASSET_POOL error.
func (p *Pool) Pick(rng *rand.Rand) (image.Image, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.assets) == 0 {
		return nil, errors.New(errors.ErrCodeMissingAssetPool, "asset pool %q is empty", p.name)
	}
	return p.assets[rng.IntN(len(p.assets))].Image, nil
}

// IsImageFile reports whether name has a supported raster extension.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// LoadDir fills a pool with every PNG/JPEG file in dir, sorted by name.
// Files that fail to decode are logged and skipped. A missing directory
// yields an empty pool and a warning.
func LoadDir(name, dir string, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.Default()
	}
	p := NewPool(name)

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("asset pool folder unavailable", "pool", name, "dir", dir, "err", err)
		return p
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsImageFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		img, err := imaging.Open(filepath.Join(dir, f))
		if err != nil {
			logger.Warn("skipping unreadable asset", "pool", name, "file", f, "err", err)
			continue
		}
		p.Add(f, img)
	}
	logger.Debug("asset pool loaded", "pool", name, "dir", dir, "count", p.Len())
	return p
}
