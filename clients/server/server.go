// Package server provides the GoCard HTTP render API.
package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/compose"
	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/generator"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

// Upload limits.
const (
	maxImageUpload = 20 << 20
	maxPackUpload  = 100 << 20
)

// Options configures a Server. Nil fields get defaults.
type Options struct {
	Config  compose.Config
	Catalog *template.Catalog
	Pools   *assets.Set
	Fonts   *textlayout.Fonts
	Logger  *log.Logger
}

// Server renders cards over HTTP. Uploaded pool images live in memory for
// the lifetime of the process.
type Server struct {
	mu       sync.RWMutex
	catalog  *template.Catalog
	pools    *assets.Set
	composer *compose.Composer
	logger   *log.Logger
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = template.BuiltinCatalog()
	}
	if opts.Pools == nil {
		opts.Pools = assets.NewSet(assets.NewPool(template.PoolBackground), assets.NewPool(template.PoolTitle))
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	composer := compose.New(opts.Config,
		compose.WithLogger(opts.Logger),
		compose.WithFonts(opts.Fonts),
		compose.WithPools(opts.Pools),
	)
	return &Server{
		catalog:  opts.Catalog,
		pools:    opts.Pools,
		composer: composer,
		logger:   opts.Logger,
	}
}

// Handler returns the gin engine serving the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/variants", s.handleVariants)
		api.POST("/render", s.handleRender)
		api.POST("/render/reel", s.handleReel)
		api.POST("/upload/background", s.handleUpload)
		api.POST("/import/pack", s.handleImportPack)
		api.GET("/assets", s.handleListAssets)
		api.GET("/assets/:id", s.handleGetAsset)
		api.DELETE("/assets/:id", s.handleDeleteAsset)
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("GoCard API listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request", "method", c.Request.Method, "path", c.FullPath(), "status", c.Writer.Status(), "took", time.Since(start).Round(time.Millisecond))
	}
}

// ── Render ──

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type variantInfo struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Pools       []string `json:"pools,omitempty"`
}

func (s *Server) handleVariants(c *gin.Context) {
	s.mu.RLock()
	list := s.catalog.List()
	s.mu.RUnlock()

	out := make([]variantInfo, 0, len(list))
	for _, v := range list {
		out = append(out, variantInfo{ID: v.ID, Name: v.Name, Description: v.Description, Pools: v.Pools()})
	}
	c.JSON(http.StatusOK, out)
}

// renderForm is the multipart body shared by /render and /render/reel.
type renderForm struct {
	Variant  string `form:"variant"`
	Title    string `form:"title"`
	Subtitle string `form:"subtitle"`
	Price    string `form:"price"`
	QR       string `form:"qr"`
	Seed     uint64 `form:"seed"`
	Format   string `form:"format"`
}

func (s *Server) readRender(c *gin.Context) (renderForm, compose.Input, error) {
	var form renderForm
	if err := c.ShouldBind(&form); err != nil {
		return form, compose.Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad form")
	}
	fh, err := c.FormFile("cutout")
	if err != nil {
		return form, compose.Input{}, errors.New(errors.ErrCodeInvalidInput, "cutout file is required")
	}
	img, err := decodeUpload(fh, maxImageUpload)
	if err != nil {
		return form, compose.Input{}, err
	}
	in := compose.Input{
		Cutout: img,
		Text:   template.Text{Title: form.Title, Subtitle: form.Subtitle, Price: form.Price},
		QR:     form.QR,
	}
	return form, in, nil
}

func (s *Server) handleRender(c *gin.Context) {
	form, in, err := s.readRender(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	format, err := generator.ParseFormat(form.Format)
	if err != nil {
		s.fail(c, err)
		return
	}

	key := form.Variant
	if key == "" {
		key = "1"
	}
	s.mu.RLock()
	v, err := s.catalog.Lookup(key)
	s.mu.RUnlock()
	if err != nil {
		s.fail(c, err)
		return
	}

	card, err := s.composer.Render(in, v, compose.VariantRNG(form.Seed, v.ID))
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := generator.Encode(&buf, card.Image, format); err != nil {
		s.fail(c, err)
		return
	}
	if len(card.Skipped) > 0 {
		c.Header("X-Skipped-Blocks", strconv.Itoa(len(card.Skipped)))
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// handleReel renders the selected variants (comma-separated, default all)
// and returns them as an MJPEG AVI.
func (s *Server) handleReel(c *gin.Context) {
	form, in, err := s.readRender(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var keys []string
	if form.Variant != "" {
		keys = []string{form.Variant}
	}
	s.mu.RLock()
	variants, err := s.catalog.Select(keys)
	s.mu.RUnlock()
	if err != nil {
		s.fail(c, err)
		return
	}

	results, err := s.composer.RenderAll(c.Request.Context(), in, variants, form.Seed)
	if err != nil {
		s.fail(c, err)
		return
	}
	frames := make([]image.Image, 0, len(results))
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		frames = append(frames, r.Card.Image)
	}
	if len(frames) == 0 && firstErr != nil {
		s.fail(c, firstErr)
		return
	}

	var buf bytes.Buffer
	if err := generator.WriteReel(&buf, frames, generator.ReelOptions{}); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cards.avi"`)
	c.Data(http.StatusOK, "video/avi", buf.Bytes())
}

// ── Assets ──

func (s *Server) handleUpload(c *gin.Context) {
	pool := c.DefaultQuery("pool", template.PoolBackground)
	if pool != template.PoolBackground && pool != template.PoolTitle {
		s.fail(c, errors.New(errors.ErrCodeInvalidInput, "pool must be %q or %q", template.PoolBackground, template.PoolTitle))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		s.fail(c, errors.New(errors.ErrCodeInvalidInput, "file is required"))
		return
	}
	img, err := decodeUpload(fh, maxImageUpload)
	if err != nil {
		s.fail(c, err)
		return
	}
	a := s.pools.Pool(pool).Add(fh.Filename, img)
	s.logger.Info("asset added", "pool", pool, "id", a.ID, "name", a.Name)
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListAssets(c *gin.Context) {
	out := []assets.Asset{}
	for _, name := range s.pools.Names() {
		out = append(out, s.pools.Pool(name).List()...)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetAsset(c *gin.Context) {
	a, ok := s.pools.Find(c.Param("id"))
	if !ok {
		s.fail(c, errors.New(errors.ErrCodeNotFound, "asset %s not found", c.Param("id")))
		return
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, a.Image, generator.PNG); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, generator.PNG.ContentType(), buf.Bytes())
}

func (s *Server) handleDeleteAsset(c *gin.Context) {
	id := c.Param("id")
	if !s.pools.Remove(id) {
		s.fail(c, errors.New(errors.ErrCodeNotFound, "asset %s not found", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

// handleImportPack merges a .cardpack upload: its variants join the
// catalog and its pool folders are appended to the in-memory pools.
func (s *Server) handleImportPack(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.fail(c, errors.New(errors.ErrCodeInvalidInput, "file is required"))
		return
	}
	tmp, err := os.CreateTemp("", "upload-*.cardpack")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer os.Remove(tmp.Name())
	if err := copyUpload(tmp, fh, maxPackUpload); err != nil {
		tmp.Close()
		s.fail(c, err)
		return
	}
	tmp.Close()

	b, cleanup, err := template.LoadBundle(tmp.Name())
	if err != nil {
		s.fail(c, errors.Wrap(errors.ErrCodeInvalidPreset, err, "import %s", fh.Filename))
		return
	}
	defer cleanup()

	added := map[string]int{}
	for pool, dir := range map[string]string{template.PoolBackground: b.BackgroundDir, template.PoolTitle: b.TitleDir} {
		if dir == "" {
			continue
		}
		for _, a := range assets.LoadDir(pool, dir, s.logger).List() {
			s.pools.Pool(pool).Add(a.Name, a.Image)
			added[pool]++
		}
	}

	s.mu.Lock()
	s.catalog = template.MergeVariants(s.catalog, b.Presets.Variants...)
	s.mu.Unlock()

	s.logger.Info("pack imported", "name", b.Presets.Pack.Name, "variants", len(b.Presets.Variants))
	c.JSON(http.StatusOK, gin.H{
		"pack":     b.Presets.Pack,
		"variants": len(b.Presets.Variants),
		"assets":   added,
		"warnings": b.Warnings,
	})
}

// ── Helpers ──

func decodeUpload(fh *multipart.FileHeader, limit int64) (image.Image, error) {
	if fh.Size > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", fh.Filename, limit)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", fh.Filename)
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", fh.Filename)
	}
	return img, nil
}

func copyUpload(dst io.Writer, fh *multipart.FileHeader, limit int64) error {
	if fh.Size > limit {
		return errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", fh.Filename, limit)
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", fh.Filename)
	}
	defer f.Close()
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("store %s: %w", filepath.Base(fh.Filename), err)
	}
	return nil
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPreset, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeEmptySprite:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeMissingAssetPool:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	c.JSON(status, gin.H{"error": errors.UserMessage(err), "code": code})
}
