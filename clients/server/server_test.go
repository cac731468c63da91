package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/product"
	"github.com/xob0t/GoCard/pkg/template"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(Options{Logger: log.New(io.Discard)})
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartBody builds a form with one file field and plain fields.
func multipartBody(t *testing.T, fileField string, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := w.CreateFormFile(fileField, "item.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(file)
	}
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func do(s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return body.Code
}

func TestHealthAndVariants(t *testing.T) {
	s := newTestServer(t)

	if rec := do(s, http.MethodGet, "/api/health", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("health status %d", rec.Code)
	}

	rec := do(s, http.MethodGet, "/api/variants", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("variants status %d", rec.Code)
	}
	var list []variantInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 12 || list[0].ID != 1 {
		t.Errorf("got %d variants, first %+v", len(list), list[0])
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	cutout := pngBytes(t, product.Solid(200, 300, color.NRGBA{R: 200, G: 40, B: 40, A: 255}))
	empty := pngBytes(t, image.NewNRGBA(image.Rect(0, 0, 20, 20)))

	tests := []struct {
		name     string
		file     []byte
		fields   map[string]string
		status   int
		code     string
		wantType string
	}{
		{"png", cutout, map[string]string{"variant": "3", "title": "Mug", "seed": "9"}, http.StatusOK, "", "image/png"},
		{"by name as jpeg", cutout, map[string]string{"variant": "bokeh", "format": "jpg"}, http.StatusOK, "", "image/jpeg"},
		{"missing cutout", nil, map[string]string{"variant": "1"}, http.StatusBadRequest, "INVALID_INPUT", ""},
		{"unknown variant", cutout, map[string]string{"variant": "99"}, http.StatusNotFound, "NOT_FOUND", ""},
		{"empty sprite", empty, map[string]string{"variant": "1"}, http.StatusUnprocessableEntity, "EMPTY_SPRITE", ""},
		{"empty pool", cutout, map[string]string{"variant": "12"}, http.StatusConflict, "MISSING_ASSET_POOL", ""},
		{"bad format", cutout, map[string]string{"format": "gif"}, http.StatusBadRequest, "INVALID_FORMAT", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, "cutout", tt.file, tt.fields)
			rec := do(s, http.MethodPost, "/api/render", body, ct)
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code != "" {
				if got := errorCode(t, rec); got != tt.code {
					t.Errorf("code %q, want %q", got, tt.code)
				}
				return
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("content type %q, want %q", got, tt.wantType)
			}
			img, _, err := image.Decode(rec.Body)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds().Dx() != 900 || img.Bounds().Dy() != 1200 {
				t.Errorf("size %v", img.Bounds())
			}
		})
	}
}

func TestUploadEnablesPoolVariant(t *testing.T) {
	s := newTestServer(t)
	raster := pngBytes(t, product.Solid(30, 30, color.NRGBA{B: 200, A: 255}))

	var ids []string
	for _, pool := range []string{"bg", "title"} {
		body, ct := multipartBody(t, "file", raster, nil)
		rec := do(s, http.MethodPost, "/api/upload/background?pool="+pool, body, ct)
		if rec.Code != http.StatusCreated {
			t.Fatalf("upload %s: %d %s", pool, rec.Code, rec.Body.String())
		}
		var a assets.Asset
		if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
			t.Fatal(err)
		}
		if a.ID == "" || a.Pool != pool || a.Width != 30 {
			t.Errorf("asset %+v", a)
		}
		ids = append(ids, a.ID)
	}

	cutout := pngBytes(t, product.Solid(100, 100, color.NRGBA{R: 255, A: 255}))
	body, ct := multipartBody(t, "cutout", cutout, map[string]string{"variant": "12", "title": "Bowl"})
	if rec := do(s, http.MethodPost, "/api/render", body, ct); rec.Code != http.StatusOK {
		t.Fatalf("pool variant: %d %s", rec.Code, rec.Body.String())
	}

	rec := do(s, http.MethodGet, "/api/assets", nil, "")
	var list []assets.Asset
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("list = %v, %v", list, err)
	}
	if rec := do(s, http.MethodGet, "/api/assets/"+ids[0], nil, ""); rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("get asset: %d", rec.Code)
	}
	if rec := do(s, http.MethodDelete, "/api/assets/"+ids[0], nil, ""); rec.Code != http.StatusOK {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec := do(s, http.MethodDelete, "/api/assets/"+ids[0], nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: %d", rec.Code)
	}
}

func TestUploadRejectsUnknownPool(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "file", pngBytes(t, product.Solid(4, 4, color.NRGBA{A: 255})), nil)
	rec := do(s, http.MethodPost, "/api/upload/background?pool=fonts", body, ct)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
		t.Errorf("status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestReel(t *testing.T) {
	s := newTestServer(t)
	cutout := pngBytes(t, product.Solid(120, 160, color.NRGBA{G: 160, A: 255}))
	body, ct := multipartBody(t, "cutout", cutout, map[string]string{"variant": "1-2"})

	rec := do(s, http.MethodPost, "/api/render/reel", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	b := rec.Body.Bytes()
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "AVI " {
		t.Errorf("not an AVI: % x", b[:min(len(b), 12)])
	}
}

// brokenImage reports its bounds once, when pooled, and panics afterwards.
type brokenImage struct{ calls atomic.Int32 }

func (*brokenImage) ColorModel() color.Model { return color.NRGBAModel }
func (*brokenImage) At(x, y int) color.Color { panic("bad raster") }

func (b *brokenImage) Bounds() image.Rectangle {
	if b.calls.Add(1) > 1 {
		panic("bad raster")
	}
	return image.Rect(0, 0, 8, 8)
}

func TestReelReportsVariantFailure(t *testing.T) {
	s := newTestServer(t)
	s.pools.Pool(template.PoolBackground).Add("broken.png", &brokenImage{})
	s.pools.Pool(template.PoolTitle).Add("title.png", product.Solid(30, 30, color.NRGBA{B: 200, A: 255}))

	cutout := pngBytes(t, product.Solid(100, 100, color.NRGBA{R: 255, A: 255}))
	body, ct := multipartBody(t, "cutout", cutout, map[string]string{"variant": "12"})
	rec := do(s, http.MethodPost, "/api/render/reel", body, ct)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "INTERNAL_ERROR" {
		t.Errorf("status %d body %s, want the variant's own failure", rec.Code, rec.Body.String())
	}
}
