//go:build js && wasm

// GoCard WASM - client-side card renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o gocard.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"os"
	"sync"
	"syscall/js"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/compose"
	"github.com/xob0t/GoCard/pkg/generator"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

// In-memory state shared by the JS callbacks.
var (
	mu       sync.RWMutex
	catalog  = template.BuiltinCatalog()
	pools    = assets.NewSet(assets.NewPool(template.PoolBackground), assets.NewPool(template.PoolTitle))
	logger   = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	composer = compose.New(compose.Config{Workers: 1},
		compose.WithLogger(logger),
		compose.WithFonts(textlayout.EmbeddedFonts()),
		compose.WithPools(pools),
	)
)

// cardRequest is the JSON accepted by goRenderCard and goExportReel.
type cardRequest struct {
	Variant  string `json:"variant"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Price    string `json:"price"`
	QR       string `json:"qr"`
	Seed     uint64 `json:"seed"`
}

func main() {
	js.Global().Set("goRenderCard", js.FuncOf(renderCard))
	js.Global().Set("goExportReel", js.FuncOf(exportReel))
	js.Global().Set("goListVariants", js.FuncOf(listVariants))
	js.Global().Set("goLoadPresets", js.FuncOf(loadPresets))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goReady", js.ValueOf(true))

	// WASM must not exit.
	select {}
}

func fail(msg string, err error) js.Value {
	if err != nil {
		msg += ": " + err.Error()
	}
	return js.ValueOf("error: " + msg)
}

func decodeImage(b64 string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(data))
}

func parseRequest(args []js.Value) (image.Image, cardRequest, error) {
	var req cardRequest
	img, err := decodeImage(args[0].String())
	if err != nil {
		return nil, req, err
	}
	if s := args[1].String(); s != "" && s != "null" {
		if err := json.Unmarshal([]byte(s), &req); err != nil {
			return nil, req, err
		}
	}
	return img, req, nil
}

func (r cardRequest) input(cutout image.Image) compose.Input {
	return compose.Input{
		Cutout: cutout,
		Text:   template.Text{Title: r.Title, Subtitle: r.Subtitle, Price: r.Price},
		QR:     r.QR,
	}
}

// goRenderCard(cutoutBase64, requestJSON) - render one variant, return base64 PNG.
func renderCard(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return fail("need cutoutBase64, requestJSON", nil)
	}
	cutout, req, err := parseRequest(args)
	if err != nil {
		return fail("parse request", err)
	}
	if req.Variant == "" {
		req.Variant = "1"
	}

	mu.RLock()
	v, err := catalog.Lookup(req.Variant)
	mu.RUnlock()
	if err != nil {
		return fail("variant", err)
	}

	card, err := composer.Render(req.input(cutout), v, compose.VariantRNG(req.Seed, v.ID))
	if err != nil {
		return fail("render", err)
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, card.Image, generator.PNG); err != nil {
		return fail("encode", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goExportReel(cutoutBase64, requestJSON) - render every variant (or the
// selected range) and return a base64 MJPEG AVI.
func exportReel(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return fail("need cutoutBase64, requestJSON", nil)
	}
	cutout, req, err := parseRequest(args)
	if err != nil {
		return fail("parse request", err)
	}
	var keys []string
	if req.Variant != "" {
		keys = []string{req.Variant}
	}

	mu.RLock()
	variants, err := catalog.Select(keys)
	mu.RUnlock()
	if err != nil {
		return fail("variants", err)
	}

	results, err := composer.RenderAll(context.Background(), req.input(cutout), variants, req.Seed)
	if err != nil {
		return fail("render", err)
	}
	var frames []image.Image
	for _, r := range results {
		if r.Err == nil {
			frames = append(frames, r.Card.Image)
		}
	}

	var buf bytes.Buffer
	if err := generator.WriteReel(&buf, frames, generator.ReelOptions{}); err != nil {
		return fail("reel", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goListVariants() - JSON array of {id, name, description, pools}.
func listVariants(this js.Value, args []js.Value) any {
	type entry struct {
		ID          int      `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Pools       []string `json:"pools,omitempty"`
	}
	mu.RLock()
	list := catalog.List()
	mu.RUnlock()

	out := make([]entry, 0, len(list))
	for _, v := range list {
		out = append(out, entry{ID: v.ID, Name: v.Name, Description: v.Description, Pools: v.Pools()})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fail("encode", err)
	}
	return js.ValueOf(string(data))
}

// goLoadPresets(presetsTOML) - merge extra variants, return the warnings as JSON.
func loadPresets(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("need presetsTOML", nil)
	}
	pf, warnings, err := template.ParsePresets(args[0].String())
	if err != nil {
		return fail("presets", err)
	}
	mu.Lock()
	catalog = template.MergeVariants(catalog, pf.Variants...)
	mu.Unlock()

	if warnings == nil {
		warnings = []string{}
	}
	data, _ := json.Marshal(warnings)
	return js.ValueOf(string(data))
}

// goRegisterAsset(pool, name, base64Data) - add a raster to a pool, return its ID.
func registerAsset(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return fail("need pool, name, base64Data", nil)
	}
	pool := args[0].String()
	if pool != template.PoolBackground && pool != template.PoolTitle {
		return fail("unknown pool "+pool, nil)
	}
	img, err := decodeImage(args[2].String())
	if err != nil {
		return fail("decode image", err)
	}
	a := pools.Pool(pool).Add(args[1].String(), img)
	return js.ValueOf(a.ID)
}

// goRemoveAsset(id) - remove a raster from whichever pool holds it.
func removeAsset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("need id", nil)
	}
	if !pools.Remove(args[0].String()) {
		return fail("unknown asset "+args[0].String(), nil)
	}
	return js.ValueOf("ok")
}
