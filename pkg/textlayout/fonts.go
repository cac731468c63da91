// fonts.go - Ordered font candidates with an embedded and a bitmap fallback.
// A Source never fails to produce a face: system fonts are tried first, then
// the embedded Go fonts, and finally the fixed 7x13 bitmap face.
package textlayout

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Family selects the weight used for a block.
type Family string

const (
	Bold    Family = "bold"
	Regular Family = "regular"
)

// Candidate is one font resource to try. Data takes precedence over Path.
type Candidate struct {
	Name string
	Path string
	Data []byte
}

// DefaultCandidates returns the usual Arial locations for macOS, Windows and
// the working directory, followed by the matching embedded Go font.
func DefaultCandidates(f Family) []Candidate {
	if f == Bold {
		return []Candidate{
			{Path: "/System/Library/Fonts/Supplemental/Arial Bold.ttf"},
			{Path: "C:/Windows/Fonts/arialbd.ttf"},
			{Path: "arialbd.ttf"},
			{Name: "go-bold", Data: gobold.TTF},
		}
	}
	return []Candidate{
		{Path: "/System/Library/Fonts/Supplemental/Arial.ttf"},
		{Path: "C:/Windows/Fonts/arial.ttf"},
		{Path: "arial.ttf"},
		{Name: "go-regular", Data: goregular.TTF},
	}
}

// Source produces faces of any size from the first candidate that parsed.
// It is safe for concurrent use; each call to Face returns a new face.
type Source struct {
	name   string
	parsed *opentype.Font
}

// LoadSource walks candidates in order and keeps the first one that parses.
// Failures are logged and never returned; with no usable candidate the
// source falls back to basicfont.Face7x13.
func LoadSource(logger *log.Logger, candidates ...Candidate) *Source {
	if logger == nil {
		logger = log.Default()
	}
	for _, c := range candidates {
		data := c.Data
		name := c.Name
		if name == "" {
			name = c.Path
		}
		if data == nil {
			if c.Path == "" {
				continue
			}
			b, err := os.ReadFile(c.Path)
			if err != nil {
				logger.Debug("font candidate unavailable", "font", name, "err", err)
				continue
			}
			data = b
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			logger.Warn("font candidate unreadable", "font", name, "err", err)
			continue
		}
		logger.Debug("font loaded", "font", name)
		return &Source{name: name, parsed: parsed}
	}
	logger.Warn("no font candidate loaded, using bitmap face")
	return &Source{name: "basicfont-7x13"}
}

// Name reports which candidate was loaded.
func (s *Source) Name() string { return s.name }

// Scalable is false for the fixed-size bitmap fallback.
func (s *Source) Scalable() bool { return s.parsed != nil }

// Face returns a face at size pixels (72 DPI). The bitmap fallback ignores
// size. Callers should Close the face when done.
func (s *Source) Face(size float64) font.Face {
	if s.parsed == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(s.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// Fonts holds one Source per family.
type Fonts struct {
	mu      sync.RWMutex
	sources map[Family]*Source
}

// LoadFonts builds a font set. Paths listed in custom for a family are tried
// before that family's DefaultCandidates.
func LoadFonts(logger *log.Logger, custom map[Family][]string) *Fonts {
	fs := &Fonts{sources: make(map[Family]*Source, 2)}
	for _, fam := range []Family{Bold, Regular} {
		var cands []Candidate
		for _, p := range custom[fam] {
			cands = append(cands, Candidate{Path: p})
		}
		cands = append(cands, DefaultCandidates(fam)...)
		fs.sources[fam] = LoadSource(logger, cands...)
	}
	return fs
}

// EmbeddedFonts returns a font set backed only by the embedded Go fonts.
func EmbeddedFonts() *Fonts {
	logger := log.New(io.Discard)
	return &Fonts{sources: map[Family]*Source{
		Bold:    LoadSource(logger, Candidate{Name: "go-bold", Data: gobold.TTF}),
		Regular: LoadSource(logger, Candidate{Name: "go-regular", Data: goregular.TTF}),
	}}
}

// Source returns the source for a family, defaulting to Regular.
func (f *Fonts) Source(fam Family) *Source {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if s, ok := f.sources[fam]; ok {
		return s
	}
	return f.sources[Regular]
}

// Set replaces the source of a family.
func (f *Fonts) Set(fam Family, s *Source) {
	f.mu.Lock()
	f.sources[fam] = s
	f.mu.Unlock()
}
