package raster

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

// Fonts resolves a text style to a font face. Families are looked up as
// "<dir>/<family>[-bold|-italic|-bolditalic].ttf" when a font dir is set;
// anything missing falls back to the embedded Go fonts.
type Fonts struct {
	dir string

	mu      sync.Mutex
	sources map[string]*text.FontSource
}

// NewFonts creates a resolver. dir may be empty.
func NewFonts(dir string) *Fonts {
	return &Fonts{dir: dir, sources: make(map[string]*text.FontSource)}
}

// Face returns a face for style at the given pixel size.
func (f *Fonts) Face(style engine.Style, size float64) (text.Face, error) {
	variant := fontVariant(style.Effect)
	key := strings.ToLower(style.Family) + "/" + variant

	f.mu.Lock()
	defer f.mu.Unlock()

	src, ok := f.sources[key]
	if !ok {
		var err error
		src, err = f.load(style.Family, variant)
		if err != nil {
			return nil, err
		}
		f.sources[key] = src
	}
	return src.Face(size), nil
}

func (f *Fonts) load(family, variant string) (*text.FontSource, error) {
	if f.dir != "" && family != "" {
		name := strings.ToLower(strings.ReplaceAll(family, " ", ""))
		if variant != "regular" {
			name += "-" + variant
		}
		path := filepath.Join(f.dir, name+".ttf")
		if _, err := os.Stat(path); err == nil {
			src, err := text.NewFontSourceFromFile(path)
			if err == nil {
				return src, nil
			}
			slog.Warn("load font file", "path", path, "error", err)
		}
	}

	src, err := text.NewFontSource(embeddedFont(variant))
	if err != nil {
		return nil, fmt.Errorf("load embedded font %s: %w", variant, err)
	}
	return src, nil
}

// fontVariant reads the weight and slant out of a CSS-like effect string
// such as "bold", "italic" or "bold italic".
func fontVariant(effect string) string {
	effect = strings.ToLower(effect)
	bold := strings.Contains(effect, "bold") || strings.Contains(effect, "700") || strings.Contains(effect, "800") || strings.Contains(effect, "900")
	italic := strings.Contains(effect, "italic") || strings.Contains(effect, "oblique")
	switch {
	case bold && italic:
		return "bolditalic"
	case bold:
		return "bold"
	case italic:
		return "italic"
	default:
		return "regular"
	}
}

func embeddedFont(variant string) []byte {
	switch variant {
	case "bold":
		return gobold.TTF
	case "italic":
		return goitalic.TTF
	case "bolditalic":
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}
