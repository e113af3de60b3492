package document

import (
	"fmt"
	"sort"

	"github.com/inamate/memecanvas/backend-go/internal/typeid"
)

const (
	TemplateDefault = "default"
	TemplateBlank   = "blank"

	DefaultWidth  = 500
	DefaultHeight = 500

	// MaxDimension bounds either side of a canvas.
	MaxDimension = 4096

	// DefaultBackgroundURL is the classic template image.
	DefaultBackgroundURL = "https://i.imgflip.com/4/30b1gx.jpg"
	DefaultText          = "new text"

	DefaultFontSize  = 48
	DefaultFamily    = "Arial"
	DefaultEffect    = "bold"
	DefaultFill      = "white"
	DefaultStroke    = "black"
	DefaultLineWidth = 3.0

	// ExportFilename is the name a flattened meme is saved under.
	ExportFilename = "meme.png"
)

// Template describes a starting document.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Background  string `json:"background"`
}

var templates = map[string]Template{
	TemplateDefault: {
		Name:        TemplateDefault,
		Description: "Top and bottom captions over the classic template image",
		Background:  DefaultBackgroundURL,
	},
	TemplateBlank: {
		Name:        TemplateBlank,
		Description: "A single caption, bring your own background",
		Background:  "",
	},
}

// Templates lists the available templates sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultTextStyle is the classic meme caption: bold white text with a
// black outline.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		Size:      DefaultFontSize,
		Family:    DefaultFamily,
		Effect:    DefaultEffect,
		Fill:      DefaultFill,
		Stroke:    DefaultStroke,
		LineWidth: DefaultLineWidth,
	}
}

// ClampSize resolves a requested canvas size. Non-positive sides fall back
// to the default and sides above MaxDimension are cut to it.
func ClampSize(width, height int) (int, int) {
	return clampSide(width, DefaultWidth), clampSide(height, DefaultHeight)
}

func clampSide(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return min(v, MaxDimension)
}

// NewFromTemplate builds a document from a named template at the given
// canvas size, resolved by ClampSize.
func NewFromTemplate(name string, width, height int) (*MemeDocument, error) {
	tpl, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	width, height = ClampSize(width, height)

	w, h := float64(width), float64(height)
	doc := &MemeDocument{
		Template:   tpl.Name,
		Background: tpl.Background,
		Width:      width,
		Height:     height,
	}

	switch name {
	case TemplateDefault:
		doc.Objects = []TextBox{
			newTextBox("top text", w*3/4, h/4),
			newTextBox("bottom text", w*3/4, h*3/4),
		}
	case TemplateBlank:
		doc.Objects = []TextBox{
			newTextBox(DefaultText, w/2, h/2),
		}
	}
	return doc, nil
}

func newTextBox(text string, x, y float64) TextBox {
	return TextBox{
		ID:     typeid.NewObjectID(),
		Text:   text,
		X:      x,
		Y:      y,
		ScaleX: 1,
		ScaleY: 1,
		Style:  DefaultTextStyle(),
	}
}
