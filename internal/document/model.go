package document

// MemeDocument is the wire form of a scene: the background, canvas size and
// captions in paint order. It is what the editor hands between the browser,
// the server and templates. Selection and gesture state are not part of it.
type MemeDocument struct {
	Template   string    `json:"template,omitempty"`
	Background string    `json:"background"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Objects    []TextBox `json:"objects"`
}

type TextStyle struct {
	Size      float64 `json:"size"`
	Family    string  `json:"family"`
	Effect    string  `json:"effect"`
	Fill      string  `json:"fill,omitempty"`
	Stroke    string  `json:"stroke,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
}

type TextBox struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Rotation float64   `json:"rotation"` // radians
	ScaleX   float64   `json:"scaleX"`
	ScaleY   float64   `json:"scaleY"`
	Style    TextStyle `json:"style"`
}
