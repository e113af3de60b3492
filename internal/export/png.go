package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/inamate/memecanvas/backend-go/internal/document"
)

// Filename is the name exports are saved under.
const Filename = document.ExportFilename

const dataURLPrefix = "data:image/png;base64,"

// Encoder writes an image as PNG. raster.Canvas implements it.
type Encoder interface {
	EncodePNG(w io.Writer) error
}

// PNG encodes e into memory.
func PNG(e Encoder) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("export png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL encodes e as a "data:image/png;base64,..." URL.
func DataURL(e Encoder) (string, error) {
	data, err := PNG(e)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}
