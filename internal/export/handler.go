package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
	"github.com/inamate/memecanvas/backend-go/internal/raster"
	"github.com/inamate/memecanvas/backend-go/internal/typeid"
)

var ErrNotFound = errors.New("session not found")

const (
	FormatPNG     = "png"
	FormatDataURL = "dataurl"
)

type dataURLResponse struct {
	Filename string `json:"filename"`
	DataURL  string `json:"dataUrl"`
}

// Source yields the scene to export along with its decoded background.
type Source interface {
	Flatten(ctx context.Context) (engine.Snapshot, engine.Image, error)
}

// Handler serves flattened PNG exports of editor sessions.
type Handler struct {
	lookup func(sessionID string) (Source, error)
	fonts  *raster.Fonts
}

func NewHandler(lookup func(sessionID string) (Source, error), fonts *raster.Fonts) *Handler {
	return &Handler{lookup: lookup, fonts: fonts}
}

// Export handles GET /sessions/{sessionId}/export. The PNG is sent as an
// attachment; with ?format=dataurl it is returned as a data URL in JSON
// for clients that hand it straight to a download link.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	exportID := typeid.NewExportID()

	format := r.URL.Query().Get("format")
	if format != "" && format != FormatPNG && format != FormatDataURL {
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}

	src, err := h.lookup(sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		slog.Error("lookup session for export", "error", err, "sessionId", sessionID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	canvas, err := h.render(r.Context(), src)
	if err != nil {
		slog.Error("export failed", "error", err, "sessionId", sessionID, "exportId", exportID)
		http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
		return
	}
	defer canvas.Close()

	if format == FormatDataURL {
		url, err := DataURL(canvas)
		if err != nil {
			slog.Error("export failed", "error", err, "sessionId", sessionID, "exportId", exportID)
			http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dataURLResponse{Filename: Filename, DataURL: url})
		slog.Info("export complete", "sessionId", sessionID, "exportId", exportID, "format", format, "size", len(url))
		return
	}

	data, err := PNG(canvas)
	if err != nil {
		slog.Error("export failed", "error", err, "sessionId", sessionID, "exportId", exportID)
		http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)

	slog.Info("export complete", "sessionId", sessionID, "exportId", exportID, "size", len(data))
}

func (h *Handler) render(ctx context.Context, src Source) (*raster.Canvas, error) {
	snap, background, err := src.Flatten(ctx)
	if err != nil {
		return nil, err
	}
	return raster.RenderSnapshot(snap, background, raster.WithFonts(h.fonts)), nil
}
