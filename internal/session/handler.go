package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/memecanvas/backend-go/internal/auth"
	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/export"
)

const maxDocumentSize = 1 << 20 // 1MB

type Handler struct {
	hub            *Hub
	tokens         *auth.Service
	originPatterns []string
	width, height  int
	maxSize        int
}

// NewHandler creates the session handler. New canvases default to
// width x height; requests for a side above maxSize are rejected.
func NewHandler(hub *Hub, tokens *auth.Service, originPatterns []string, width, height, maxSize int) *Handler {
	return &Handler{
		hub:            hub,
		tokens:         tokens,
		originPatterns: originPatterns,
		width:          width,
		height:         height,
		maxSize:        maxSize,
	}
}

type createRequest struct {
	Template string                 `json:"template"`
	Width    int                    `json:"width"`
	Height   int                    `json:"height"`
	Document *document.MemeDocument `json:"document"`
}

type createResponse struct {
	SessionID string                 `json:"sessionId"`
	Token     string                 `json:"token"`
	Document  *document.MemeDocument `json:"document"`
}

// Create handles POST /sessions. The body may name a template or carry a
// full document; an empty body starts from the default template.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentSize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	width, height := req.Width, req.Height
	if req.Document != nil {
		width, height = req.Document.Width, req.Document.Height
	}
	if width > h.maxSize || height > h.maxSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("canvas %dx%d exceeds max size %d", width, height, h.maxSize),
		})
		return
	}

	doc := req.Document
	if doc == nil {
		name := req.Template
		if name == "" {
			name = document.TemplateDefault
		}
		if width <= 0 || height <= 0 {
			width, height = h.width, h.height
		}

		var err error
		doc, err = document.NewFromTemplate(name, width, height)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	s := h.hub.Create(doc)

	token, err := h.tokens.IssueToken(s.ID)
	if err != nil {
		h.hub.Remove(s.ID)
		slog.Error("issue session token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	current, err := s.Document(r.Context())
	if err != nil {
		handleSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		SessionID: s.ID,
		Token:     token,
		Document:  current,
	})
}

// Document handles GET /sessions/{sessionId}/document.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	s, err := h.hub.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		handleSessionError(w, err)
		return
	}

	doc, err := s.Document(r.Context())
	if err != nil {
		handleSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Templates handles GET /templates.
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, document.Templates())
}

// WebSocket handles GET /ws/sessions/{sessionId}. The route is expected to
// sit behind auth.Service.SessionMiddleware.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	s, err := h.hub.Get(mux.Vars(r)["sessionId"])
	if err != nil {
		handleSessionError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(s, conn, uuid.New().String())
	s.Attach(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// Exporter adapts the hub to export.Handler's lookup.
func (h *Handler) Exporter(sessionID string) (export.Source, error) {
	s, err := h.hub.Get(sessionID)
	if err != nil {
		return nil, export.ErrNotFound
	}
	return s, nil
}

func handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, ErrClosed):
		writeJSON(w, http.StatusGone, map[string]string{"error": "session closed"})
	default:
		slog.Error("session request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
