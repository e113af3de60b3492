package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/memecanvas/backend-go/internal/auth"
	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/export"
)

func newTestHandler(t *testing.T) (*Handler, *auth.Service) {
	t.Helper()
	h, _ := newTestHub(t, time.Minute)
	tokens := auth.NewService("secret", 0)
	return NewHandler(h, tokens, []string{"localhost:5173"}, 500, 500, 1024), tokens
}

func TestCreateSession(t *testing.T) {
	handler, tokens := newTestHandler(t)

	tests := []struct {
		name        string
		body        string
		wantObjects int
		wantWidth   int
	}{
		{name: "empty body", body: "", wantObjects: 2, wantWidth: 500},
		{name: "template", body: `{"template":"blank","width":300,"height":200}`, wantObjects: 1, wantWidth: 300},
		{name: "document", body: `{"document":{"width":640,"height":480,"objects":[{"id":"a","text":"x","x":1,"y":2},{"id":"b","text":"y"},{"id":"c","text":"z"}]}}`, wantObjects: 3, wantWidth: 640},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Create(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(tt.body)))

			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var resp createResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if err := tokens.Authorize(resp.Token, resp.SessionID); err != nil {
				t.Errorf("token does not grant the new session: %v", err)
			}
			if resp.Document == nil || len(resp.Document.Objects) != tt.wantObjects || resp.Document.Width != tt.wantWidth {
				t.Errorf("document = %+v", resp.Document)
			}
		})
	}
}

func TestCreateSessionRejects(t *testing.T) {
	handler, _ := newTestHandler(t)

	bodies := []string{
		`{"template":"nope"}`,
		`{not json`,
		`{"template":"blank","width":6000,"height":6000}`,
		`{"width":300,"height":1025}`,
		`{"document":{"width":2048,"height":100,"objects":[]}}`,
	}
	for _, body := range bodies {
		rec := httptest.NewRecorder()
		handler.Create(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Create(%s) = %d, want 400", body, rec.Code)
		}
	}
	if n := handler.hub.Len(); n != 0 {
		t.Errorf("rejected requests left %d sessions", n)
	}
}

func TestDocumentEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)
	s := handler.hub.Create(testDocument(t))

	r := mux.NewRouter()
	r.HandleFunc("/sessions/{sessionId}/document", handler.Document)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID+"/document", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc document.MemeDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil || len(doc.Objects) != 2 {
		t.Errorf("document = %+v, %v", doc, err)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/session_missing/document", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d", rec.Code)
	}
}

func TestTemplatesEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Templates(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))

	var list []document.Template
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != len(document.Templates()) {
		t.Errorf("templates = %+v", list)
	}
}

func TestExporter(t *testing.T) {
	handler, _ := newTestHandler(t)
	s := handler.hub.Create(testDocument(t))

	src, err := handler.Exporter(s.ID)
	if err != nil || src == nil {
		t.Fatalf("Exporter(%q) = %v, %v", s.ID, src, err)
	}
	if _, err := handler.Exporter("session_missing"); err != export.ErrNotFound {
		t.Errorf("Exporter(missing) = %v, want export.ErrNotFound", err)
	}
}
