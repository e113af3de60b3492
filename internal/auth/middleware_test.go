package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestSessionMiddleware(t *testing.T) {
	svc := NewService("secret", 0)
	own, _ := svc.IssueToken("s1")
	other, _ := svc.IssueToken("s2")

	r := mux.NewRouter()
	r.Handle("/sessions/{sessionId}", svc.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(SessionIDFromContext(r.Context())))
	})))

	tests := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{name: "bearer", url: "/sessions/s1", header: "Bearer " + own, want: http.StatusOK},
		{name: "query", url: "/sessions/s1?token=" + own, want: http.StatusOK},
		{name: "missing", url: "/sessions/s1", want: http.StatusUnauthorized},
		{name: "bad scheme", url: "/sessions/s1", header: "Basic " + own, want: http.StatusUnauthorized},
		{name: "invalid", url: "/sessions/s1", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "other session", url: "/sessions/s1", header: "Bearer " + other, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusOK && rec.Body.String() != "s1" {
				t.Errorf("session in context = %q", rec.Body.String())
			}
		})
	}
}
