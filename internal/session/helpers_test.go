package session

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/engine"
	"github.com/inamate/memecanvas/backend-go/internal/raster"
)

// stubLoader answers every load immediately. URLs in fail report an error.
type stubLoader struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (l *stubLoader) Load(url string, done func(engine.Image, error)) {
	l.mu.Lock()
	l.calls++
	failed := l.fail[url]
	l.mu.Unlock()

	if failed {
		done(nil, errors.New("not found"))
		return
	}
	done(image.NewRGBA(image.Rect(0, 0, 10, 10)), nil)
}

func testDocument(t *testing.T) *document.MemeDocument {
	t.Helper()
	doc, err := document.NewFromTemplate(document.TemplateDefault, 500, 500)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// startSession runs a session until the test ends.
func startSession(t *testing.T, loader engine.ImageLoader) *Session {
	t.Helper()
	s := New("s1", testDocument(t), loader, raster.NewFonts(""))
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(cancel)
	return s
}

// expect reads from c until a message of type want arrives, skipping others.
func expect(t *testing.T, c *Client, want string) *Message {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				t.Fatalf("client channel closed while waiting for %s", want)
			}
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("decode message: %v", err)
			}
			if msg.Type == want {
				return &msg
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func payload(t *testing.T, msg *Message, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		t.Fatalf("decode %s payload: %v", msg.Type, err)
	}
}

func request(t *testing.T, msgType string, v interface{}) *Message {
	t.Helper()
	msg, err := newMessage(msgType, v)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

// flush waits until the loop has processed everything queued before it.
func flush(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Do(ctx, func(*engine.Engine) {}); err != nil {
		t.Fatalf("flush: %v", err)
	}
}
