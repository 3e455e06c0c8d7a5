package livereload

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestHubBroadcastQueuesReload(t *testing.T) {
	h := NewHub(nil)
	c := &client{send: make(chan string, 1)}
	h.clients[c] = struct{}{}

	h.Broadcast()

	select {
	case msg := <-c.send:
		if msg != reloadMessage {
			t.Fatalf("message = %q, want %q", msg, reloadMessage)
		}
	default:
		t.Fatal("expected a queued reload message")
	}
}

func TestHubBroadcastSkipsSlowClient(t *testing.T) {
	h := NewHub(nil)
	c := &client{send: make(chan string, 1)}
	c.send <- reloadMessage // queue full
	h.clients[c] = struct{}{}

	done := make(chan struct{})
	go func() {
		h.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow client")
	}
	if got := len(c.send); got != 1 {
		t.Fatalf("queue length = %d, want 1", got)
	}
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub(nil)
	c := &client{send: make(chan string, 1)}
	h.clients[c] = struct{}{}

	h.CloseAll()

	if _, ok := <-c.send; ok {
		t.Fatal("expected send channel to be closed")
	}
	if got := len(h.clients); got != 0 {
		t.Fatalf("clients remaining = %d, want 0", got)
	}
}

func TestHubDeliversReloadOverWebSocket(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Wait for the hub to register the connection before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Broadcast()

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("message type = %v, want text", typ)
	}
	if string(data) != reloadMessage {
		t.Fatalf("message = %q, want %q", data, reloadMessage)
	}
}
