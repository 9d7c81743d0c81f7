package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typeforge/internal/model"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	hub := startHub(t)
	fast := &Client{send: make(chan []byte, 1)}
	slow := &Client{send: make(chan []byte)}
	if !hub.Register(fast) || !hub.Register(slow) {
		t.Fatalf("register failed")
	}
	waitFor(t, func() bool { return hub.Len() == 2 })

	hub.Broadcast([]byte("x"))
	select {
	case msg := <-fast.send:
		if string(msg) != "x" {
			t.Fatalf("unexpected message %q", msg)
		}
	default:
		t.Fatalf("expected fast client to receive the message")
	}

	hub.Unregister(slow)
	waitFor(t, func() bool { return hub.Len() == 1 })
	if _, ok := <-slow.send; ok {
		t.Fatalf("expected unregistered client channel to be closed")
	}
}

func TestRegisterAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped
	if hub.Register(&Client{send: make(chan []byte, 1)}) {
		t.Fatalf("expected register to fail after stop")
	}
}

func TestServeWSReceivesResultSaved(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	waitFor(t, func() bool { return hub.Len() == 1 })

	hub.ResultSaved(model.Result{Mode: "standard", DurationSeconds: 30, TextSource: model.TextSourceQuote, WPM: 88.5})

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Event{Type: EventLeaderboardChanged, Mode: "standard", DurationSeconds: 30, TextSource: model.TextSourceQuote, WPM: 88.5}
	if ev != want {
		t.Fatalf("unexpected event %+v", ev)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestServeWSChecksOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, []string{"https://typeforge.dev/"})
	go hub.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	cases := []struct {
		origin string
		ok     bool
	}{
		{origin: "", ok: true},
		{origin: "https://typeforge.dev", ok: true},
		{origin: "https://TypeForge.dev", ok: true},
		{origin: "https://evil.example", ok: false},
		{origin: "http://typeforge.dev", ok: false},
	}
	for _, tc := range cases {
		header := http.Header{}
		if tc.origin != "" {
			header.Set("Origin", tc.origin)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		if tc.ok {
			if err != nil {
				t.Fatalf("origin %q: expected upgrade, got %v", tc.origin, err)
			}
			_ = conn.Close()
			continue
		}
		if err == nil {
			_ = conn.Close()
			t.Fatalf("origin %q: expected upgrade to be refused", tc.origin)
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Fatalf("origin %q: expected 403, got %v", tc.origin, resp)
		}
	}
}

func TestServeWSAnyOriginWhenUnrestricted(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://anywhere.example"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.Close()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
