package hub

import (
	"encoding/json"
	"testing"
	"time"
)

// drain collects one payload from a client's send channel.
func drain(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

// register adds a bare client (no websocket) directly to the hub loop.
func register(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := &Client{hub: h, send: make(chan []byte, 64)}
	h.register <- c
	return c
}

func TestBroadcast_ReachesAllClients(t *testing.T) {
	h := New("status")
	go h.Run()

	a := register(t, h)
	b := register(t, h)

	if err := h.BroadcastJSON(map[string]any{"arduino_connected": true}); err != nil {
		t.Fatalf("BroadcastJSON() error = %v", err)
	}

	for _, c := range []*Client{a, b} {
		var snapshot map[string]any
		if err := json.Unmarshal(drain(t, c), &snapshot); err != nil {
			t.Fatalf("broadcast payload not JSON: %v", err)
		}
		if snapshot["arduino_connected"] != true {
			t.Errorf("snapshot = %v", snapshot)
		}
	}
}

func TestUnregister_RemovesClient(t *testing.T) {
	h := New("status")
	go h.Run()

	c := register(t, h)
	waitForCount(t, h, 1)

	h.unregister <- c
	waitForCount(t, h, 0)

	// Channel must be closed so the write pump exits.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("send channel still open after unregister")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed after unregister")
	}
}

func TestBroadcast_DropsSlowClient(t *testing.T) {
	h := New("status")
	go h.Run()

	slow := &Client{hub: h, send: make(chan []byte)} // unbuffered, never read
	h.register <- slow
	waitForCount(t, h, 1)

	h.Broadcast([]byte(`{"seq": 1}`))
	waitForCount(t, h, 0)
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), want)
}
