package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// completionServer fakes the chat completions endpoint, returning the
// given message content for every request.
func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error": {"message": "nope"}}`)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestRespond_ParsesReply(t *testing.T) {
	srv := completionServer(t, `{"speech": "Hello there!", "gesture": "yes"}`, http.StatusOK)
	defer srv.Close()

	c, _ := New("test-key", WithBaseURL(srv.URL))
	reply, err := c.Respond(context.Background(), "Hi Rufus")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Speech != "Hello there!" || reply.Gesture != "yes" {
		t.Errorf("Respond() = %+v", reply)
	}

	// Memory holds the user turn and the assistant's speech only.
	history := c.History()
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[1].Content != "Hello there!" {
		t.Errorf("assistant memory = %q, want plain speech", history[1].Content)
	}
}

func TestRespond_MalformedJSONDegrades(t *testing.T) {
	srv := completionServer(t, `I forgot the JSON format, sorry`, http.StatusOK)
	defer srv.Close()

	c, _ := New("test-key", WithBaseURL(srv.URL))
	reply, err := c.Respond(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Respond() error = %v, malformed reply must not error", err)
	}
	if reply.Speech == "" || reply.Gesture != "neutral" {
		t.Errorf("fallback reply = %+v, want speakable neutral", reply)
	}
}

func TestRespond_UpstreamErrorReturnsFallback(t *testing.T) {
	srv := completionServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c, _ := New("test-key", WithBaseURL(srv.URL))
	reply, err := c.Respond(context.Background(), "Hi")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Respond() error = %v, want ErrUpstream", err)
	}
	if reply.Speech == "" || reply.Gesture != "neutral" {
		t.Errorf("degraded reply = %+v, want speakable neutral", reply)
	}
}

func TestRespond_DefaultsEmptyGesture(t *testing.T) {
	srv := completionServer(t, `{"speech": "Sure."}`, http.StatusOK)
	defer srv.Close()

	c, _ := New("test-key", WithBaseURL(srv.URL))
	reply, _ := c.Respond(context.Background(), "Hi")
	if reply.Gesture != "neutral" {
		t.Errorf("Gesture = %q, want neutral default", reply.Gesture)
	}
}

func TestMemory_TrimsToMaxTurns(t *testing.T) {
	srv := completionServer(t, `{"speech": "Noted!", "gesture": "neutral"}`, http.StatusOK)
	defer srv.Close()

	c, _ := New("test-key", WithBaseURL(srv.URL), WithMaxTurns(3))
	for i := 0; i < 20; i++ {
		if _, err := c.Respond(context.Background(), fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
	}

	if got, limit := len(c.History()), 3*2+1; got > limit {
		t.Errorf("history has %d messages, want at most %d", got, limit)
	}
}

func TestClear_ResetsSession(t *testing.T) {
	srv := completionServer(t, `{"speech": "Hi!", "gesture": "yes"}`, http.StatusOK)
	defer srv.Close()

	c, _ := New("test-key", WithBaseURL(srv.URL))
	c.Respond(context.Background(), "Hello")

	before := c.SessionID()
	c.Clear()

	if len(c.History()) != 0 {
		t.Error("Clear() must wipe memory")
	}
	if c.SessionID() == before {
		t.Error("Clear() must issue a fresh session ID")
	}
}
