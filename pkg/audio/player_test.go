package audio

import (
	"context"
	"errors"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"
)

// withLookPath swaps the binary probe for the duration of a test.
func withLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	orig := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = orig })
}

func TestNewPlayer_NoBinaryDegrades(t *testing.T) {
	withLookPath(t, func(string) (string, error) {
		return "", errors.New("not found")
	})

	p := NewPlayer()
	if p.Available() {
		t.Fatal("Available() = true with no binaries installed")
	}

	// Playing without a binary must drop the audio, not error.
	if err := p.Play(context.Background(), []byte("RIFF fake wav")); err != nil {
		t.Errorf("Play() error = %v, want silent drop", err)
	}
}

func TestNewPlayer_PicksFirstInstalled(t *testing.T) {
	var probed []string
	withLookPath(t, func(name string) (string, error) {
		probed = append(probed, name)
		if name == "ffplay" {
			return "/usr/bin/ffplay", nil
		}
		return "", errors.New("not found")
	})

	p := NewPlayer()
	if !p.Available() {
		t.Fatal("Available() = false, want ffplay found")
	}
	if p.binary != "/usr/bin/ffplay" {
		t.Errorf("binary = %q", p.binary)
	}
	if len(probed) != 3 {
		t.Errorf("probed %v, want all candidates tried in order", probed)
	}
}

func TestPlay_EmptyBufferIsNoop(t *testing.T) {
	withLookPath(t, func(string) (string, error) {
		return "", errors.New("not found")
	})

	p := NewPlayer()
	if err := p.Play(context.Background(), nil); err != nil {
		t.Errorf("Play(nil) error = %v", err)
	}
}

func TestPlay_FiresCallbacks(t *testing.T) {
	// "true" exits immediately, so playback completes at once.
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true binary not available")
	}
	withLookPath(t, func(name string) (string, error) {
		if name == "aplay" {
			return truePath, nil
		}
		return "", errors.New("not found")
	})

	p := NewPlayer()

	var started, ended atomic.Int32
	p.OnPlaybackStart = func() {
		started.Add(1)
		if !p.speaking {
			t.Error("speaking = false inside OnPlaybackStart")
		}
	}
	p.OnPlaybackEnd = func() { ended.Add(1) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Play(ctx, []byte("RIFF fake wav")); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if started.Load() != 1 || ended.Load() != 1 {
		t.Errorf("callbacks fired start=%d end=%d, want 1 each", started.Load(), ended.Load())
	}
	if p.IsSpeaking() {
		t.Error("IsSpeaking() = true after playback finished")
	}
}
