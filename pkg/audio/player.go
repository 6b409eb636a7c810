// Package audio plays synthesized speech on the local device.
//
// Playback shells out to whichever system player is installed (aplay on
// the Pi, afplay on macOS, ffplay as a fallback). When none is found
// the player runs degraded: Play logs a warning and drops the audio so
// the rest of the pipeline keeps working on machines without sound.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/teslashibe/go-rufus/internal/log"
)

// candidate players in preference order, with the flags that make
// each exit once the clip finishes.
var players = [][]string{
	{"aplay", "-q"},
	{"afplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Player plays WAV buffers through an external system player.
type Player struct {
	binary string
	args   []string

	// Callbacks fired around playback, used to sync gestures to speech.
	OnPlaybackStart func()
	OnPlaybackEnd   func()

	mu       sync.Mutex
	speaking bool
}

// NewPlayer probes for an installed system player. The returned Player
// is always usable; if no binary was found it plays nothing.
func NewPlayer() *Player {
	p := &Player{}
	for _, candidate := range players {
		if path, err := lookPath(candidate[0]); err == nil {
			p.binary = path
			p.args = candidate[1:]
			log.Debug("audio player selected", "binary", path)
			return p
		}
	}
	log.Warn("no audio player found, speech will be silent")
	return p
}

// Available reports whether a system player was found.
func (p *Player) Available() bool {
	return p.binary != ""
}

// IsSpeaking reports whether a clip is currently playing.
func (p *Player) IsSpeaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Play writes the WAV buffer to a temp file and blocks until the
// system player finishes it. Concurrent calls are serialized so clips
// never overlap.
func (p *Player) Play(ctx context.Context, wav []byte) error {
	if len(wav) == 0 {
		return nil
	}
	if p.binary == "" {
		log.Warn("dropping audio, no player available", "bytes", len(wav))
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tmp, err := os.CreateTemp("", "rufus-speech-*.wav")
	if err != nil {
		return fmt.Errorf("audio: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return fmt.Errorf("audio: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("audio: close temp file: %w", err)
	}

	p.speaking = true
	if p.OnPlaybackStart != nil {
		p.OnPlaybackStart()
	}
	defer func() {
		p.speaking = false
		if p.OnPlaybackEnd != nil {
			p.OnPlaybackEnd()
		}
	}()

	start := time.Now()
	args := append(append([]string{}, p.args...), tmp.Name())
	cmd := exec.CommandContext(ctx, p.binary, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio: playback failed: %w", err)
	}

	log.Debug("playback complete",
		"bytes", len(wav),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
