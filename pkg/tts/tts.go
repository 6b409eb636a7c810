// Package tts provides text-to-speech for Rufus's spoken replies.
//
// The Provider interface keeps callers independent of the backend; the
// shipped implementation uses OpenAI's speech API with the "onyx"
// voice, and Mock supports tests without network access.
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to a complete WAV audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	// Audio contains the raw audio bytes (WAV by default).
	Audio []byte

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time to the complete response in milliseconds.
	LatencyMs int64
}

// Config holds provider configuration.
type Config struct {
	APIKey  string
	Model   string
	Voice   string
	Format  string
	BaseURL string
	Timeout time.Duration
}

// Option configures a provider.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithVoice sets the voice.
func WithVoice(voice string) Option {
	return func(c *Config) { c.Voice = voice }
}

// WithModel sets the model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithBaseURL overrides the API endpoint (for tests).
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}
