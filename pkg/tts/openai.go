package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teslashibe/go-rufus/internal/httpc"
	"github.com/teslashibe/go-rufus/internal/log"
)

const openAITTSURL = "https://api.openai.com/v1/audio/speech"

// OpenAI voice options.
const (
	VoiceAlloy = "alloy" // Neutral voice
	VoiceEcho  = "echo"  // Male voice
	VoiceOnyx  = "onyx"  // Deep male voice; Rufus's voice
	VoiceNova  = "nova"  // Female voice
)

// OpenAI model options.
const (
	ModelTTS1   = "tts-1"    // Standard quality, faster
	ModelTTS1HD = "tts-1-hd" // Higher quality, slower
)

// OpenAI implements Provider for OpenAI TTS.
type OpenAI struct {
	config Config
	client *http.Client
}

// NewOpenAI creates a new OpenAI TTS provider with Rufus's defaults.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := Config{
		Model:   ModelTTS1,
		Voice:   VoiceOnyx,
		Format:  "wav",
		BaseURL: openAITTSURL,
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &OpenAI{
		config: cfg,
		client: httpc.NewClient(cfg.Timeout),
	}, nil
}

// Synthesize converts text to audio, returning the complete buffer.
func (o *OpenAI) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	start := time.Now()

	payload := map[string]any{
		"model":           o.config.Model,
		"voice":           o.config.Voice,
		"input":           text,
		"response_format": o.config.Format,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, o.parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read response: %w", err)
	}

	latency := time.Since(start).Milliseconds()
	log.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"voice", o.config.Voice,
	)

	return &AudioResult{
		Audio:     audio,
		CharCount: len(text),
		LatencyMs: latency,
	}, nil
}

// Close releases resources. The HTTP client needs no teardown.
func (o *OpenAI) Close() error {
	return nil
}

// parseError extracts an APIError from a non-200 response.
func (o *OpenAI) parseError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

	var apiResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := string(bytes.TrimSpace(detail))
	if err := json.Unmarshal(detail, &apiResp); err == nil && apiResp.Error.Message != "" {
		message = apiResp.Error.Message
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// Ensure OpenAI implements Provider at compile time.
var _ Provider = (*OpenAI)(nil)
