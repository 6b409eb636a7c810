// Package chat talks to OpenAI chat completions on behalf of Rufus and
// keeps a bounded conversation memory. Every reply carries both the
// speech to say aloud and a gesture directive ("yes", "no", "neutral")
// for the motion controller.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-rufus/internal/httpc"
	"github.com/teslashibe/go-rufus/internal/log"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultModel   = "gpt-4o-mini"

	// DefaultMaxTurns is how many exchanges the memory keeps.
	DefaultMaxTurns = 10

	maxTokens   = 500
	temperature = 0.8
)

// Fallback replies when the upstream response is unusable. The caller
// still gets something speakable, never an exception.
const (
	fallbackParse = "I'm having trouble processing that right now."
	fallbackAPI   = "Something went wrong. Can you try again?"
)

// Message is one turn in the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the structured model output: what Rufus says and what it
// does. Gesture is one of "yes", "no", "neutral".
type Reply struct {
	Speech  string `json:"speech"`
	Gesture string `json:"gesture"`
}

// Client is the conversation client. Safe for concurrent use.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client

	mu        sync.Mutex
	history   []Message
	maxTurns  int
	sessionID string
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL overrides the completions endpoint (for tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithMaxTurns overrides the memory depth.
func WithMaxTurns(turns int) Option {
	return func(c *Client) { c.maxTurns = turns }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a conversation client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:    apiKey,
		model:     defaultModel,
		baseURL:   defaultBaseURL,
		client:    httpc.Client,
		maxTurns:  DefaultMaxTurns,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SessionID identifies the current conversation session.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Clear wipes the conversation memory and starts a fresh session.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.sessionID = uuid.NewString()
}

// History returns a copy of the current memory.
func (c *Client) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// remember appends a turn and trims to the last maxTurns exchanges.
func (c *Client) remember(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Message{Role: role, Content: content})
	if limit := c.maxTurns*2 + 1; len(c.history) > limit {
		c.history = c.history[len(c.history)-limit:]
	}
}

// request/response wire shapes for chat completions.
type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Respond sends the user message and returns the parsed reply. On any
// upstream failure it returns a speakable fallback Reply along with the
// error, so the caller can keep the conversation going in degraded
// mode. Malformed reply JSON degrades the same way without an error.
func (c *Client) Respond(ctx context.Context, userMessage string) (Reply, error) {
	c.remember("user", userMessage)

	c.mu.Lock()
	messages := make([]Message, 0, len(c.history)+1)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, c.history...)
	c.mu.Unlock()

	body, err := json.Marshal(completionRequest{
		Model:          c.model,
		Messages:       messages,
		MaxTokens:      maxTokens,
		Temperature:    temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return Reply{Speech: fallbackAPI, Gesture: "neutral"}, fmt.Errorf("chat: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Reply{Speech: fallbackAPI, Gesture: "neutral"}, fmt.Errorf("chat: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{Speech: fallbackAPI, Gesture: "neutral"}, fmt.Errorf("chat: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Reply{Speech: fallbackAPI, Gesture: "neutral"},
			fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, bytes.TrimSpace(detail))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return Reply{Speech: fallbackAPI, Gesture: "neutral"}, fmt.Errorf("chat: decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Reply{Speech: fallbackAPI, Gesture: "neutral"}, fmt.Errorf("%w: empty choices", ErrUpstream)
	}

	var reply Reply
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &reply); err != nil {
		log.Warn("model reply was not valid JSON", "err", err)
		return Reply{Speech: fallbackParse, Gesture: "neutral"}, nil
	}
	if reply.Gesture == "" {
		reply.Gesture = "neutral"
	}

	// Only the speech goes into memory, not the JSON envelope.
	c.remember("assistant", reply.Speech)

	return reply, nil
}
