// Package web exposes Rufus's HTTP control surface.
//
// The API mirrors what the browser remote expects: raw servo moves,
// named gestures and moods, chat, and speech, plus a websocket status
// stream for the dashboard.
package web

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-rufus/internal/log"
	"github.com/teslashibe/go-rufus/pkg/chat"
	"github.com/teslashibe/go-rufus/pkg/gesture"
	"github.com/teslashibe/go-rufus/pkg/hub"
	"github.com/teslashibe/go-rufus/pkg/servo"
)

// ServoController moves individual servos.
type ServoController interface {
	Set(name servo.Name, angle int) error
	Names() []servo.Name
	Ready() bool
}

// GesturePlayer runs named gestures and moods.
type GesturePlayer interface {
	Perform(name gesture.Name) error
	PerformMood(name gesture.Name) error
	React(directive string) error
}

// Chatter produces conversational replies.
type Chatter interface {
	Respond(ctx context.Context, message string) (chat.Reply, error)
	Clear()
}

// Speaker synthesizes and plays a spoken line.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Deps are the robot subsystems the server drives. Chat and Speaker
// may be nil; their endpoints then report the feature as unavailable.
type Deps struct {
	Servos   ServoController
	Gestures GesturePlayer
	Chat     Chatter
	Speaker  Speaker
}

// State is the snapshot pushed to dashboard clients.
type State struct {
	ArduinoConnected bool   `json:"arduino_connected"`
	Speaking         bool   `json:"speaking"`
	LastGesture      string `json:"last_gesture"`
	LastUserMessage  string `json:"last_user_message"`
	LastReply        string `json:"last_reply"`
}

// Server is Rufus's HTTP and websocket server.
type Server struct {
	app  *fiber.App
	port string
	deps Deps

	state   State
	stateMu sync.RWMutex

	statusHub *hub.Hub
}

// NewServer wires routes and middleware. Call Start to listen.
func NewServer(port string, deps Deps) *Server {
	s := &Server{
		port:      port,
		deps:      deps,
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Rufus",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/servos", s.handleListServos)
	api.Post("/servo", s.handleServo)
	api.Get("/gestures", s.handleListGestures)
	api.Post("/gesture", s.handleGesture)
	api.Post("/mood", s.handleMood)
	api.Post("/speak", s.handleSpeak)
	api.Post("/chat", s.handleChat)
	api.Post("/chat/clear", s.handleChatClear)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the status hub and listens. Blocks.
func (s *Server) Start() error {
	log.Info("web server listening", "port", s.port)
	go s.statusHub.Run()
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// UpdateState applies a mutation and broadcasts the new snapshot.
func (s *Server) UpdateState(update func(*State)) {
	s.stateMu.Lock()
	update(&s.state)
	snapshot := s.state
	s.stateMu.Unlock()

	s.statusHub.BroadcastJSON(snapshot)
}

// handleStatusWS sends the current snapshot, then streams updates.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.stateMu.RLock()
	snapshot := s.state
	s.stateMu.RUnlock()
	c.WriteJSON(snapshot)

	client := hub.NewClient(s.statusHub, c)
	client.Run()
}
