package web

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-rufus/internal/log"
	"github.com/teslashibe/go-rufus/pkg/gesture"
	"github.com/teslashibe/go-rufus/pkg/servo"
)

// handleHealth reports liveness plus the serial link state, so the
// remote can show "disconnected" without poking a servo.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "ok",
		"arduino_connected": s.deps.Servos.Ready(),
	})
}

// handleListServos returns the controllable servo names.
func (s *Server) handleListServos(c *fiber.Ctx) error {
	names := s.deps.Servos.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return c.JSON(fiber.Map{"servos": out})
}

// ServoRequest is the body for POST /api/servo.
type ServoRequest struct {
	Servo string `json:"servo"`
	Angle int    `json:"angle"`
}

func (s *Server) handleServo(c *fiber.Ctx) error {
	var req ServoRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	err := s.deps.Servos.Set(servo.Name(req.Servo), req.Angle)
	switch {
	case errors.Is(err, servo.ErrUnknownServo):
		return fail(c, fiber.StatusBadRequest, "Unknown servo")
	case errors.Is(err, servo.ErrAngleOutOfRange):
		return fail(c, fiber.StatusBadRequest, "Angle out of range")
	case err != nil:
		log.Error("servo command failed", "servo", req.Servo, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Servo command failed")
	}

	return c.JSON(fiber.Map{"success": true})
}

// handleListGestures returns the gesture and mood catalogs.
func (s *Server) handleListGestures(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"gestures": gesture.Names(),
		"moods":    gesture.MoodNames(),
	})
}

// GestureRequest is the body for POST /api/gesture and /api/mood.
type GestureRequest struct {
	Gesture string `json:"gesture"`
	Mood    string `json:"mood"`
}

func (s *Server) handleGesture(c *fiber.Ctx) error {
	var req GestureRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	name := gesture.Name(req.Gesture)
	if err := s.deps.Gestures.Perform(name); err != nil {
		if errors.Is(err, gesture.ErrUnknownGesture) {
			return fail(c, fiber.StatusBadRequest, "Unknown gesture")
		}
		log.Error("gesture failed", "gesture", req.Gesture, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Gesture failed")
	}

	s.UpdateState(func(st *State) { st.LastGesture = req.Gesture })
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleMood(c *fiber.Ctx) error {
	var req GestureRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	name := gesture.Name(req.Mood)
	if err := s.deps.Gestures.PerformMood(name); err != nil {
		if errors.Is(err, gesture.ErrUnknownMood) {
			return fail(c, fiber.StatusBadRequest, "Unknown mood")
		}
		log.Error("mood failed", "mood", req.Mood, "error", err)
		return fail(c, fiber.StatusInternalServerError, "Mood failed")
	}

	s.UpdateState(func(st *State) { st.LastGesture = req.Mood })
	return c.JSON(fiber.Map{"success": true})
}

// SpeakRequest is the body for POST /api/speak.
type SpeakRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSpeak(c *fiber.Ctx) error {
	var req SpeakRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fail(c, fiber.StatusBadRequest, "Text required")
	}
	if s.deps.Speaker == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Speech not configured")
	}

	go s.speak(req.Text)
	return c.JSON(fiber.Map{"success": true})
}

// ChatRequest is the body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fail(c, fiber.StatusBadRequest, "Message required")
	}
	if s.deps.Chat == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Chat not configured")
	}

	reply, err := s.deps.Chat.Respond(c.Context(), req.Message)
	if err != nil {
		// The reply still carries a speakable fallback.
		log.Warn("chat degraded", "error", err)
	}

	s.UpdateState(func(st *State) {
		st.LastUserMessage = req.Message
		st.LastReply = reply.Speech
	})

	// Gesture and speech run behind the response so the remote gets
	// the text immediately.
	go s.deps.Gestures.React(reply.Gesture)
	if s.deps.Speaker != nil {
		go s.speak(reply.Speech)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": reply.Speech,
		"gesture":  reply.Gesture,
	})
}

func (s *Server) handleChatClear(c *fiber.Ctx) error {
	if s.deps.Chat == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Chat not configured")
	}
	s.deps.Chat.Clear()
	return c.JSON(fiber.Map{"success": true})
}

// speak runs synthesis and playback, tracking speaking state.
func (s *Server) speak(text string) {
	s.UpdateState(func(st *State) { st.Speaking = true })
	defer s.UpdateState(func(st *State) { st.Speaking = false })

	if err := s.deps.Speaker.Say(context.Background(), text); err != nil {
		log.Error("speech failed", "error", err)
	}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
