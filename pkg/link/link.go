// Package link owns the serial connection to the Arduino that drives
// Rufus's servos.
//
// The protocol is line-oriented ASCII: the host writes
// "<channel>:<angle>\n" per command, the device announces itself with a
// single "READY" line after reset, and (optionally) acknowledges each
// command with a line starting with "OK". The link serializes commands
// internally so that callers on different goroutines never interleave
// bytes on the wire.
package link

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/teslashibe/go-rufus/internal/log"
)

// State represents the link connection state.
type State int

const (
	// StateDisconnected indicates no open serial port.
	StateDisconnected State = iota
	// StateConnected indicates the port is open, handshake pending.
	StateConnected
	// StateReady indicates the link is usable for commands.
	StateReady
)

// String returns a human-readable link state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Protocol tokens.
const (
	readyToken = "READY"
	ackPrefix  = "OK"
)

// Port is the subset of the serial port surface the link uses.
// go.bug.st/serial.Port satisfies it; tests inject fakes.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// openPort opens the physical serial port. Swapped out in tests.
var openPort = func(name string, baud int) (Port, error) {
	return serial.Open(name, &serial.Mode{BaudRate: baud})
}

// Config holds link configuration.
type Config struct {
	// Port is the serial device path (e.g., /dev/ttyACM0).
	Port string

	// Baud is the serial baud rate.
	Baud int

	// HandshakeTimeout bounds the wait for the READY line at connect.
	HandshakeTimeout time.Duration

	// CommandDelay is the pause after each write, giving the Arduino
	// time to process before the next command. Set near zero in tests.
	CommandDelay time.Duration

	// AckTimeout bounds the wait for an OK line when WaitAck is set.
	AckTimeout time.Duration

	// WaitAck selects the acknowledgment discipline: when true every
	// Send requires an OK line; when false Send is fire-and-forget.
	WaitAck bool
}

// DefaultConfig returns the standard Arduino link configuration.
func DefaultConfig() Config {
	return Config{
		Port:             "/dev/ttyACM0",
		Baud:             9600,
		HandshakeTimeout: 2 * time.Second,
		CommandDelay:     50 * time.Millisecond,
		AckTimeout:       100 * time.Millisecond,
	}
}

// Link mediates the single serial channel to the Arduino.
// All commands flow through Send, which holds an internal mutex for
// the full write+delay+ack cycle, so at most one command is in flight.
type Link struct {
	cfg Config

	mu    sync.Mutex
	port  Port
	state State
}

// Connect opens the serial port and waits up to HandshakeTimeout for
// the READY line. The returned Link is always usable: on open failure
// it stays disconnected and every Send reports ErrNotConnected. A
// missing handshake is logged but does not fail the connection.
func Connect(cfg Config) (*Link, error) {
	l := &Link{cfg: cfg}

	port, err := openPort(cfg.Port, cfg.Baud)
	if err != nil {
		return l, fmt.Errorf("link: open %s: %w", cfg.Port, err)
	}

	l.port = port
	l.state = StateConnected
	l.awaitReady()

	return l, nil
}

// awaitReady consumes the boot banner looking for the READY token.
// The Arduino resets when the port opens, so the token can take a
// couple of seconds to arrive; if it never does, the link is treated
// as ready anyway.
func (l *Link) awaitReady() {
	deadline := time.Now().Add(l.cfg.HandshakeTimeout)

	for time.Now().Before(deadline) {
		line, err := l.readLine(deadline)
		if err != nil {
			break
		}
		if line == readyToken {
			log.Info("arduino connected", "port", l.cfg.Port)
			l.state = StateReady
			return
		}
	}

	log.Warn("no READY handshake, continuing optimistically", "port", l.cfg.Port)
	l.state = StateReady
}

// Send encodes and writes one servo command. It returns ErrNotConnected
// without touching the wire when the link is down, and converts any I/O
// failure into an error after dropping the connection. In ack mode it
// additionally requires an OK line from the device.
func (l *Link) Send(channel, angle int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil || l.state == StateDisconnected {
		return ErrNotConnected
	}

	cmd := fmt.Sprintf("%d:%d\n", channel, angle)
	if _, err := l.port.Write([]byte(cmd)); err != nil {
		l.dropLocked()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	// Give the microcontroller time to process before the next command.
	if l.cfg.CommandDelay > 0 {
		time.Sleep(l.cfg.CommandDelay)
	}

	if l.cfg.WaitAck {
		return l.readAckLocked()
	}
	return nil
}

// readAckLocked reads one acknowledgment line. Caller holds l.mu.
func (l *Link) readAckLocked() error {
	line, err := l.readLine(time.Now().Add(l.cfg.AckTimeout))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAckFailed, err)
	}
	if !strings.HasPrefix(line, ackPrefix) {
		return fmt.Errorf("%w: got %q", ErrAckFailed, line)
	}
	return nil
}

// readLine reads a newline-terminated line from the port, giving up at
// the deadline. CR is stripped. A zero-byte read means the port-level
// read timeout expired with nothing buffered.
func (l *Link) readLine(deadline time.Time) (string, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return "", errReadTimeout
	}
	if err := l.port.SetReadTimeout(remaining); err != nil {
		return "", err
	}

	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := l.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", errReadTimeout
		}
		if buf[0] == '\n' {
			return strings.TrimRight(sb.String(), "\r"), nil
		}
		sb.WriteByte(buf[0])
		if time.Now().After(deadline) {
			return "", errReadTimeout
		}
	}
}

// dropLocked closes the port after an I/O error. Caller holds l.mu.
// The link does not auto-reconnect.
func (l *Link) dropLocked() {
	if l.port != nil {
		l.port.Close()
		l.port = nil
	}
	l.state = StateDisconnected
	log.Warn("serial link lost", "port", l.cfg.Port)
}

// State returns the current link state.
func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Ready reports whether the link can accept commands.
func (l *Link) Ready() bool {
	return l.State() == StateReady
}

// Close releases the serial handle. Safe to call multiple times.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	l.state = StateDisconnected
	return err
}
