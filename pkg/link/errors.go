package link

import "errors"

var (
	// ErrNotConnected is returned when a command is attempted while the
	// serial port is closed. No I/O is performed.
	ErrNotConnected = errors.New("link: not connected")

	// ErrWriteFailed is returned when the serial write fails. The link
	// drops to disconnected and does not auto-reconnect.
	ErrWriteFailed = errors.New("link: write failed")

	// ErrAckFailed is returned in ack mode when the device does not
	// answer with an OK line in time.
	ErrAckFailed = errors.New("link: no acknowledgment")

	// errReadTimeout is internal: handshake and ack reads that run out
	// of time surface as ErrAckFailed or a logged warning, never this.
	errReadTimeout = errors.New("link: read timed out")
)
