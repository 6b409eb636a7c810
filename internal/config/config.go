// Package config provides configuration helpers for go-rufus commands.
package config

import (
	"os"
	"strconv"
)

// Default hardware configuration.
const (
	DefaultSerialPort = "/dev/ttyACM0"
	DefaultSerialBaud = 9600
	DefaultHTTPPort   = "5001"
)

// SerialPort returns the Arduino serial port from SERIAL_PORT env var.
// Falls back to the Pi default if not set.
func SerialPort() string {
	if port := os.Getenv("SERIAL_PORT"); port != "" {
		return port
	}
	return DefaultSerialPort
}

// SerialBaud returns the serial baud rate from SERIAL_BAUD env var.
// Falls back to 9600 if not set or unparseable.
func SerialBaud() int {
	if s := os.Getenv("SERIAL_BAUD"); s != "" {
		if baud, err := strconv.Atoi(s); err == nil && baud > 0 {
			return baud
		}
	}
	return DefaultSerialBaud
}

// HTTPPort returns the API server port from PORT env var or default.
func HTTPPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return DefaultHTTPPort
}

// OpenAIKey returns the OpenAI API key from OPENAI_API_KEY env var.
// Empty means speech and chat run in degraded mode; it is not fatal.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
