package singleinstance

// This file defines the API for single-instance ownership and remote capture
// triggers.

import (
	"context"
	"errors"
)

// DefaultPort is the loopback port the resident instance owns.
const DefaultPort = 49560

// ErrNoResident is returned by the client when nothing answers on the port.
var ErrNoResident = errors.New("no resident instance")

// Server owns the TCP endpoint and answers trigger requests.
type Server interface {
	// Start binds 127.0.0.1:port. It fails if another instance holds the port.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Requests delivers accepted trigger connections. It is closed by Close.
	Requests() <-chan Conn
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one remote trigger waiting for its capture result.
type Conn interface {
	// RespondSuccess reports the snapshot directory back to the client.
	RespondSuccess(dir string) error
	// RespondError sends an error with a human-readable message.
	RespondError(msg string) error
	Close() error
}

// Client asks a resident instance to run one capture.
type Client interface {
	// Trigger pings the resident and requests a capture. When no resident
	// answers it returns ErrNoResident.
	Trigger(ctx context.Context) (dir string, err error)
	// Alive reports whether a resident answers PING.
	Alive(ctx context.Context) bool
}

// NewServer returns the TCP implementation bound to port.
func NewServer(port int) Server { return newTCPServer(normalizePort(port)) }

// NewClient returns the TCP implementation talking to port.
func NewClient(port int) Client { return &tcpClient{port: normalizePort(port)} }

// normalizePort falls back to DefaultPort outside the unprivileged range.
func normalizePort(port int) int {
	if port < 1024 || port > 65535 {
		return DefaultPort
	}
	return port
}
