// Package netx holds the small networking helpers shared by the daemon
// and the CLI: parsing the daemon's listen address and decoding JSON
// responses from HTTP peers.
package netx

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// Endpoint is a parsed daemon address.
type Endpoint struct {
	Network string // "unix" or "tcp"
	Address string // socket path or host:port
}

// ParseEndpoint accepts "unix:<path>", "unix://<path>", "tcp://host:port"
// or a bare "host:port".
func ParseEndpoint(s string) (Endpoint, error) {
	switch {
	case s == "":
		return Endpoint{}, errors.New("empty endpoint")
	case strings.HasPrefix(s, "unix://"):
		return unixEndpoint(strings.TrimPrefix(s, "unix://"))
	case strings.HasPrefix(s, "unix:"):
		return unixEndpoint(strings.TrimPrefix(s, "unix:"))
	case strings.HasPrefix(s, "tcp://"):
		s = strings.TrimPrefix(s, "tcp://")
	}
	if _, _, err := net.SplitHostPort(s); err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	return Endpoint{Network: "tcp", Address: s}, nil
}

func unixEndpoint(path string) (Endpoint, error) {
	if path == "" {
		return Endpoint{}, errors.New("empty unix socket path")
	}
	return Endpoint{Network: "unix", Address: path}, nil
}

// Target returns the gRPC dial target for e.
func (e Endpoint) Target() string {
	if e.Network == "unix" {
		return "unix:" + e.Address
	}
	return e.Address
}

func (e Endpoint) String() string {
	return e.Network + ":" + e.Address
}

// Listen opens a listener on e. A stale unix socket file left by a
// previous daemon is removed first.
func (e Endpoint) Listen() (net.Listener, error) {
	if e.Network == "unix" {
		if err := os.Remove(e.Address); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale socket %s: %w", e.Address, err)
		}
	}
	l, err := net.Listen(e.Network, e.Address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", e, err)
	}
	return l, nil
}
