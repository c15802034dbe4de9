// Package client talks to a pool of knowledge-base servers, routing each
// request to a sticky preferred server and failing over on connection errors.
package client

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is assumed when a server address omits the port.
const DefaultPort = 8000

// ServerDescriptor identifies one server in the pool.
type ServerDescriptor struct {
	Host string
	Port int
}

// Addr returns the host:port form.
func (s ServerDescriptor) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the base URL for HTTP requests.
func (s ServerDescriptor) URL() string {
	return "http://" + s.Addr()
}

// ParseServer parses "host" or "host:port" into a descriptor.
func ParseServer(raw string) (ServerDescriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ServerDescriptor{}, fmt.Errorf("empty server address")
	}

	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		// No port in the address.
		return ServerDescriptor{Host: raw, Port: DefaultPort}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return ServerDescriptor{}, fmt.Errorf("invalid port in server address %q", raw)
	}
	if host == "" {
		return ServerDescriptor{}, fmt.Errorf("missing host in server address %q", raw)
	}
	return ServerDescriptor{Host: host, Port: port}, nil
}

// ParseServers parses a list of addresses, requiring at least one.
func ParseServers(raw []string) ([]ServerDescriptor, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no servers configured")
	}
	servers := make([]ServerDescriptor, 0, len(raw))
	for _, r := range raw {
		s, err := ParseServer(r)
		if err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}
	return servers, nil
}
