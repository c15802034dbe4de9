package client

import (
	"fmt"
	"strings"
	"time"
)

// UnreachableError means a connection to one server could not be established.
type UnreachableError struct {
	Server string
	Err    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("server %s unreachable: %v", e.Server, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// TimeoutError means a server accepted the request but did not answer in
// time. The router never retries these; the server may still be working.
type TimeoutError struct {
	Server  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("server %s did not respond within %s", e.Server, e.Timeout)
}

// ServerError carries an HTTP error response from a reachable server.
type ServerError struct {
	Server     string
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server %s returned %d: %s", e.Server, e.StatusCode, e.Detail)
}

// AllUnreachableError means every server in the pool refused the connection.
type AllUnreachableError struct {
	Servers []string
}

func (e *AllUnreachableError) Error() string {
	return fmt.Sprintf("all servers unreachable: %s", strings.Join(e.Servers, ", "))
}
