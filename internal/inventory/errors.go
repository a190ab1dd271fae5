package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProtocol is returned when the inventory service answers with
// something that violates the contract (wrong event, undecodable body,
// unexpected status).
var ErrProtocol = errors.New("inventory protocol violation")

// ErrEventMismatch is returned when a seat map belongs to a different event
// than the one requested.
var ErrEventMismatch = fmt.Errorf("%w: event id mismatch", ErrProtocol)

// TransportError means the inventory service could not be reached:
// connection refused, timeout, no route, or a gateway status in front of it.
// It is transient.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("inventory %s: unavailable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusError is returned for a non-2xx answer that carries no decodable
// outcome.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventory %s: unexpected status %d", e.Op, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrProtocol }

// The inventory service reports failures as free text.  These lists are a
// compatibility shim with its current messages and must stay in sync with
// the remote wording.
var (
	transportMarkers   = []string{"I/O error", "Connection refused", "connect timed out", "No route to host"}
	unavailableMarkers = []string{"no disponible", "ocupado", "bloqueado"}
)

// IsTransportMessage reports whether a remote message describes a
// connectivity problem rather than a seat rejection.
func IsTransportMessage(msg string) bool { return containsAny(msg, transportMarkers) }

// IsUnavailableMessage reports whether a remote message describes an
// expected seat rejection (occupied, locked, unavailable).
func IsUnavailableMessage(msg string) bool { return containsAny(msg, unavailableMarkers) }

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
