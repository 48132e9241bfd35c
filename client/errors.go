package client

import (
	"errors"
	"fmt"
	"net"

	"github.com/launchdarkly/http-selftest/httpwire"
)

// TransportError is returned by Transport.Call for any failure after the request was found to be
// valid: an unusable base URL, a failed connection, an I/O error or timeout, or a response that
// could not be parsed. It carries whatever was sent and received before the failure.
type TransportError struct {
	// Op is the phase that failed: "resolve", "connect", "write", or "read".
	Op string
	// Sent is the serialized request, if the failure happened after it was produced.
	Sent []byte
	// Captured is every byte received from the server before the failure; empty if the server
	// never replied.
	Captured []byte
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout returns true if the failure was caused by the deadline expiring.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// SentDetails returns the request bytes split into header and body block.
func (e *TransportError) SentDetails() httpwire.WireDetails {
	return httpwire.SplitDetails(e.Sent)
}

// PartialResponse returns the received bytes split into header and body block, as far as that
// is possible.
func (e *TransportError) PartialResponse() httpwire.WireDetails {
	return httpwire.SplitDetails(e.Captured)
}
