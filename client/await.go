package client

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/launchdarkly/http-selftest/httpwire"
)

const awaitRetryInterval = time.Millisecond * 100

// AwaitReachable polls the service at baseURL with GET requests until it answers with any
// parseable response, or until timeout has elapsed. Progress is written to output.
//
// Errors that retrying cannot fix, such as a base URL without a port, are returned immediately.
func (t *Transport) AwaitReachable(baseURL string, timeout time.Duration, output io.Writer) (httpwire.Response, error) {
	fmt.Fprintf(output, "Connecting to service at %s", baseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		ex, err := t.Call(baseURL, httpwire.NewRequest("GET", ""), DefaultTimeout)
		if err == nil {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Service responded with status %d\n", ex.Response.Status)
			return ex.Response, nil
		}
		var te *TransportError
		if !errors.As(err, &te) || te.Op == "resolve" {
			fmt.Fprintln(output)
			return httpwire.Response{}, err
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return httpwire.Response{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(awaitRetryInterval)
	}
}
