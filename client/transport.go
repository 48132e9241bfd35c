package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/launchdarkly/http-selftest/httpwire"
	"github.com/launchdarkly/http-selftest/logging"
)

// DefaultTimeout is the time allowed for one request, from connecting until the response has
// been read completely.
const DefaultTimeout = time.Second * 3

// Dialer opens connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Transport sends a single request per connection, writing and reading the bytes itself so that
// they can be shown exactly as they went over the wire. It does not follow redirects, reuse
// connections, or retry.
//
// The zero value is ready to use.
type Transport struct {
	// Dialer is used to connect to the server; if nil, a *net.Dialer is used.
	Dialer Dialer
	// Logger receives debug output; if nil, nothing is logged.
	Logger logging.Logger
}

// Exchange is the outcome of a successful call.
type Exchange struct {
	Response httpwire.Response
	Sent     httpwire.WireDetails
	Received httpwire.WireDetails
}

// Call sends the request to the server identified by baseURL and reads the response. The base
// URL must contain an explicit port; its path, if any, is prepended to the request path.
//
// The timeout is a single deadline covering connecting, writing the request and reading the
// whole response.
//
// If the request fails validation, the returned error is a *httpwire.ValidationError and no
// connection is attempted. Every other failure is a *TransportError.
func (t *Transport) Call(baseURL string, req httpwire.Request, timeout time.Duration) (Exchange, error) {
	if err := req.Validate(); err != nil {
		return Exchange{}, err
	}
	endpoint, err := parseBaseURL(baseURL)
	if err != nil {
		return Exchange{}, &TransportError{Op: "resolve", Err: err}
	}
	data, err := httpwire.Serialize(req.WithPath(joinPath(endpoint.pathPrefix, req.Path)),
		endpoint.hostForHeader(), endpoint.port)
	if err != nil {
		return Exchange{}, err
	}

	logger := t.logger()
	deadline := time.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	logger.Printf("Connecting to %s", endpoint.address())
	conn, err := t.dialer().DialContext(ctx, "tcp", endpoint.address())
	if err != nil {
		return Exchange{}, &TransportError{Op: "connect", Err: err}
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return Exchange{}, &TransportError{Op: "connect", Err: err}
	}

	logger.Printf("Sending %d bytes", len(data))
	if _, err := conn.Write(data); err != nil {
		return Exchange{}, &TransportError{Op: "write", Sent: data, Err: err}
	}

	in := &capturingReader{r: conn}
	resp, received, err := httpwire.Parse(in, req.Method)
	if err != nil {
		logger.Printf("Failed to read response after %d bytes: %s", in.buf.Len(), err)
		return Exchange{}, &TransportError{Op: "read", Sent: data, Captured: in.captured(), Err: err}
	}
	logger.Printf("Received status %d, %d bytes", resp.Status, in.buf.Len())

	return Exchange{
		Response: resp,
		Sent:     httpwire.SplitDetails(data),
		Received: received,
	}, nil
}

func (t *Transport) dialer() Dialer {
	if t.Dialer == nil {
		return &net.Dialer{}
	}
	return t.Dialer
}

func (t *Transport) logger() logging.Logger {
	if t.Logger == nil {
		return logging.NullLogger()
	}
	return t.Logger
}

type endpoint struct {
	host       string
	port       int
	pathPrefix string
}

func parseBaseURL(baseURL string) (endpoint, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return endpoint{}, err
	}
	if u.Scheme != "http" {
		return endpoint{}, fmt.Errorf("unsupported scheme in %q; only http is supported", baseURL)
	}
	if u.Port() == "" {
		return endpoint{}, fmt.Errorf("no port provided: %s", baseURL)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil || port <= 0 || port > 65535 {
		return endpoint{}, fmt.Errorf("invalid port in %s", baseURL)
	}
	return endpoint{host: u.Hostname(), port: port, pathPrefix: u.EscapedPath()}, nil
}

func (e endpoint) address() string {
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

func (e endpoint) hostForHeader() string {
	if strings.Contains(e.host, ":") {
		return "[" + e.host + "]"
	}
	return e.host
}

func joinPath(prefix, path string) string {
	if path == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}

// capturingReader keeps a copy of every byte read through it.
type capturingReader struct {
	r   io.Reader
	buf bytes.Buffer
}

func (c *capturingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.buf.Write(p[:n])
	return n, err
}

func (c *capturingReader) captured() []byte {
	return append([]byte(nil), c.buf.Bytes()...)
}
