package httpwire

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Request describes an HTTP request to be sent by the socket transport. The path is relative to
// the base URL of the application. The body, if defined, is sent as UTF-8.
//
// Request is a value type; the With* methods return modified copies.
type Request struct {
	Method  string
	Path    string
	Headers Headers
	Body    ldvalue.OptionalString
}

// NewRequest creates a request without headers or body.
func NewRequest(method, path string) Request {
	return Request{Method: method, Path: path}
}

// WithHeader returns a copy of the request with an additional header.
func (r Request) WithHeader(name, value string) Request {
	ret := r.Clone()
	ret.Headers.Add(name, value)
	return ret
}

// WithBody returns a copy of the request with the given body.
func (r Request) WithBody(body string) Request {
	ret := r.Clone()
	ret.Body = ldvalue.NewOptionalString(body)
	return ret
}

// WithPath returns a copy of the request with a different path.
func (r Request) WithPath(path string) Request {
	ret := r.Clone()
	ret.Path = path
	return ret
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	ret := r
	ret.Headers = r.Headers.Clone()
	return ret
}

// Validate checks that the request can be written to the wire without escaping: the method must
// consist of the letters A-Z, and the path and all header names and values must be printable
// ASCII (0x20-0x7E).
func (r Request) Validate() error {
	if r.Method == "" {
		return &ValidationError{Field: "method", Value: r.Method}
	}
	if err := checkCharset("method", r.Method, isMethodChar); err != nil {
		return err
	}
	if err := checkCharset("path", r.Path, isPrintableASCII); err != nil {
		return err
	}
	for _, h := range r.Headers.pairs {
		if err := checkCharset("header name", h.Name, isPrintableASCII); err != nil {
			return err
		}
		if err := checkCharset(fmt.Sprintf("value of header %q", h.Name), h.Value, isPrintableASCII); err != nil {
			return err
		}
	}
	return nil
}

func isMethodChar(c rune) bool {
	return 'A' <= c && c <= 'Z'
}

func isPrintableASCII(c rune) bool {
	return ' ' <= c && c <= '~'
}

func checkCharset(field, value string, allowed func(rune) bool) error {
	for _, c := range value {
		if !allowed(c) {
			return &ValidationError{Field: field, Value: value, Char: c}
		}
	}
	return nil
}

// Response is a fully parsed HTTP response.
type Response struct {
	Status  int
	Headers Headers
	Body    string
}

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	ret := r
	ret.Headers = r.Headers.Clone()
	return ret
}
