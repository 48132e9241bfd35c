package httpwire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	protocolVersion = "HTTP/1.1"

	// TransferEncodingIdentity is assumed when the response has no Transfer-Encoding header.
	TransferEncodingIdentity = "identity"
	// TransferEncodingChunked is the only other transfer coding this client understands.
	TransferEncodingChunked = "chunked"
)

var crlf = []byte("\r\n")

// Serialize renders the request in HTTP/1.1 syntax. The Host header is always written first,
// followed by the request headers in the order they were added. A Content-Length header is added
// only if the request has a body; its value is the length of the UTF-8 encoded body in bytes.
//
// The request is validated first; if it is invalid, no bytes are produced.
func Serialize(req Request, host string, port int) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writeLine(&buf, req.Method+" "+req.Path+" "+protocolVersion)
	writeLine(&buf, fmt.Sprintf("Host: %s:%d", host, port))
	for _, h := range req.Headers.pairs {
		writeLine(&buf, h.Name+": "+h.Value)
	}
	if req.Body.IsDefined() {
		body := []byte(req.Body.StringValue())
		writeLine(&buf, "Content-Length: "+strconv.Itoa(len(body)))
		buf.Write(crlf)
		buf.Write(body)
	} else {
		buf.Write(crlf)
	}
	return buf.Bytes(), nil
}

func writeLine(buf *bytes.Buffer, line string) {
	buf.WriteString(line)
	buf.Write(crlf)
}

// BodyAllowed reports whether a response to the given request method with the given status
// can carry a body. There is no body for HEAD requests or for 1xx, 204 and 304 responses
// (RFC 7230, section 3.3.3).
func BodyAllowed(status int, requestMethod string) bool {
	switch {
	case requestMethod == "HEAD":
		return false
	case status == 204, status == 304:
		return false
	case status >= 100 && status < 200:
		return false
	}
	return true
}

// Parse reads one HTTP response from r. The request method is needed to decide whether a body
// follows the header block.
//
// On success, the returned WireDetails contain the raw header block and the raw body block (still
// chunk-encoded, if the response was chunked). Errors caused by malformed input are *ParseError;
// I/O errors from r, including deadline expiry, are returned as they are.
func Parse(r io.Reader, requestMethod string) (Response, WireDetails, error) {
	mr := newMessageReader(r)

	statusLine, err := mr.readLine()
	if err != nil {
		return Response{}, WireDetails{}, err
	}
	status, err := parseStatusCode(statusLine)
	if err != nil {
		return Response{}, WireDetails{}, err
	}

	var headers Headers
	for {
		line, err := mr.readLine()
		if err != nil {
			return Response{}, WireDetails{}, err
		}
		if line == "" {
			break
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			return Response{}, WireDetails{}, parseErrorf("could not parse header line: %q", line)
		}
		headers.Add(line[:colon], strings.TrimSpace(line[colon+1:]))
	}
	details := WireDetails{HeaderBlock: mr.take()}

	var body []byte
	if BodyAllowed(status, requestMethod) {
		body, err = readBody(mr, headers)
		details.BodyBlock = mr.take()
		if err != nil {
			return Response{}, details, err
		}
	}

	return Response{
		Status:  status,
		Headers: headers,
		Body:    strings.ToValidUTF8(string(body), "�"),
	}, details, nil
}

func parseStatusCode(statusLine string) (int, error) {
	if statusLine == "" {
		return 0, parseErrorf("missing status line")
	}
	fields := strings.Fields(statusLine)
	if len(fields) < 2 {
		return 0, parseErrorf("unrecognized status line: %q", statusLine)
	}
	status, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return 0, &ParseError{Message: fmt.Sprintf("invalid status code in status line %q", statusLine), Err: err}
	}
	return int(status), nil
}

func readBody(mr *messageReader, headers Headers) ([]byte, error) {
	encoding := TransferEncodingIdentity
	if value, ok := headers.Last("Transfer-Encoding"); ok {
		encoding = strings.ToLower(strings.TrimSpace(value))
	}
	switch encoding {
	case TransferEncodingChunked:
		return readChunkedBody(mr)
	case TransferEncodingIdentity:
		return readIdentityBody(mr, headers)
	default:
		return nil, parseErrorf("this HTTP client does not implement Transfer-Encoding %q", encoding)
	}
}

// readIdentityBody reads Content-Length bytes. If the stream ends early, whatever was received
// is the body. A stalled stream is different: the read deadline surfaces as an I/O error.
func readIdentityBody(mr *messageReader, headers Headers) ([]byte, error) {
	value, ok := headers.Last("Content-Length")
	if !ok {
		return nil, nil
	}
	length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || length < 0 {
		return nil, parseErrorf("invalid Content-Length: %q", value)
	}
	data, err := mr.readN(length)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

func readChunkedBody(mr *messageReader) ([]byte, error) {
	var body []byte
	for {
		sizeLine, err := mr.readLine()
		if err != nil {
			return nil, err
		}
		size, err := strconv.ParseInt(sizeLine, 16, 32)
		if err != nil || size < 0 {
			return nil, parseErrorf("invalid chunk size: %q", sizeLine)
		}
		chunk, err := mr.readN(size)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &ParseError{
					Message: fmt.Sprintf("unexpected end of stream; expected %d bytes of chunk data, got %d", size, len(chunk)),
					Err:     io.ErrUnexpectedEOF,
				}
			}
			return nil, err
		}
		terminator, err := mr.readLine()
		if err != nil {
			return nil, err
		}
		if terminator != "" {
			return nil, parseErrorf("expected chunk delimiter, but found: %q", terminator)
		}
		body = append(body, chunk...)
		if size == 0 {
			return body, nil
		}
	}
}

// messageReader remembers every byte it has consumed since the last call to take, so that
// Parse can hand out the header block and body block separately.
type messageReader struct {
	r        *bufio.Reader
	consumed []byte
}

func newMessageReader(r io.Reader) *messageReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &messageReader{r: br}
}

// readLine reads up to and including the next CRLF and returns the line without it. A bare LF
// does not end a line.
func (m *messageReader) readLine() (string, error) {
	var line []byte
	for {
		data, err := m.r.ReadBytes('\n')
		line = append(line, data...)
		m.consumed = append(m.consumed, data...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", &ParseError{Message: "unexpected end of stream before CRLF", Err: io.ErrUnexpectedEOF}
			}
			return "", err
		}
		if bytes.HasSuffix(line, crlf) {
			return string(line[:len(line)-len(crlf)]), nil
		}
	}
}

// readN reads n bytes. If the stream ends first, it returns the bytes it got and io.EOF.
func (m *messageReader) readN(n int64) ([]byte, error) {
	var buf bytes.Buffer
	read, err := io.CopyN(&buf, m.r, n)
	m.consumed = append(m.consumed, buf.Bytes()...)
	if err == nil && read < n {
		err = io.EOF
	}
	return buf.Bytes(), err
}

func (m *messageReader) take() []byte {
	ret := m.consumed
	m.consumed = nil
	return ret
}
