package httpwire

import "fmt"

// ValidationError means a request contained characters that cannot be sent verbatim. It is always
// reported before any connection is opened.
type ValidationError struct {
	Field string
	Value string
	Char  rune
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s must not be empty", e.Field)
	}
	return fmt.Sprintf("illegal character %q in %s: %q", e.Char, e.Field, e.Value)
}

// ParseError means the bytes received from the server were not a response this client can read.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}
