package framework

import (
	"fmt"
	"strings"

	"github.com/launchdarkly/http-selftest/httpwire"
)

// AssertionError is returned by TestCase.Verify when the response is not what the test case
// expects. It is the only kind of error that produces a Failure result instead of an Error.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// Failf creates an *AssertionError.
func Failf(format string, args ...interface{}) error {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// AssertEqual fails if the values differ.
func AssertEqual(expected, actual interface{}, description string) error {
	if fmt.Sprint(expected) != fmt.Sprint(actual) {
		return Failf("%s: expected <%v> but was <%v>", description, expected, actual)
	}
	return nil
}

// AssertStatus fails if the response has a different status code.
func AssertStatus(resp httpwire.Response, expected int) error {
	if resp.Status != expected {
		return Failf("expected status %d but was %d", expected, resp.Status)
	}
	return nil
}

// AssertHeader fails if the first value of the header is not the expected one.
func AssertHeader(resp httpwire.Response, name, expected string) error {
	if !resp.Headers.Has(name) {
		return Failf("expected header %s to be %q but it was missing", name, expected)
	}
	if actual := resp.Headers.Get(name); actual != expected {
		return Failf("expected header %s to be %q but was %q", name, expected, actual)
	}
	return nil
}

// AssertBodyContains fails if the body does not contain the text.
func AssertBodyContains(resp httpwire.Response, text string) error {
	if !strings.Contains(resp.Body, text) {
		return Failf("expected body to contain %q", text)
	}
	return nil
}

// All returns the first error in the list, so that several assertions can be combined in one
// return statement.
func All(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
