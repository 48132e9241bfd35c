package framework

import (
	"github.com/launchdarkly/http-selftest/httpwire"
)

const (
	defaultWaitForLogsMillis           = 20
	defaultMaxAcceptableDurationMillis = 100
)

// Values are the parameters shared by all test cases of a sequence, such as credentials or the
// id of a test account.
type Values map[string]string

// Get returns the value for key, or "" if there is none.
func (v Values) Get(key string) string {
	return v[key]
}

// TestCase is a single HTTP test.
//
// PrepareRequest builds the request to send. The path is relative to the application's base
// URL. The request must not contain the logging.RequestIDHeader header; the runner adds it.
//
// Verify is called only if a complete response was received. It reports a rejected response by
// returning an *AssertionError (see Failf and the Assert functions); any other error means the
// test case could not be evaluated.
//
// WaitForLogsMillis is how long to wait after the response before collecting the log output, for
// applications that log asynchronously. MaxAcceptableDurationMillis is the call duration above
// which the result is flagged as slow.
//
// Embed Defaults to get the usual values for the last two methods.
type TestCase interface {
	Name() string
	PrepareRequest(config Values, ctx *Context) (httpwire.Request, error)
	Verify(config Values, resp httpwire.Response, ctx *Context) error
	WaitForLogsMillis() int
	MaxAcceptableDurationMillis() int
}

// Defaults can be embedded in a TestCase implementation.
type Defaults struct{}

func (Defaults) WaitForLogsMillis() int { return defaultWaitForLogsMillis }

func (Defaults) MaxAcceptableDurationMillis() int { return defaultMaxAcceptableDurationMillis }

// FuncTestCase adapts plain functions to the TestCase interface.
type FuncTestCase struct {
	Defaults
	TestName string
	Prepare  func(config Values, ctx *Context) (httpwire.Request, error)
	// Check may be nil, in which case any response is accepted.
	Check func(config Values, resp httpwire.Response, ctx *Context) error
}

func (f FuncTestCase) Name() string { return f.TestName }

func (f FuncTestCase) PrepareRequest(config Values, ctx *Context) (httpwire.Request, error) {
	return f.Prepare(config, ctx)
}

func (f FuncTestCase) Verify(config Values, resp httpwire.Response, ctx *Context) error {
	if f.Check == nil {
		return nil
	}
	return f.Check(config, resp, ctx)
}
